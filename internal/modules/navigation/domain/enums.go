//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// ViewKind identifies a frame on the view stack
// ENUM(feed_list,item_list,article)
type ViewKind string

// TicketKind tells the controller how to fold a fetch result back into the stack
// ENUM(open,refresh,batch)
type TicketKind string

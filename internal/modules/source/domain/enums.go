//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// FeedKind tells how a configured entry is turned into a fetch URL
// ENUM(rss,rsshub)
type FeedKind string

package domain

import (
	feedDomain "github.com/reshetovitsme/rss-reader/internal/modules/feed/domain"
	sourceDomain "github.com/reshetovitsme/rss-reader/internal/modules/source/domain"
)

// Event is an input to the controller. Key events come from the presenter;
// completion events carry the ticket they answer.
type Event interface {
	isEvent()
}

type (
	MoveUp     struct{}
	MoveDown   struct{}
	PageUp     struct{}
	PageDown   struct{}
	Select     struct{}
	Back       struct{}
	Quit       struct{}
	Refresh    struct{}
	RefreshAll struct{}

	// FetchCompleted answers an open or refresh ticket.
	FetchCompleted struct {
		Ticket FetchTicket
		Items  []feedDomain.FeedItem
		Err    *feedDomain.FetchError
	}

	// BatchCompleted answers a batch ticket. Results are in source order.
	BatchCompleted struct {
		Ticket  FetchTicket
		Results []feedDomain.SourceResult
	}

	// ContentMeasured reports the rendered line count of the current article and
	// the visible page height.
	ContentMeasured struct {
		Lines int
		Page  int
	}

	// Notice shows a transient message, such as a failed save.
	Notice struct {
		Text string
	}
)

func (MoveUp) isEvent()          {}
func (MoveDown) isEvent()        {}
func (PageUp) isEvent()          {}
func (PageDown) isEvent()        {}
func (Select) isEvent()          {}
func (Back) isEvent()            {}
func (Quit) isEvent()            {}
func (Refresh) isEvent()         {}
func (RefreshAll) isEvent()      {}
func (FetchCompleted) isEvent()  {}
func (BatchCompleted) isEvent()  {}
func (ContentMeasured) isEvent() {}
func (Notice) isEvent()          {}

// FetchTicket is a fetch the presenter must run on the controller's behalf. The
// result is only applied while Generation is still the pending one.
type FetchTicket struct {
	Generation uint64
	Kind       TicketKind
	FeedIndex  int
	Source     sourceDomain.FeedSource
	Sources    []sourceDomain.FeedSource
}

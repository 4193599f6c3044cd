package tui

import (
	articleDomain "github.com/reshetovitsme/rss-reader/internal/modules/article/domain"
	feedDomain "github.com/reshetovitsme/rss-reader/internal/modules/feed/domain"
	navDomain "github.com/reshetovitsme/rss-reader/internal/modules/navigation/domain"
)

// fetchDoneMsg answers an open or refresh ticket
type fetchDoneMsg struct {
	Ticket navDomain.FetchTicket
	Items  []feedDomain.FeedItem
	Err    *feedDomain.FetchError
}

// batchDoneMsg answers a refresh-all ticket
type batchDoneMsg struct {
	Ticket  navDomain.FetchTicket
	Results []feedDomain.SourceResult
}

// savedMsg is sent when an article save finishes
type savedMsg struct {
	Record articleDomain.ArticleRecord
	Err    error
}

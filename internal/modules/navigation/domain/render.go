package domain

import (
	feedDomain "github.com/reshetovitsme/rss-reader/internal/modules/feed/domain"
	sourceDomain "github.com/reshetovitsme/rss-reader/internal/modules/source/domain"
)

// FeedRow is a feed list line. Fetched is set once a result is cached for the feed.
type FeedRow struct {
	Source    sourceDomain.FeedSource
	Fetched   bool
	ItemCount int
	Err       *feedDomain.FetchError
}

// RenderModel is a read-only projection of the top of the stack.
type RenderModel struct {
	Kind  ViewKind
	Depth int
	// Breadcrumb holds the titles of every frame from the bottom up.
	Breadcrumb []string

	Feeds   []FeedRow
	Source  sourceDomain.FeedSource
	Entries []Entry
	Item    *feedDomain.FeedItem

	Selected     int
	ScrollOffset int

	Loading       bool
	LoadingSource string
	Refreshing    bool
	Notice        string
	Quit          bool
}

// SelectedEntry returns the highlighted entry of an item list.
func (m RenderModel) SelectedEntry() (Entry, bool) {
	if m.Kind != ViewKindItemList || m.Selected < 0 || m.Selected >= len(m.Entries) {
		return nil, false
	}
	return m.Entries[m.Selected], true
}

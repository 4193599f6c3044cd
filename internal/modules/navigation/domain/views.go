package domain

import (
	feedDomain "github.com/reshetovitsme/rss-reader/internal/modules/feed/domain"
	sourceDomain "github.com/reshetovitsme/rss-reader/internal/modules/source/domain"
)

// View is one frame of the navigation stack.
type View interface {
	Kind() ViewKind
}

type FeedListView struct {
	Feeds    []sourceDomain.FeedSource
	Selected int
}

type ItemListView struct {
	FeedIndex int
	Source    sourceDomain.FeedSource
	Entries   []Entry
	Selected  int
}

// ArticleView shows one item. Lines is the rendered length reported by the
// presenter and bounds ScrollOffset.
type ArticleView struct {
	Source       sourceDomain.FeedSource
	Item         feedDomain.FeedItem
	ScrollOffset int
	Lines        int
}

func (FeedListView) Kind() ViewKind { return ViewKindFeedList }
func (ItemListView) Kind() ViewKind { return ViewKindItemList }
func (ArticleView) Kind() ViewKind  { return ViewKindArticle }

// Entry is an element of an item list: either an ItemEntry or an ErrorEntry.
type Entry interface {
	Label() string
	isEntry()
}

type ItemEntry struct {
	Item feedDomain.FeedItem
}

// ErrorEntry stands in for the items of a feed that could not be fetched.
type ErrorEntry struct {
	Err *feedDomain.FetchError
}

func (e ItemEntry) Label() string {
	if e.Item.Title == "" {
		return "No Title"
	}
	return e.Item.Title
}

func (e ErrorEntry) Label() string {
	return "Error: " + e.Err.Error()
}

func (ItemEntry) isEntry()  {}
func (ErrorEntry) isEntry() {}

// EntriesFromResult builds the entries of an item list for a fetch outcome.
func EntriesFromResult(items []feedDomain.FeedItem, err *feedDomain.FetchError) []Entry {
	if err != nil {
		return []Entry{ErrorEntry{Err: err}}
	}
	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, ItemEntry{Item: item})
	}
	return entries
}

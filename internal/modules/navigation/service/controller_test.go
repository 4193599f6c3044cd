package service_test

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	feedDomain "github.com/reshetovitsme/rss-reader/internal/modules/feed/domain"
	"github.com/reshetovitsme/rss-reader/internal/modules/navigation/domain"
	"github.com/reshetovitsme/rss-reader/internal/modules/navigation/service"
	sourceDomain "github.com/reshetovitsme/rss-reader/internal/modules/source/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feeds(names ...string) []sourceDomain.FeedSource {
	out := make([]sourceDomain.FeedSource, 0, len(names))
	for _, n := range names {
		url := "https://" + n + ".example.com/rss"
		out = append(out, sourceDomain.FeedSource{Name: n, Kind: sourceDomain.FeedKindRss, URLOrRoute: url, FetchURL: url})
	}
	return out
}

func items(source string, n int) []feedDomain.FeedItem {
	out := make([]feedDomain.FeedItem, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, feedDomain.FeedItem{
			Title:      fmt.Sprintf("%s item %d", source, i),
			Link:       fmt.Sprintf("https://%s.example.com/%d", source, i),
			SourceName: source,
		})
	}
	return out
}

// open selects the highlighted feed and completes its fetch with n items.
func open(t *testing.T, c *service.Controller, n int) domain.RenderModel {
	t.Helper()
	_, tickets := c.HandleEvent(domain.Select{})
	require.Len(t, tickets, 1)
	m, _ := c.HandleEvent(domain.FetchCompleted{Ticket: tickets[0], Items: items(tickets[0].Source.Name, n)})
	return m
}

func TestInitialState(t *testing.T) {
	c := service.New(feeds("a", "b"))

	m := c.CurrentRenderModel()
	assert.Equal(t, domain.ViewKindFeedList, m.Kind)
	assert.Equal(t, 1, m.Depth)
	assert.Equal(t, []string{"Feeds"}, m.Breadcrumb)
	require.Len(t, m.Feeds, 2)
	assert.False(t, m.Feeds[0].Fetched)
	assert.Equal(t, 0, m.Selected)
	assert.False(t, m.Loading)
}

func TestSelectFeedPushesItemListAfterFetch(t *testing.T) {
	c := service.New(feeds("a", "b"))
	c.HandleEvent(domain.MoveDown{})

	m, tickets := c.HandleEvent(domain.Select{})
	require.Len(t, tickets, 1)
	assert.Equal(t, domain.TicketKindOpen, tickets[0].Kind)
	assert.Equal(t, "b", tickets[0].Source.Name)
	assert.Equal(t, 1, tickets[0].FeedIndex)
	assert.True(t, m.Loading)
	assert.Equal(t, "b", m.LoadingSource)
	assert.Equal(t, domain.ViewKindFeedList, m.Kind)

	m, tickets = c.HandleEvent(domain.FetchCompleted{Ticket: tickets[0], Items: items("b", 3)})
	assert.Empty(t, tickets)
	assert.False(t, m.Loading)
	assert.Equal(t, domain.ViewKindItemList, m.Kind)
	assert.Equal(t, 2, m.Depth)
	assert.Equal(t, "b", m.Source.Name)
	require.Len(t, m.Entries, 3)
	assert.Equal(t, "b item 0", m.Entries[0].Label())
	assert.Equal(t, []string{"Feeds", "b"}, m.Breadcrumb)
}

func TestSelectItemPushesArticleAndBackPops(t *testing.T) {
	c := service.New(feeds("a"))
	open(t, c, 3)

	c.HandleEvent(domain.MoveDown{})
	m, tickets := c.HandleEvent(domain.Select{})
	assert.Empty(t, tickets)
	assert.Equal(t, domain.ViewKindArticle, m.Kind)
	require.NotNil(t, m.Item)
	assert.Equal(t, "a item 1", m.Item.Title)
	assert.Equal(t, 3, m.Depth)

	m, _ = c.HandleEvent(domain.Back{})
	assert.Equal(t, domain.ViewKindItemList, m.Kind)
	assert.Equal(t, 1, m.Selected, "selection survives the round trip")

	m, _ = c.HandleEvent(domain.Back{})
	assert.Equal(t, domain.ViewKindFeedList, m.Kind)

	m, _ = c.HandleEvent(domain.Back{})
	assert.Equal(t, domain.ViewKindFeedList, m.Kind)
	assert.Equal(t, 1, m.Depth, "back at the root is a no-op")
}

func TestMovesAreClamped(t *testing.T) {
	c := service.New(feeds("a", "b", "c"))

	m, _ := c.HandleEvent(domain.MoveUp{})
	assert.Equal(t, 0, m.Selected)

	for i := 0; i < 5; i++ {
		m, _ = c.HandleEvent(domain.MoveDown{})
	}
	assert.Equal(t, 2, m.Selected)

	m, _ = c.HandleEvent(domain.PageUp{})
	assert.Equal(t, 0, m.Selected)
	m, _ = c.HandleEvent(domain.PageDown{})
	assert.Equal(t, 2, m.Selected)
}

func TestMovesOnEmptyLists(t *testing.T) {
	c := service.New(nil)

	m, tickets := c.HandleEvent(domain.MoveDown{})
	assert.Equal(t, 0, m.Selected)
	_, tickets = c.HandleEvent(domain.Select{})
	assert.Empty(t, tickets)
	_, tickets = c.HandleEvent(domain.RefreshAll{})
	assert.Empty(t, tickets)

	c = service.New(feeds("a"))
	m = open(t, c, 0)
	assert.Equal(t, domain.ViewKindItemList, m.Kind)
	assert.Empty(t, m.Entries)

	m, _ = c.HandleEvent(domain.MoveDown{})
	assert.Equal(t, 0, m.Selected)
	m, _ = c.HandleEvent(domain.Select{})
	assert.Equal(t, domain.ViewKindItemList, m.Kind)
}

func TestArticleScrollUsesMeasuredLength(t *testing.T) {
	c := service.New(feeds("a"))
	open(t, c, 1)
	c.HandleEvent(domain.Select{})

	m, _ := c.HandleEvent(domain.MoveDown{})
	assert.Equal(t, 0, m.ScrollOffset, "nothing to scroll before the content is measured")

	c.HandleEvent(domain.ContentMeasured{Lines: 30, Page: 8})
	m, _ = c.HandleEvent(domain.MoveDown{})
	assert.Equal(t, 1, m.ScrollOffset)
	m, _ = c.HandleEvent(domain.PageDown{})
	assert.Equal(t, 9, m.ScrollOffset)

	for i := 0; i < 10; i++ {
		m, _ = c.HandleEvent(domain.PageDown{})
	}
	assert.Equal(t, 29, m.ScrollOffset)

	m, _ = c.HandleEvent(domain.ContentMeasured{Lines: 12, Page: 8})
	assert.Equal(t, 11, m.ScrollOffset, "shrinking content re-clamps the offset")

	for i := 0; i < 3; i++ {
		m, _ = c.HandleEvent(domain.PageUp{})
	}
	assert.Equal(t, 0, m.ScrollOffset)
}

func TestFailedFeedPushesSingleErrorEntry(t *testing.T) {
	c := service.New(feeds("one", "two", "three"))
	c.HandleEvent(domain.MoveDown{})

	_, tickets := c.HandleEvent(domain.Select{})
	require.Len(t, tickets, 1)
	fetchErr := feedDomain.NewNetworkError("two", errors.New("connection refused"))

	m, _ := c.HandleEvent(domain.FetchCompleted{Ticket: tickets[0], Err: fetchErr})
	assert.Equal(t, domain.ViewKindItemList, m.Kind)
	require.Len(t, m.Entries, 1)

	entry, ok := m.Entries[0].(domain.ErrorEntry)
	require.True(t, ok)
	assert.Equal(t, feedDomain.FetchErrorKindNetwork, entry.Err.Kind)
	assert.Contains(t, entry.Label(), "connection refused")

	m, _ = c.HandleEvent(domain.Select{})
	assert.Equal(t, domain.ViewKindItemList, m.Kind, "error entries cannot be opened")
}

func TestStaleFetchIsDiscarded(t *testing.T) {
	c := service.New(feeds("A", "B"))

	_, ticketsA := c.HandleEvent(domain.Select{})
	require.Len(t, ticketsA, 1)
	require.Equal(t, "A", ticketsA[0].Source.Name)

	m, _ := c.HandleEvent(domain.Back{})
	assert.False(t, m.Loading)
	assert.Equal(t, 1, m.Depth)

	c.HandleEvent(domain.MoveDown{})
	_, ticketsB := c.HandleEvent(domain.Select{})
	require.Len(t, ticketsB, 1)
	require.Equal(t, "B", ticketsB[0].Source.Name)
	assert.Greater(t, ticketsB[0].Generation, ticketsA[0].Generation)

	m, _ = c.HandleEvent(domain.FetchCompleted{Ticket: ticketsA[0], Items: items("A", 2)})
	assert.Equal(t, domain.ViewKindFeedList, m.Kind, "A's result must not open anything")
	assert.True(t, m.Loading)
	assert.False(t, m.Feeds[0].Fetched, "A's result must not be cached either")

	m, _ = c.HandleEvent(domain.FetchCompleted{Ticket: ticketsB[0], Items: items("B", 4)})
	assert.Equal(t, domain.ViewKindItemList, m.Kind)
	assert.Equal(t, "B", m.Source.Name)
	require.Len(t, m.Entries, 4)
	assert.Equal(t, "B item 0", m.Entries[0].Label())
}

func TestStaleFetchAfterLeavingItemList(t *testing.T) {
	c := service.New(feeds("A"))
	open(t, c, 2)

	_, tickets := c.HandleEvent(domain.Refresh{})
	require.Len(t, tickets, 1)
	assert.Equal(t, domain.TicketKindRefresh, tickets[0].Kind)

	c.HandleEvent(domain.Back{})
	m, _ := c.HandleEvent(domain.FetchCompleted{Ticket: tickets[0], Items: items("A", 9)})
	assert.Equal(t, domain.ViewKindFeedList, m.Kind)
	assert.Equal(t, 2, m.Feeds[0].ItemCount)
}

func TestSelectIgnoredWhileLoading(t *testing.T) {
	c := service.New(feeds("A", "B"))

	_, first := c.HandleEvent(domain.Select{})
	require.Len(t, first, 1)

	c.HandleEvent(domain.MoveDown{})
	_, second := c.HandleEvent(domain.Select{})
	assert.Empty(t, second)

	m, _ := c.HandleEvent(domain.FetchCompleted{Ticket: first[0], Items: items("A", 1)})
	assert.Equal(t, "A", m.Source.Name)
}

func TestRefreshReplacesEntries(t *testing.T) {
	c := service.New(feeds("A"))
	open(t, c, 5)
	for i := 0; i < 4; i++ {
		c.HandleEvent(domain.MoveDown{})
	}

	_, tickets := c.HandleEvent(domain.Refresh{})
	require.Len(t, tickets, 1)
	m, _ := c.HandleEvent(domain.FetchCompleted{Ticket: tickets[0], Items: items("A", 2)})

	assert.Equal(t, domain.ViewKindItemList, m.Kind)
	assert.Equal(t, 2, m.Depth)
	assert.Len(t, m.Entries, 2)
	assert.Equal(t, 1, m.Selected)
}

func TestRefreshAllFillsCacheInSourceOrder(t *testing.T) {
	sources := feeds("one", "two", "three")
	c := service.New(sources)

	m, tickets := c.HandleEvent(domain.RefreshAll{})
	require.Len(t, tickets, 1)
	assert.Equal(t, domain.TicketKindBatch, tickets[0].Kind)
	assert.Equal(t, sources, tickets[0].Sources)
	assert.True(t, m.Refreshing)

	_, again := c.HandleEvent(domain.RefreshAll{})
	assert.Empty(t, again, "only one batch at a time")

	results := []feedDomain.SourceResult{
		{Source: sources[0], Items: items("one", 2)},
		{Source: sources[1], Err: feedDomain.NewNetworkError("two", errors.New("timeout"))},
		{Source: sources[2], Items: items("three", 1)},
	}
	m, _ = c.HandleEvent(domain.BatchCompleted{Ticket: tickets[0], Results: results})
	assert.False(t, m.Refreshing)
	assert.Equal(t, 2, m.Feeds[0].ItemCount)
	assert.NotNil(t, m.Feeds[1].Err)
	assert.Equal(t, 1, m.Feeds[2].ItemCount)

	c.HandleEvent(domain.MoveDown{})
	m, tickets = c.HandleEvent(domain.Select{})
	assert.Empty(t, tickets, "cached feeds open without a fetch")
	assert.Equal(t, domain.ViewKindItemList, m.Kind)
	require.Len(t, m.Entries, 1)
	_, isErr := m.Entries[0].(domain.ErrorEntry)
	assert.True(t, isErr)
}

func TestStaleBatchIsDiscarded(t *testing.T) {
	sources := feeds("one")
	c := service.New(sources)

	_, first := c.HandleEvent(domain.RefreshAll{})
	require.Len(t, first, 1)
	c.HandleEvent(domain.Quit{})

	m, _ := c.HandleEvent(domain.BatchCompleted{Ticket: first[0], Results: []feedDomain.SourceResult{{Source: sources[0], Items: items("one", 1)}}})
	assert.True(t, m.Quit)
	assert.False(t, m.Feeds[0].Fetched)
}

func TestPreloadOpensWithoutFetch(t *testing.T) {
	sources := feeds("only")
	c := service.New(sources)
	c.Preload([]feedDomain.SourceResult{{Source: sources[0], Items: items("only", 3)}})

	m, tickets := c.HandleEvent(domain.Select{})
	assert.Empty(t, tickets)
	assert.Equal(t, domain.ViewKindItemList, m.Kind)
	assert.Len(t, m.Entries, 3)
}

func TestNoticeIsTransient(t *testing.T) {
	c := service.New(feeds("a", "b"))

	m, _ := c.HandleEvent(domain.Notice{Text: "failed to save article"})
	assert.Equal(t, "failed to save article", m.Notice)

	m, _ = c.HandleEvent(domain.MoveDown{})
	assert.Empty(t, m.Notice)
}

func TestQuitStopsTheController(t *testing.T) {
	c := service.New(feeds("a"))
	_, tickets := c.HandleEvent(domain.Select{})
	require.Len(t, tickets, 1)

	m, _ := c.HandleEvent(domain.Quit{})
	assert.True(t, m.Quit)
	assert.False(t, m.Loading)
	assert.True(t, c.Done())

	m, tickets = c.HandleEvent(domain.FetchCompleted{Ticket: tickets[0], Items: items("a", 1)})
	assert.Empty(t, tickets)
	assert.Equal(t, domain.ViewKindFeedList, m.Kind)
}

func TestRandomEventSequencesKeepStackInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	sources := feeds("a", "b", "c", "d")

	for run := 0; run < 50; run++ {
		c := service.New(sources)
		var outstanding []domain.FetchTicket

		for step := 0; step < 200; step++ {
			var ev domain.Event
			switch rng.IntN(10) {
			case 0:
				ev = domain.MoveUp{}
			case 1:
				ev = domain.MoveDown{}
			case 2:
				ev = domain.PageDown{}
			case 3:
				ev = domain.Select{}
			case 4:
				ev = domain.Back{}
			case 5:
				ev = domain.Refresh{}
			case 6:
				ev = domain.RefreshAll{}
			case 7:
				ev = domain.ContentMeasured{Lines: rng.IntN(40), Page: 1 + rng.IntN(10)}
			default:
				if len(outstanding) == 0 {
					ev = domain.MoveDown{}
					break
				}
				i := rng.IntN(len(outstanding))
				tk := outstanding[i]
				outstanding = append(outstanding[:i], outstanding[i+1:]...)
				if tk.Kind == domain.TicketKindBatch {
					results := make([]feedDomain.SourceResult, len(tk.Sources))
					for j, src := range tk.Sources {
						results[j] = feedDomain.SourceResult{Source: src, Items: items(src.Name, rng.IntN(5))}
					}
					ev = domain.BatchCompleted{Ticket: tk, Results: results}
				} else if rng.IntN(3) == 0 {
					ev = domain.FetchCompleted{Ticket: tk, Err: feedDomain.NewParseError(tk.Source.Name, errors.New("bad xml"))}
				} else {
					ev = domain.FetchCompleted{Ticket: tk, Items: items(tk.Source.Name, rng.IntN(6))}
				}
			}

			m, tickets := c.HandleEvent(ev)
			outstanding = append(outstanding, tickets...)

			require.GreaterOrEqual(t, m.Depth, 1)
			require.LessOrEqual(t, m.Depth, 3)
			require.Equal(t, "Feeds", m.Breadcrumb[0])
			require.Len(t, m.Breadcrumb, m.Depth)

			switch m.Kind {
			case domain.ViewKindFeedList:
				require.Equal(t, 1, m.Depth)
				require.True(t, m.Selected >= 0 && m.Selected <= max(0, len(m.Feeds)-1))
			case domain.ViewKindItemList:
				require.Equal(t, 2, m.Depth)
				require.True(t, m.Selected >= 0 && m.Selected <= max(0, len(m.Entries)-1))
			case domain.ViewKindArticle:
				require.Equal(t, 3, m.Depth)
				require.NotNil(t, m.Item)
				require.GreaterOrEqual(t, m.ScrollOffset, 0)
			}
		}
	}
}

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	articleDomain "github.com/reshetovitsme/rss-reader/internal/modules/article/domain"
	feedDomain "github.com/reshetovitsme/rss-reader/internal/modules/feed/domain"
	navDomain "github.com/reshetovitsme/rss-reader/internal/modules/navigation/domain"
	navService "github.com/reshetovitsme/rss-reader/internal/modules/navigation/service"
	sourceDomain "github.com/reshetovitsme/rss-reader/internal/modules/source/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAggregator struct {
	items map[string][]feedDomain.FeedItem
	errs  map[string]error
}

func (f *fakeAggregator) FetchItems(_ context.Context, src sourceDomain.FeedSource) ([]feedDomain.FeedItem, error) {
	if err := f.errs[src.Name]; err != nil {
		return nil, feedDomain.NewNetworkError(src.Name, err)
	}
	return f.items[src.Name], nil
}

func (f *fakeAggregator) FetchAll(ctx context.Context, sources []sourceDomain.FeedSource) []feedDomain.SourceResult {
	out := make([]feedDomain.SourceResult, 0, len(sources))
	for _, src := range sources {
		items, err := f.FetchItems(ctx, src)
		out = append(out, feedDomain.SourceResult{Source: src, Items: items, Err: feedDomain.AsFetchError(src.Name, err)})
	}
	return out
}

type fakeSaver struct {
	saved []feedDomain.FeedItem
	err   error
}

func (f *fakeSaver) Save(_ context.Context, sourceName, _ string, item feedDomain.FeedItem) (articleDomain.ArticleRecord, string, error) {
	if f.err != nil {
		return articleDomain.ArticleRecord{}, "", f.err
	}
	f.saved = append(f.saved, item)
	return articleDomain.ArticleRecord{ArticleName: item.Title, SourceName: sourceName, StoragePath: "articles/x.md"}, "", nil
}

func testSources() []sourceDomain.FeedSource {
	return []sourceDomain.FeedSource{
		{Name: "News", Kind: sourceDomain.FeedKindRss, FetchURL: "https://news.example.com/rss"},
		{Name: "Down", Kind: sourceDomain.FeedKindRsshub, FetchURL: "https://rsshub.app/down"},
	}
}

func testAggregator() *fakeAggregator {
	items := make([]feedDomain.FeedItem, 0, 3)
	for i := 0; i < 3; i++ {
		items = append(items, feedDomain.FeedItem{
			Title:      fmt.Sprintf("Story %d", i),
			Link:       fmt.Sprintf("https://news.example.com/%d", i),
			Content:    fmt.Sprintf("<p>Body of story %d</p>", i),
			SourceName: "News",
		})
	}
	return &fakeAggregator{
		items: map[string][]feedDomain.FeedItem{"News": items},
		errs:  map[string]error{"Down": errors.New("connection refused")},
	}
}

func newTestModel(opts ...Option) Model {
	opts = append([]Option{WithStyle("notty")}, opts...)
	return NewModel(context.Background(), navService.New(testSources()), testAggregator(), opts...)
}

// drain runs cmd and feeds every resulting message back into the model,
// skipping spinner ticks.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			m = drain(t, m, c)
		}
		return m
	case fetchDoneMsg, batchDoneMsg, savedMsg:
		next, more := m.Update(msg)
		return drain(t, next.(Model), more)
	default:
		return m
	}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "ctrl+c":
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, cmd := m.Update(msg)
		m = drain(t, next.(Model), cmd)
	}
	return m
}

func TestOpenFeedAndArticle(t *testing.T) {
	m := newTestModel()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	m = next.(Model)

	m = press(t, m, "enter")
	assert.Equal(t, navDomain.ViewKindItemList, m.RenderModel().Kind)
	assert.Contains(t, m.View(), "Story 0")

	m = press(t, m, "j", "enter")
	r := m.RenderModel()
	require.Equal(t, navDomain.ViewKindArticle, r.Kind)
	assert.Equal(t, "Story 1", r.Item.Title)
	assert.Contains(t, m.View(), "Body of story 1")

	m = press(t, m, "q")
	assert.Equal(t, navDomain.ViewKindItemList, m.RenderModel().Kind, "q leaves the article")

	m = press(t, m, "esc")
	assert.Equal(t, navDomain.ViewKindFeedList, m.RenderModel().Kind)
}

func TestFailedFeedShowsErrorEntry(t *testing.T) {
	m := newTestModel()

	m = press(t, m, "j", "enter")
	r := m.RenderModel()
	require.Equal(t, navDomain.ViewKindItemList, r.Kind)
	require.Len(t, r.Entries, 1)
	_, ok := r.Entries[0].(navDomain.ErrorEntry)
	assert.True(t, ok)
	assert.Contains(t, m.View(), "connection refused")
}

func TestRefreshAllShowsCounts(t *testing.T) {
	m := newTestModel()

	m = press(t, m, "R")
	r := m.RenderModel()
	assert.False(t, r.Refreshing)
	assert.Equal(t, 3, r.Feeds[0].ItemCount)
	assert.NotNil(t, r.Feeds[1].Err)

	view := m.View()
	assert.Contains(t, view, "3 items")
	assert.Contains(t, view, "error")
}

func TestSaveArticle(t *testing.T) {
	saver := &fakeSaver{}
	m := newTestModel(WithSaver(saver))

	m = press(t, m, "enter", "enter", "s")
	require.Len(t, saver.saved, 1)
	assert.Equal(t, "Story 0", saver.saved[0].Title)
	assert.Equal(t, "Saved to articles/x.md", m.RenderModel().Notice)
}

func TestSaveFailureIsANotice(t *testing.T) {
	saver := &fakeSaver{err: errors.New("disk full")}
	m := newTestModel(WithSaver(saver))

	m = press(t, m, "enter", "enter", "s")
	r := m.RenderModel()
	assert.Equal(t, navDomain.ViewKindArticle, r.Kind, "a failed save leaves navigation intact")
	assert.Contains(t, r.Notice, "disk full")
	assert.Contains(t, m.View(), "disk full")
}

func TestAutoOpen(t *testing.T) {
	m := newTestModel(WithAutoOpen(0))
	assert.True(t, m.RenderModel().Loading)

	m = drain(t, m, m.Init())
	assert.Equal(t, navDomain.ViewKindItemList, m.RenderModel().Kind)
}

func TestStartupNoticeWithoutSaver(t *testing.T) {
	m := newTestModel(WithAutoOpen(0), WithNotice("Storage unavailable, saving disabled"))
	m = drain(t, m, m.Init())

	r := m.RenderModel()
	assert.Equal(t, navDomain.ViewKindItemList, r.Kind)
	assert.Equal(t, "Storage unavailable, saving disabled", r.Notice)
	assert.Contains(t, m.View(), "saving disabled")

	m = press(t, m, "enter", "s")
	assert.Equal(t, navDomain.ViewKindArticle, m.RenderModel().Kind)
	assert.Equal(t, "Saving is disabled", m.RenderModel().Notice)
}

func TestArticleScrollIsBoundedByRenderedLines(t *testing.T) {
	m := newTestModel()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 8})
	m = next.(Model)

	m = press(t, m, "enter", "enter")
	for i := 0; i < 50; i++ {
		m = press(t, m, "j")
	}
	assert.Equal(t, len(m.lines)-1, m.RenderModel().ScrollOffset)
	assert.NotEmpty(t, strings.TrimSpace(m.View()))
}

func TestQuit(t *testing.T) {
	m := newTestModel()

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, next.(Model).RenderModel().Quit)
}

func TestWindow(t *testing.T) {
	tests := []struct {
		selected, n, page, start, end int
	}{
		{0, 3, 10, 0, 3},
		{0, 20, 5, 0, 5},
		{10, 20, 5, 8, 13},
		{19, 20, 5, 15, 20},
	}
	for _, tt := range tests {
		start, end := window(tt.selected, tt.n, tt.page)
		assert.Equal(t, tt.start, start)
		assert.Equal(t, tt.end, end)
	}
}

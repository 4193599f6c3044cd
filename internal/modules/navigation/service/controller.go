package service

import (
	"log/slog"
	"slices"

	feedDomain "github.com/reshetovitsme/rss-reader/internal/modules/feed/domain"
	"github.com/reshetovitsme/rss-reader/internal/modules/navigation/domain"
	sourceDomain "github.com/reshetovitsme/rss-reader/internal/modules/source/domain"
)

// DefaultPageSize is the page step used until the presenter reports its height.
const DefaultPageSize = 10

// Controller is the view-stack state machine behind the terminal UI. It handles
// one event at a time and never performs I/O: fetches are handed back to the
// caller as tickets whose results re-enter as completion events.
//
// Controller is not safe for concurrent use.
type Controller struct {
	stack []domain.View
	cache map[int]feedDomain.SourceResult

	generation uint64
	pending    *domain.FetchTicket
	batch      *domain.FetchTicket

	page   int
	notice string
	quit   bool

	logger *slog.Logger
}

// New creates a controller whose stack holds a single feed list of sources.
func New(sources []sourceDomain.FeedSource) *Controller {
	return &Controller{
		stack:  []domain.View{&domain.FeedListView{Feeds: slices.Clone(sources)}},
		cache:  make(map[int]feedDomain.SourceResult),
		page:   DefaultPageSize,
		logger: slog.Default(),
	}
}

// SetLogger sets the logger
func (c *Controller) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

// Preload caches already fetched results so selecting those feeds opens them
// without a fetch. results[i] belongs to the i-th feed.
func (c *Controller) Preload(results []feedDomain.SourceResult) {
	feeds := c.root().Feeds
	for i, res := range results {
		if i >= len(feeds) {
			break
		}
		c.cache[i] = res
	}
}

// Depth returns the number of frames on the stack.
func (c *Controller) Depth() int {
	return len(c.stack)
}

// Generation returns the generation of the most recently issued ticket.
func (c *Controller) Generation() uint64 {
	return c.generation
}

// Done reports whether a quit event has been handled.
func (c *Controller) Done() bool {
	return c.quit
}

// HandleEvent applies ev and returns the new render model plus any fetches the
// caller must start. After Quit every event is ignored.
func (c *Controller) HandleEvent(ev domain.Event) (domain.RenderModel, []domain.FetchTicket) {
	if c.quit {
		return c.CurrentRenderModel(), nil
	}

	var tickets []domain.FetchTicket
	switch e := ev.(type) {
	case domain.MoveUp:
		c.notice = ""
		c.move(-1)
	case domain.MoveDown:
		c.notice = ""
		c.move(1)
	case domain.PageUp:
		c.notice = ""
		c.move(-c.page)
	case domain.PageDown:
		c.notice = ""
		c.move(c.page)
	case domain.Select:
		c.notice = ""
		tickets = c.selectTop()
	case domain.Back:
		c.notice = ""
		c.back()
	case domain.Quit:
		c.cancelPending()
		c.batch = nil
		c.quit = true
	case domain.Refresh:
		c.notice = ""
		tickets = c.refresh()
	case domain.RefreshAll:
		c.notice = ""
		tickets = c.refreshAll()
	case domain.FetchCompleted:
		c.applyFetch(e)
	case domain.BatchCompleted:
		c.applyBatch(e)
	case domain.ContentMeasured:
		c.measure(e)
	case domain.Notice:
		c.notice = e.Text
	default:
		c.logger.Warn("Ignoring unknown navigation event", "event", ev)
	}

	return c.CurrentRenderModel(), tickets
}

func (c *Controller) top() domain.View {
	return c.stack[len(c.stack)-1]
}

func (c *Controller) root() *domain.FeedListView {
	return c.stack[0].(*domain.FeedListView)
}

func (c *Controller) push(v domain.View) {
	c.stack = append(c.stack, v)
}

func (c *Controller) move(delta int) {
	switch v := c.top().(type) {
	case *domain.FeedListView:
		v.Selected = clamp(v.Selected+delta, len(v.Feeds))
	case *domain.ItemListView:
		v.Selected = clamp(v.Selected+delta, len(v.Entries))
	case *domain.ArticleView:
		v.ScrollOffset = clamp(v.ScrollOffset+delta, v.Lines)
	}
}

func (c *Controller) selectTop() []domain.FetchTicket {
	if c.pending != nil {
		c.logger.Debug("Ignoring select while a fetch is in flight", "source", c.pending.Source.Name)
		return nil
	}

	switch v := c.top().(type) {
	case *domain.FeedListView:
		if len(v.Feeds) == 0 {
			return nil
		}
		if res, ok := c.cache[v.Selected]; ok {
			c.pushItemList(v.Selected, res.Source, res.Items, res.Err)
			return nil
		}
		return []domain.FetchTicket{c.issue(domain.TicketKindOpen, v.Selected, v.Feeds[v.Selected])}
	case *domain.ItemListView:
		if len(v.Entries) == 0 {
			return nil
		}
		if entry, ok := v.Entries[v.Selected].(domain.ItemEntry); ok {
			c.push(&domain.ArticleView{Source: v.Source, Item: entry.Item})
		}
	}
	return nil
}

func (c *Controller) back() {
	c.cancelPending()
	if len(c.stack) > 1 {
		c.stack = c.stack[:len(c.stack)-1]
	}
}

func (c *Controller) refresh() []domain.FetchTicket {
	if c.pending != nil {
		return nil
	}
	switch v := c.top().(type) {
	case *domain.FeedListView:
		if len(v.Feeds) == 0 {
			return nil
		}
		return []domain.FetchTicket{c.issue(domain.TicketKindOpen, v.Selected, v.Feeds[v.Selected])}
	case *domain.ItemListView:
		return []domain.FetchTicket{c.issue(domain.TicketKindRefresh, v.FeedIndex, v.Source)}
	}
	return nil
}

func (c *Controller) refreshAll() []domain.FetchTicket {
	if c.batch != nil {
		return nil
	}
	feeds := c.root().Feeds
	if len(feeds) == 0 {
		return nil
	}
	c.generation++
	t := domain.FetchTicket{
		Generation: c.generation,
		Kind:       domain.TicketKindBatch,
		Sources:    slices.Clone(feeds),
	}
	c.batch = &t
	return []domain.FetchTicket{t}
}

func (c *Controller) issue(kind domain.TicketKind, index int, src sourceDomain.FeedSource) domain.FetchTicket {
	c.generation++
	t := domain.FetchTicket{
		Generation: c.generation,
		Kind:       kind,
		FeedIndex:  index,
		Source:     src,
	}
	c.pending = &t
	return t
}

// cancelPending supersedes the outstanding single fetch so its result is discarded.
func (c *Controller) cancelPending() {
	if c.pending == nil {
		return
	}
	c.logger.Debug("Cancelling fetch", "source", c.pending.Source.Name, "generation", c.pending.Generation)
	c.pending = nil
	c.generation++
}

func (c *Controller) applyFetch(e domain.FetchCompleted) {
	if c.pending == nil || e.Ticket.Generation != c.pending.Generation {
		c.logger.Debug("Discarding stale fetch result", "source", e.Ticket.Source.Name, "generation", e.Ticket.Generation)
		return
	}
	t := *c.pending
	c.pending = nil

	res := feedDomain.SourceResult{Source: t.Source, Items: e.Items, Err: e.Err}
	if res.Err == nil && res.Items == nil {
		res.Items = []feedDomain.FeedItem{}
	}
	c.cache[t.FeedIndex] = res

	switch t.Kind {
	case domain.TicketKindOpen:
		if _, ok := c.top().(*domain.FeedListView); ok {
			c.root().Selected = t.FeedIndex
			c.pushItemList(t.FeedIndex, t.Source, res.Items, res.Err)
		}
	case domain.TicketKindRefresh:
		if v, ok := c.top().(*domain.ItemListView); ok && v.FeedIndex == t.FeedIndex {
			v.Entries = domain.EntriesFromResult(res.Items, res.Err)
			v.Selected = clamp(v.Selected, len(v.Entries))
		}
	}
}

func (c *Controller) applyBatch(e domain.BatchCompleted) {
	if c.batch == nil || e.Ticket.Generation != c.batch.Generation {
		c.logger.Debug("Discarding stale batch result", "generation", e.Ticket.Generation)
		return
	}
	c.batch = nil

	for i, res := range e.Results {
		c.cache[i] = res
	}

	for _, frame := range c.stack {
		v, ok := frame.(*domain.ItemListView)
		if !ok {
			continue
		}
		if res, ok := c.cache[v.FeedIndex]; ok {
			v.Entries = domain.EntriesFromResult(res.Items, res.Err)
			v.Selected = clamp(v.Selected, len(v.Entries))
		}
	}
}

func (c *Controller) measure(e domain.ContentMeasured) {
	if e.Page > 0 {
		c.page = e.Page
	}
	if v, ok := c.top().(*domain.ArticleView); ok {
		v.Lines = max(e.Lines, 0)
		v.ScrollOffset = clamp(v.ScrollOffset, v.Lines)
	}
}

func (c *Controller) pushItemList(index int, src sourceDomain.FeedSource, items []feedDomain.FeedItem, err *feedDomain.FetchError) {
	c.push(&domain.ItemListView{
		FeedIndex: index,
		Source:    src,
		Entries:   domain.EntriesFromResult(items, err),
	})
}

// CurrentRenderModel projects the top of the stack without changing state.
func (c *Controller) CurrentRenderModel() domain.RenderModel {
	m := domain.RenderModel{
		Kind:       c.top().Kind(),
		Depth:      len(c.stack),
		Breadcrumb: make([]string, 0, len(c.stack)),
		Feeds:      c.feedRows(),
		Refreshing: c.batch != nil,
		Notice:     c.notice,
		Quit:       c.quit,
	}
	if c.pending != nil {
		m.Loading = true
		m.LoadingSource = c.pending.Source.Name
	}

	for _, frame := range c.stack {
		switch v := frame.(type) {
		case *domain.FeedListView:
			m.Breadcrumb = append(m.Breadcrumb, "Feeds")
		case *domain.ItemListView:
			m.Breadcrumb = append(m.Breadcrumb, v.Source.Name)
		case *domain.ArticleView:
			m.Breadcrumb = append(m.Breadcrumb, domain.ItemEntry{Item: v.Item}.Label())
		}
	}

	switch v := c.top().(type) {
	case *domain.FeedListView:
		m.Selected = v.Selected
	case *domain.ItemListView:
		m.Source = v.Source
		m.Entries = slices.Clone(v.Entries)
		m.Selected = v.Selected
	case *domain.ArticleView:
		item := v.Item
		m.Source = v.Source
		m.Item = &item
		m.ScrollOffset = v.ScrollOffset
	}

	return m
}

func (c *Controller) feedRows() []domain.FeedRow {
	feeds := c.root().Feeds
	rows := make([]domain.FeedRow, len(feeds))
	for i, src := range feeds {
		rows[i] = domain.FeedRow{Source: src}
		if res, ok := c.cache[i]; ok {
			rows[i].Fetched = true
			rows[i].ItemCount = len(res.Items)
			rows[i].Err = res.Err
		}
	}
	return rows
}

// clamp bounds i to [0, max(0, n-1)].
func clamp(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

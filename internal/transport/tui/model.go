package tui

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	feedDomain "github.com/reshetovitsme/rss-reader/internal/modules/feed/domain"
	navDomain "github.com/reshetovitsme/rss-reader/internal/modules/navigation/domain"
	navService "github.com/reshetovitsme/rss-reader/internal/modules/navigation/service"
)

// chromeLines is the number of rows used by the header and footer.
const chromeLines = 4

// Model is the bubbletea presenter. It owns no navigation state of its own: it
// forwards input to the controller and draws the render model it returns.
type Model struct {
	ctx        context.Context
	controller *navService.Controller
	agg        Aggregator
	saver      ArticleSaver
	keys       keyMap
	spinner    spinner.Model
	articles   *articleRenderer
	logger     *slog.Logger

	render navDomain.RenderModel
	// lines caches the rendered article shown in render.Item
	lines     []string
	linesFor  *feedDomain.FeedItem
	linesWide int

	initial []navDomain.FetchTicket
	width   int
	height  int
}

// Option configures a Model
type Option func(*Model)

// WithSaver enables saving the open article with the save key.
func WithSaver(saver ArticleSaver) Option {
	return func(m *Model) {
		m.saver = saver
	}
}

// WithStyle sets the glamour style used for articles ("dark", "light", "notty"...).
func WithStyle(style string) Option {
	return func(m *Model) {
		m.articles = newArticleRenderer(style)
	}
}

// WithAutoOpen opens the feed at index as soon as the program starts.
func WithAutoOpen(index int) Option {
	return func(m *Model) {
		for i := 0; i < index; i++ {
			m.controller.HandleEvent(navDomain.MoveDown{})
		}
		m.render, m.initial = m.controller.HandleEvent(navDomain.Select{})
	}
}

// WithNotice shows text in the status line until the next key press. Apply it
// after WithAutoOpen, since selecting clears notices.
func WithNotice(text string) Option {
	return func(m *Model) {
		m.render, _ = m.controller.HandleEvent(navDomain.Notice{Text: text})
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		m.logger = logger
	}
}

// NewModel creates a presenter for controller. Fetch tickets are executed with agg.
func NewModel(ctx context.Context, controller *navService.Controller, agg Aggregator, opts ...Option) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(colorPrimary))

	m := Model{
		ctx:        ctx,
		controller: controller,
		agg:        agg,
		keys:       defaultKeyMap(),
		spinner:    s,
		articles:   newArticleRenderer("dark"),
		logger:     slog.Default(),
		render:     controller.CurrentRenderModel(),
		width:      80,
		height:     24,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init implements tea.Model interface
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	for _, t := range m.initial {
		cmds = append(cmds, runTicket(m.ctx, m.agg, t))
	}
	return tea.Batch(cmds...)
}

// RenderModel returns the last render model received from the controller.
func (m Model) RenderModel() navDomain.RenderModel {
	return m.render
}

func (m Model) pageSize() int {
	return max(m.height-chromeLines, 1)
}

// Run starts the terminal UI and blocks until the user quits or ctx is done.
func Run(ctx context.Context, controller *navService.Controller, agg Aggregator, opts ...Option) error {
	p := tea.NewProgram(
		NewModel(ctx, controller, agg, opts...),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}

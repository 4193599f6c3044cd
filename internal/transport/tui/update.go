package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	navDomain "github.com/reshetovitsme/rss-reader/internal/modules/navigation/domain"
)

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m.layout(true), nil
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case fetchDoneMsg:
		return m.dispatch(navDomain.FetchCompleted{Ticket: msg.Ticket, Items: msg.Items, Err: msg.Err})
	case batchDoneMsg:
		return m.dispatch(navDomain.BatchCompleted{Ticket: msg.Ticket, Results: msg.Results})
	case savedMsg:
		return m.handleSaved(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKeyPress maps keyboard input onto navigation events
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		return m.dispatch(navDomain.Quit{})
	case key.Matches(msg, m.keys.Quit):
		if m.render.Kind == navDomain.ViewKindArticle {
			return m.dispatch(navDomain.Back{})
		}
		return m.dispatch(navDomain.Quit{})
	case key.Matches(msg, m.keys.Up):
		return m.dispatch(navDomain.MoveUp{})
	case key.Matches(msg, m.keys.Down):
		return m.dispatch(navDomain.MoveDown{})
	case key.Matches(msg, m.keys.PageUp):
		return m.dispatch(navDomain.PageUp{})
	case key.Matches(msg, m.keys.PageDown):
		return m.dispatch(navDomain.PageDown{})
	case key.Matches(msg, m.keys.Select):
		return m.dispatch(navDomain.Select{})
	case key.Matches(msg, m.keys.Back):
		return m.dispatch(navDomain.Back{})
	case key.Matches(msg, m.keys.Refresh):
		return m.dispatch(navDomain.Refresh{})
	case key.Matches(msg, m.keys.RefreshAll):
		return m.dispatch(navDomain.RefreshAll{})
	case key.Matches(msg, m.keys.Save):
		if m.render.Kind != navDomain.ViewKindArticle || m.render.Item == nil {
			return m, nil
		}
		if m.saver == nil {
			return m.dispatch(navDomain.Notice{Text: "Saving is disabled"})
		}
		return m, saveArticle(m.ctx, m.saver, m.render.Source, *m.render.Item)
	}
	return m, nil
}

// handleSaved reports the outcome of a save as a transient notice
func (m Model) handleSaved(msg savedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.logger.Error("Failed to save article", "error", msg.Err)
		return m.dispatch(navDomain.Notice{Text: fmt.Sprintf("Save failed: %v", msg.Err)})
	}
	return m.dispatch(navDomain.Notice{Text: "Saved to " + msg.Record.StoragePath})
}

// dispatch feeds ev to the controller and starts any fetches it asks for
func (m Model) dispatch(ev navDomain.Event) (tea.Model, tea.Cmd) {
	render, tickets := m.controller.HandleEvent(ev)
	m.render = render
	if m.render.Quit {
		return m, tea.Quit
	}

	m = m.layout(false)

	cmds := make([]tea.Cmd, 0, len(tickets))
	for _, t := range tickets {
		cmds = append(cmds, runTicket(m.ctx, m.agg, t))
	}
	return m, tea.Batch(cmds...)
}

// layout re-renders the open article when it or the terminal width changed and
// reports the result to the controller so scrolling is bounded by real content.
func (m Model) layout(resized bool) Model {
	if m.render.Kind != navDomain.ViewKindArticle || m.render.Item == nil {
		m.lines = nil
		m.linesFor = nil
		if resized {
			m.render, _ = m.controller.HandleEvent(navDomain.ContentMeasured{Page: m.pageSize()})
		}
		return m
	}

	same := m.linesFor != nil && *m.linesFor == *m.render.Item && m.linesWide == m.width
	if same && !resized {
		return m
	}

	item := *m.render.Item
	m.lines = m.articles.Lines(item, m.width)
	m.linesFor = &item
	m.linesWide = m.width
	m.render, _ = m.controller.HandleEvent(navDomain.ContentMeasured{Lines: len(m.lines), Page: m.pageSize()})
	return m
}

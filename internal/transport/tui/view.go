package tui

import (
	"fmt"
	"strings"

	navDomain "github.com/reshetovitsme/rss-reader/internal/modules/navigation/domain"
)

// View implements tea.Model interface
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("rssreader"))
	b.WriteString(" ")
	b.WriteString(BreadcrumbStyle.Render(strings.Join(m.render.Breadcrumb, " › ")))
	b.WriteString("\n\n")

	switch m.render.Kind {
	case navDomain.ViewKindFeedList:
		b.WriteString(m.feedListView())
	case navDomain.ViewKindItemList:
		b.WriteString(m.itemListView())
	case navDomain.ViewKindArticle:
		b.WriteString(m.articleView())
	}

	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

func (m Model) feedListView() string {
	if len(m.render.Feeds) == 0 {
		return InfoStyle.Render("No feeds configured.")
	}

	start, end := window(m.render.Selected, len(m.render.Feeds), m.pageSize())
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		row := m.render.Feeds[i]
		line := fmt.Sprintf("%s [%s]", row.Source.Name, row.Source.Kind)
		switch {
		case row.Err != nil:
			line += " " + ErrorStyle.Render("error")
		case row.Fetched:
			line += " " + InfoStyle.Render(fmt.Sprintf("%d items", row.ItemCount))
		}
		lines = append(lines, m.marker(i, line))
	}
	return strings.Join(lines, "\n")
}

func (m Model) itemListView() string {
	if len(m.render.Entries) == 0 {
		return InfoStyle.Render("No items in this feed.")
	}

	start, end := window(m.render.Selected, len(m.render.Entries), m.pageSize())
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		switch e := m.render.Entries[i].(type) {
		case navDomain.ErrorEntry:
			lines = append(lines, m.marker(i, ErrorStyle.Render(e.Label())))
		case navDomain.ItemEntry:
			label := e.Label()
			if e.Item.PublishedAt != nil {
				label = InfoStyle.Render(e.Item.PublishedAt.Local().Format("2006-01-02")) + " " + label
			}
			lines = append(lines, m.marker(i, label))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) articleView() string {
	if len(m.lines) == 0 {
		return ""
	}
	start := min(m.render.ScrollOffset, len(m.lines)-1)
	end := min(start+m.pageSize(), len(m.lines))
	return strings.Join(m.lines[start:end], "\n")
}

func (m Model) marker(i int, line string) string {
	if i == m.render.Selected {
		return SelectedStyle.Render("> " + line)
	}
	return "  " + line
}

func (m Model) statusLine() string {
	var parts []string
	if m.render.Loading {
		parts = append(parts, StatusStyle.Render(fmt.Sprintf("%s Loading %s...", m.spinner.View(), m.render.LoadingSource)))
	}
	if m.render.Refreshing {
		parts = append(parts, StatusStyle.Render(fmt.Sprintf("%s Refreshing all feeds...", m.spinner.View())))
	}
	if m.render.Notice != "" {
		parts = append(parts, NoticeStyle.Render(m.render.Notice))
	}

	k := m.keys
	var help string
	switch m.render.Kind {
	case navDomain.ViewKindFeedList:
		help = k.help(k.Up, k.Down, k.Select, k.Refresh, k.RefreshAll, k.Quit)
	case navDomain.ViewKindItemList:
		help = k.help(k.Up, k.Down, k.Select, k.Back, k.Refresh, k.Quit)
	case navDomain.ViewKindArticle:
		help = k.help(k.Up, k.Down, k.PageDown, k.PageUp, k.Save, k.Back)
	}
	parts = append(parts, InfoStyle.Render(help))

	return strings.Join(parts, "  ")
}

// window returns the visible [start, end) range of a list keeping selected in view.
func window(selected, n, page int) (int, int) {
	if n <= page {
		return 0, n
	}
	start := selected - page/2
	start = max(start, 0)
	start = min(start, n-page)
	return start, start + page
}

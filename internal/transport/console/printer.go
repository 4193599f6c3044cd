package console

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	articleDomain "github.com/reshetovitsme/rss-reader/internal/modules/article/domain"
	feedDomain "github.com/reshetovitsme/rss-reader/internal/modules/feed/domain"
)

const separator = "----------------------------------------"

// Printer writes feeds and index records as plain text. Styling is dropped
// automatically when out is not a terminal.
type Printer struct {
	out   io.Writer
	title lipgloss.Style
	dim   lipgloss.Style
}

func NewPrinter(out io.Writer) *Printer {
	r := lipgloss.NewRenderer(out)
	return &Printer{
		out:   out,
		title: r.NewStyle().Bold(true),
		dim:   r.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// Fetching announces the URL about to be fetched.
func (p *Printer) Fetching(what, url string) {
	fmt.Fprintf(p.out, "Fetching %s: %s\n", what, url)
}

// PrintChannel prints the channel header followed by at most limit items.
// limit <= 0 prints every item.
func (p *Printer) PrintChannel(channel *feedDomain.Channel, limit int) {
	fmt.Fprintf(p.out, "\n%s %s\n", p.title.Render("Title:"), channel.Title)
	if channel.Description != "" {
		fmt.Fprintf(p.out, "Description: %s\n", channel.Description)
	}
	fmt.Fprintln(p.out, separator)

	items := channel.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	for i, item := range items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = "No Title"
		}
		fmt.Fprintf(p.out, "%d. %s\n", i+1, p.title.Render(title))
		if item.Link != "" {
			fmt.Fprintf(p.out, "   Link: %s\n", item.Link)
		}
		if item.PublishedAt != nil {
			fmt.Fprintf(p.out, "   Date: %s\n", item.PublishedAt.Format(time.RFC1123Z))
		}
		fmt.Fprintln(p.out)
	}
}

// PrintRecords prints index records one per line, oldest first.
func (p *Printer) PrintRecords(records []articleDomain.ArticleRecord) {
	if len(records) == 0 {
		fmt.Fprintln(p.out, "No stored articles.")
		return
	}
	for _, r := range records {
		fmt.Fprintf(p.out, "%s  %s  %s  %s\n",
			p.dim.Render(r.FetchedAt.Format(time.RFC3339)),
			r.SourceName,
			p.title.Render(r.ArticleName),
			p.dim.Render(r.StoragePath),
		)
	}
}

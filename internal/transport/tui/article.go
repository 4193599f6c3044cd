package tui

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/charmbracelet/glamour"
	feedDomain "github.com/reshetovitsme/rss-reader/internal/modules/feed/domain"
)

const (
	minWrap = 20
	maxWrap = 120
)

// articleRenderer turns a feed item into terminal lines. The glamour renderer is
// rebuilt only when the wrap width changes.
type articleRenderer struct {
	style     string
	width     int
	renderer  *glamour.TermRenderer
	converter *md.Converter
}

func newArticleRenderer(style string) *articleRenderer {
	return &articleRenderer{
		style:     style,
		converter: md.NewConverter("", true, nil),
	}
}

func wrapWidth(termWidth int) int {
	w := termWidth - 4
	if w > maxWrap {
		w = maxWrap
	}
	if w < minWrap {
		w = minWrap
	}
	return w
}

func (r *articleRenderer) term(termWidth int) (*glamour.TermRenderer, error) {
	w := wrapWidth(termWidth)
	if r.renderer != nil && r.width == w {
		return r.renderer, nil
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(r.style),
		glamour.WithWordWrap(w),
	)
	if err != nil {
		return nil, err
	}
	r.renderer = tr
	r.width = w
	return tr, nil
}

// Markdown builds the article document: header block followed by the body.
func (r *articleRenderer) Markdown(item feedDomain.FeedItem) string {
	var b strings.Builder

	title := item.Title
	if title == "" {
		title = "No Title"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if item.SourceName != "" {
		fmt.Fprintf(&b, "*%s*", item.SourceName)
		if item.PublishedAt != nil {
			fmt.Fprintf(&b, " · %s", item.PublishedAt.Local().Format("2006-01-02 15:04"))
		}
		b.WriteString("\n\n")
	}
	if item.Link != "" {
		fmt.Fprintf(&b, "<%s>\n\n", item.Link)
	}

	body := item.Body()
	if strings.TrimSpace(body) == "" {
		b.WriteString("_No content._\n")
		return b.String()
	}
	converted, err := r.converter.ConvertString(body)
	if err != nil {
		converted = body
	}
	b.WriteString(converted)
	b.WriteString("\n")
	return b.String()
}

// Lines renders item for a terminal termWidth columns wide. Rendering failures
// fall back to the raw markdown.
func (r *articleRenderer) Lines(item feedDomain.FeedItem, termWidth int) []string {
	doc := r.Markdown(item)
	out := doc
	if tr, err := r.term(termWidth); err == nil {
		if rendered, err := tr.Render(doc); err == nil {
			out = rendered
		}
	}
	return strings.Split(strings.TrimRight(out, "\n"), "\n")
}

package console

import (
	"bytes"
	"testing"
	"time"

	articleDomain "github.com/reshetovitsme/rss-reader/internal/modules/article/domain"
	feedDomain "github.com/reshetovitsme/rss-reader/internal/modules/feed/domain"
	"github.com/stretchr/testify/assert"
)

func TestPrintChannel(t *testing.T) {
	when := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	channel := &feedDomain.Channel{
		Title:       "Example",
		Description: "An example feed",
		Items: []feedDomain.FeedItem{
			{Title: "First", Link: "https://example.com/1", PublishedAt: &when},
			{Title: "  "},
			{Title: "Third"},
		},
	}

	var buf bytes.Buffer
	NewPrinter(&buf).PrintChannel(channel, 2)
	out := buf.String()

	assert.Contains(t, out, "Title: Example\n")
	assert.Contains(t, out, "Description: An example feed\n")
	assert.Contains(t, out, "1. First\n   Link: https://example.com/1\n   Date: Wed, 01 May 2024 08:30:00 +0000\n")
	assert.Contains(t, out, "2. No Title\n")
	assert.NotContains(t, out, "Third")
}

func TestPrintChannelWithoutLimit(t *testing.T) {
	channel := &feedDomain.Channel{Title: "T", Items: []feedDomain.FeedItem{{Title: "a"}, {Title: "b"}}}

	var buf bytes.Buffer
	NewPrinter(&buf).PrintChannel(channel, 0)

	assert.Contains(t, buf.String(), "2. b")
	assert.NotContains(t, buf.String(), "Description:")
}

func TestPrintRecords(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRecords(nil)
	assert.Equal(t, "No stored articles.\n", buf.String())

	buf.Reset()
	p.PrintRecords([]articleDomain.ArticleRecord{{
		FetchedAt:   time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC),
		ArticleName: "First",
		SourceName:  "Example",
		StoragePath: "articles/abc.md",
	}})
	assert.Equal(t, "2024-05-01T08:30:00Z  Example  First  articles/abc.md\n", buf.String())
}

package service

import (
	"fmt"
	"html"

	"github.com/gorilla/feeds"
	"github.com/reshetovitsme/rss-reader/internal/modules/article/domain"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// DefaultArchiveSize is how many of the most recent records GenerateArchive includes.
const DefaultArchiveSize = 50

// GenerateArchive builds an RSS feed of the most recently stored articles. Item
// links point at the server's rendered article pages.
func (s *Store) GenerateArchive(baseURL string, limit int) (*feeds.Feed, error) {
	records, err := s.Records()
	if err != nil {
		return nil, oops.With("context", "failed to load archive records").Wrap(err)
	}
	if limit <= 0 {
		limit = DefaultArchiveSize
	}

	feed := &feeds.Feed{
		Title:       "rssreader - Stored Articles",
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/rss", baseURL)},
		Description: "Articles saved from subscribed feeds",
		Created:     s.now(),
	}

	start := max(len(records)-limit, 0)
	for i := len(records) - 1; i >= start; i-- {
		feed.Items = append(feed.Items, s.recordToFeedItem(i, records[i], baseURL))
	}
	if len(feed.Items) > 0 {
		feed.Updated = lo.MaxBy(records[start:], func(a, b domain.ArticleRecord) bool {
			return a.FetchedAt.After(b.FetchedAt)
		}).FetchedAt
	}

	return feed, nil
}

func (s *Store) recordToFeedItem(n int, record domain.ArticleRecord, baseURL string) *feeds.Item {
	description := fmt.Sprintf("From %s", record.SourceName)

	item := &feeds.Item{
		Title:       truncate(record.ArticleName, 100),
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/articles/%d", baseURL, n)},
		Description: description,
		Author:      &feeds.Author{Name: record.SourceName},
		Created:     record.FetchedAt,
		Id:          fmt.Sprintf("%d-%s", n, record.StoragePath),
	}

	if markdown, err := s.Read(record); err == nil {
		if rendered, err := RenderHTML(markdown); err == nil {
			item.Content = rendered
		}
	} else {
		item.Content = fmt.Sprintf("<p>%s</p>", html.EscapeString(description))
	}

	return item
}

// RecordAt returns the record at position n of the index.
func (s *Store) RecordAt(n int) (domain.ArticleRecord, bool, error) {
	records, err := s.Records()
	if err != nil {
		return domain.ArticleRecord{}, false, err
	}
	if n < 0 || n >= len(records) {
		return domain.ArticleRecord{}, false, nil
	}
	return records[n], true, nil
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}


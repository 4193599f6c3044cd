package client

import (
	"bytes"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/reshetovitsme/rss-reader/internal/modules/feed/domain"
)

// GofeedParser turns RSS, Atom or JSON Feed bytes into a Channel.
type GofeedParser struct {
	parser *gofeed.Parser
}

func NewGofeedParser() *GofeedParser {
	return &GofeedParser{parser: gofeed.NewParser()}
}

func (p *GofeedParser) Parse(data []byte) (*domain.Channel, error) {
	feed, err := p.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	items := make([]domain.FeedItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it == nil {
			continue
		}
		items = append(items, domain.FeedItem{
			Title:       it.Title,
			Link:        it.Link,
			Summary:     it.Description,
			Content:     it.Content,
			PublishedAt: itemTime(it),
		})
	}

	return &domain.Channel{
		Title:       feed.Title,
		Description: feed.Description,
		Items:       items,
	}, nil
}

func itemTime(it *gofeed.Item) *time.Time {
	if it.PublishedParsed != nil {
		t := it.PublishedParsed.UTC()
		return &t
	}
	if it.UpdatedParsed != nil {
		t := it.UpdatedParsed.UTC()
		return &t
	}
	return nil
}

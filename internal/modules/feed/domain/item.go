package domain

import "time"

// FeedItem is one parsed entry tagged with the name of the source it came from.
type FeedItem struct {
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Summary     string     `json:"summary,omitempty"`
	Content     string     `json:"content,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	SourceName  string     `json:"source_name"`
}

// Body returns the richest HTML available for the item.
func (i FeedItem) Body() string {
	if i.Content != "" {
		return i.Content
	}
	return i.Summary
}

// Channel is a parsed feed document. Items keep the order the parser produced.
type Channel struct {
	Title       string
	Description string
	Items       []FeedItem
}

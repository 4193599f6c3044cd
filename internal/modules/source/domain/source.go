package domain

import "fmt"

// FeedSource is a configured subscription resolved to a single fetchable URL.
// Values are created once at startup and never mutated.
type FeedSource struct {
	Name string   `json:"name"`
	Kind FeedKind `json:"kind"`
	// URLOrRoute is the configured value: a feed URL for rss, a route for rsshub.
	URLOrRoute string `json:"url"`
	// ResolvedHost is the RSSHub host the route was joined to; empty for rss.
	ResolvedHost string `json:"host,omitempty"`
	FetchURL     string `json:"fetch_url"`
}

// ConfigError reports a configured entry that cannot be turned into a FeedSource.
type ConfigError struct {
	Feed   string
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Feed == "" {
		return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("config: feed %q: %s: %s", e.Feed, e.Field, e.Reason)
}

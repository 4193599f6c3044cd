package service

import (
	"net/url"
	"strings"

	"github.com/reshetovitsme/rss-reader/internal/modules/source/domain"
	"github.com/reshetovitsme/rss-reader/internal/shared/config"
)

// Registry holds the feed sources resolved from configuration, in declaration order:
// plain RSS entries first, then RSSHub entries.
type Registry struct {
	sources []domain.FeedSource
}

// New resolves cfg into a Registry. It fails with *domain.ConfigError on the first
// entry that cannot be resolved.
func New(cfg *config.Config) (*Registry, error) {
	sources, err := Resolve(cfg)
	if err != nil {
		return nil, err
	}
	return &Registry{sources: sources}, nil
}

// NewFromSources builds a Registry around already resolved sources.
func NewFromSources(sources ...domain.FeedSource) *Registry {
	return &Registry{sources: append([]domain.FeedSource(nil), sources...)}
}

// Sources returns a copy of the resolved sources.
func (r *Registry) Sources() []domain.FeedSource {
	return append([]domain.FeedSource(nil), r.sources...)
}

// Get returns the source at index.
func (r *Registry) Get(index int) (domain.FeedSource, bool) {
	if index < 0 || index >= len(r.sources) {
		return domain.FeedSource{}, false
	}
	return r.sources[index], true
}

func (r *Registry) Len() int {
	return len(r.sources)
}

// Resolve is a pure transform from configuration to feed sources.
func Resolve(cfg *config.Config) ([]domain.FeedSource, error) {
	sources := make([]domain.FeedSource, 0, len(cfg.RSS)+len(cfg.RSSHubFeeds))

	for _, entry := range cfg.RSS {
		src, err := ResolveRSS(entry.Name, entry.URL)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}

	for _, entry := range cfg.RSSHubFeeds {
		host := entry.Host
		if host == "" {
			host = cfg.RSSHub.Host
		}
		src, err := ResolveRSSHub(entry.Name, entry.URL, host)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}

	return sources, nil
}

// ResolveRSS validates a direct feed URL.
func ResolveRSS(name, feedURL string) (domain.FeedSource, error) {
	if strings.TrimSpace(name) == "" {
		return domain.FeedSource{}, &domain.ConfigError{Feed: feedURL, Field: "name", Reason: "is required"}
	}
	if err := checkHTTPURL(feedURL); err != "" {
		return domain.FeedSource{}, &domain.ConfigError{Feed: name, Field: "url", Reason: err}
	}

	return domain.FeedSource{
		Name:       name,
		Kind:       domain.FeedKindRss,
		URLOrRoute: feedURL,
		FetchURL:   feedURL,
	}, nil
}

// ResolveRSSHub joins route onto host. The route must begin with "/".
func ResolveRSSHub(name, route, host string) (domain.FeedSource, error) {
	if strings.TrimSpace(name) == "" {
		return domain.FeedSource{}, &domain.ConfigError{Feed: route, Field: "name", Reason: "is required"}
	}
	if host == "" {
		return domain.FeedSource{}, &domain.ConfigError{Feed: name, Field: "rsshub.host", Reason: "no global or per-feed RSSHub host configured"}
	}
	if err := checkHTTPURL(host); err != "" {
		return domain.FeedSource{}, &domain.ConfigError{Feed: name, Field: "host", Reason: err}
	}
	if !strings.HasPrefix(route, "/") {
		return domain.FeedSource{}, &domain.ConfigError{Feed: name, Field: "url", Reason: "RSSHub route must begin with /"}
	}

	return domain.FeedSource{
		Name:         name,
		Kind:         domain.FeedKindRsshub,
		URLOrRoute:   route,
		ResolvedHost: host,
		FetchURL:     JoinRoute(host, route),
	}, nil
}

// JoinRoute concatenates host and route with exactly one slash between them.
func JoinRoute(host, route string) string {
	return strings.TrimRight(host, "/") + "/" + strings.TrimLeft(route, "/")
}

func checkHTTPURL(raw string) string {
	if raw == "" {
		return "is required"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "is not a valid URL"
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "must use http or https"
	}
	if u.Host == "" {
		return "has no host"
	}
	return ""
}

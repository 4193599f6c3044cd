package service_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/reshetovitsme/rss-reader/internal/modules/feed/client"
	"github.com/reshetovitsme/rss-reader/internal/modules/feed/domain"
	"github.com/reshetovitsme/rss-reader/internal/modules/feed/service"
	sourceDomain "github.com/reshetovitsme/rss-reader/internal/modules/source/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example</title>
    <description>Example feed</description>
    <item>
      <title>Second post</title>
      <link>https://example.com/2</link>
      <description>&lt;p&gt;Hello &lt;b&gt;again&lt;/b&gt;&lt;/p&gt;</description>
      <pubDate>Tue, 02 Jan 2024 10:00:00 +0000</pubDate>
    </item>
    <item>
      <title>First post</title>
      <link>https://example.com/1</link>
    </item>
  </channel>
</rss>`

const emptyRSS = `<?xml version="1.0"?><rss version="2.0"><channel><title>Nothing</title></channel></rss>`

type fakeFetcher struct {
	mu      sync.Mutex
	bodies  map[string]string
	errs    map[string]error
	delays  map[string]time.Duration
	fetched []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, feedURL string) ([]byte, error) {
	if d := f.delays[feedURL]; d > 0 {
		time.Sleep(d)
	}
	f.mu.Lock()
	f.fetched = append(f.fetched, feedURL)
	f.mu.Unlock()

	if err := f.errs[feedURL]; err != nil {
		return nil, err
	}
	return []byte(f.bodies[feedURL]), nil
}

func source(name, url string) sourceDomain.FeedSource {
	return sourceDomain.FeedSource{Name: name, Kind: sourceDomain.FeedKindRss, URLOrRoute: url, FetchURL: url}
}

func TestFetchItemsOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	agg := service.New(client.NewHTTPFetcher(5*time.Second), client.NewGofeedParser())

	items, err := agg.FetchItems(context.Background(), source("Example", srv.URL))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Second post", items[0].Title)
	assert.Equal(t, "https://example.com/2", items[0].Link)
	assert.Equal(t, "Example", items[0].SourceName)
	require.NotNil(t, items[0].PublishedAt)
	assert.Equal(t, 2024, items[0].PublishedAt.Year())

	assert.Equal(t, "First post", items[1].Title)
	assert.Nil(t, items[1].PublishedAt)
}

func TestFetchItemsStatusIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	agg := service.New(client.NewHTTPFetcher(5*time.Second), client.NewGofeedParser())

	_, err := agg.FetchItems(context.Background(), source("Broken", srv.URL))
	var fetchErr *domain.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, domain.FetchErrorKindNetwork, fetchErr.Kind)

	var statusErr *client.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
}

func TestFetchItemsMalformedIsParseError(t *testing.T) {
	fetcher := &fakeFetcher{bodies: map[string]string{"https://bad.example.com": "<html>not a feed"}}
	agg := service.New(fetcher, client.NewGofeedParser())

	_, err := agg.FetchItems(context.Background(), source("Bad", "https://bad.example.com"))
	var fetchErr *domain.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, domain.FetchErrorKindParse, fetchErr.Kind)
	assert.Equal(t, "Bad", fetchErr.Source)
}

func TestFetchItemsEmptyFeedIsNotAnError(t *testing.T) {
	fetcher := &fakeFetcher{bodies: map[string]string{"https://empty.example.com": emptyRSS}}
	agg := service.New(fetcher, client.NewGofeedParser())

	items, err := agg.FetchItems(context.Background(), source("Empty", "https://empty.example.com"))
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestFetchAllKeepsSourceOrderAndIsolatesFailures(t *testing.T) {
	fetcher := &fakeFetcher{
		bodies: map[string]string{
			"https://one.example.com":   sampleRSS,
			"https://three.example.com": sampleRSS,
		},
		errs: map[string]error{
			"https://two.example.com": errors.New("connection refused"),
		},
		delays: map[string]time.Duration{
			"https://one.example.com": 30 * time.Millisecond,
		},
	}
	agg := service.New(fetcher, client.NewGofeedParser())

	sources := []sourceDomain.FeedSource{
		source("one", "https://one.example.com"),
		source("two", "https://two.example.com"),
		source("three", "https://three.example.com"),
	}

	results := agg.FetchAll(context.Background(), sources)
	require.Len(t, results, 3)

	for i, res := range results {
		assert.Equal(t, sources[i].Name, res.Source.Name)
	}

	assert.Nil(t, results[0].Err)
	assert.Len(t, results[0].Items, 2)

	require.NotNil(t, results[1].Err)
	assert.Equal(t, domain.FetchErrorKindNetwork, results[1].Err.Kind)
	assert.Nil(t, results[1].Items)

	assert.Nil(t, results[2].Err)
	assert.Len(t, results[2].Items, 2)
	assert.Equal(t, "three", results[2].Items[0].SourceName)
}

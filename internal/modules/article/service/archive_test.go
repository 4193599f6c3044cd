package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	feedDomain "github.com/reshetovitsme/rss-reader/internal/modules/feed/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateArchive(t *testing.T) {
	store, _ := newStore(t, nil)

	for n := 0; n < 3; n++ {
		_, _, err := store.Save(context.Background(), "Blog", "https://example.com/rss", feedDomain.FeedItem{
			Title:       fmt.Sprintf("Post %d", n),
			Link:        fmt.Sprintf("https://example.com/%d", n),
			Content:     fmt.Sprintf("<p>body %d</p>", n),
			PublishedAt: published(time.Date(2024, 1, n+1, 0, 0, 0, 0, time.UTC)),
		})
		require.NoError(t, err)
	}

	feed, err := store.GenerateArchive("http://127.0.0.1:7878", 2)
	require.NoError(t, err)

	require.Len(t, feed.Items, 2)
	assert.Equal(t, "Post 2", feed.Items[0].Title)
	assert.Equal(t, "http://127.0.0.1:7878/articles/2", feed.Items[0].Link.Href)
	assert.Contains(t, feed.Items[0].Content, "body 2")
	assert.Equal(t, "Post 1", feed.Items[1].Title)
	assert.Equal(t, 2024, feed.Updated.Year())
	assert.Equal(t, 3, feed.Updated.Day())

	rss, err := feed.ToRss()
	require.NoError(t, err)
	assert.Contains(t, rss, "<title>Post 2</title>")
}

func TestGenerateArchiveEmpty(t *testing.T) {
	store, _ := newStore(t, nil)

	feed, err := store.GenerateArchive("http://localhost", 0)
	require.NoError(t, err)
	assert.Empty(t, feed.Items)
}

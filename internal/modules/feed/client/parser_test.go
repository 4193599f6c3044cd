package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const atomFeed = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Example</title>
  <subtitle>Updates</subtitle>
  <entry>
    <title>Only updated</title>
    <link href="https://example.com/a"/>
    <updated>2024-02-03T04:05:06Z</updated>
    <summary>Short</summary>
    <content type="html">&lt;p&gt;Long&lt;/p&gt;</content>
  </entry>
</feed>`

func TestParseAtomFallsBackToUpdated(t *testing.T) {
	channel, err := NewGofeedParser().Parse([]byte(atomFeed))
	require.NoError(t, err)

	assert.Equal(t, "Atom Example", channel.Title)
	assert.Equal(t, "Updates", channel.Description)
	require.Len(t, channel.Items, 1)

	item := channel.Items[0]
	assert.Equal(t, "https://example.com/a", item.Link)
	assert.Equal(t, "Short", item.Summary)
	assert.Equal(t, "<p>Long</p>", item.Content)
	require.NotNil(t, item.PublishedAt)
	assert.True(t, item.PublishedAt.Equal(time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)))
	assert.Equal(t, "<p>Long</p>", item.Body())
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := NewGofeedParser().Parse([]byte("definitely not a feed"))
	assert.Error(t, err)
}

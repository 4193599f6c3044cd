package domain

import "time"

// ArticleRecord is one line of the article index. Names are not unique: storing
// the same article twice produces two records.
type ArticleRecord struct {
	// FetchedAt is the article's published time when the feed gave one, otherwise
	// the time it was stored.
	FetchedAt   time.Time `json:"time"`
	ArticleName string    `json:"article_name"`
	SourceName  string    `json:"rss_subscription_name"`
	// StoragePath is relative to the storage root and is the only pointer to the
	// article body.
	StoragePath string `json:"path"`
}

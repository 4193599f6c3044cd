package domain

import sourceDomain "github.com/reshetovitsme/rss-reader/internal/modules/source/domain"

// SourceResult pairs a source with its fetch outcome. Exactly one of Items or Err is set.
type SourceResult struct {
	Source sourceDomain.FeedSource `json:"source"`
	Items  []FeedItem              `json:"items,omitempty"`
	Err    *FetchError             `json:"-"`
}

// Failed reports whether the fetch produced an error.
func (r SourceResult) Failed() bool {
	return r.Err != nil
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	feedFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rssreader_feed_fetch_total",
		Help: "Feed fetches by source kind and outcome",
	}, []string{"kind", "outcome"})

	feedFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rssreader_feed_fetch_duration_seconds",
		Help:    "Time spent fetching and parsing a feed",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms up to ~25s
	}, []string{"kind"})

	articleAppends = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rssreader_article_append_total",
		Help: "Article index appends by outcome",
	}, []string{"outcome"})
)

// Outcome labels
const (
	OutcomeOK      = "ok"
	OutcomeNetwork = "network"
	OutcomeParse   = "parse"
	OutcomeError   = "error"
)

// ObserveFetch records one feed fetch.
func ObserveFetch(kind, outcome string, took time.Duration) {
	feedFetches.WithLabelValues(kind, outcome).Inc()
	feedFetchDuration.WithLabelValues(kind).Observe(took.Seconds())
}

// ObserveAppend records one article index append.
func ObserveAppend(err error) {
	if err != nil {
		articleAppends.WithLabelValues(OutcomeError).Inc()
		return
	}
	articleAppends.WithLabelValues(OutcomeOK).Inc()
}

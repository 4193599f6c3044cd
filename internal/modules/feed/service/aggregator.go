package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/reshetovitsme/rss-reader/internal/modules/feed/domain"
	sourceDomain "github.com/reshetovitsme/rss-reader/internal/modules/source/domain"
	"github.com/reshetovitsme/rss-reader/internal/shared/metrics"
	lop "github.com/samber/lo/parallel"
)

// Fetcher retrieves raw feed bytes for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, feedURL string) ([]byte, error)
}

// Parser turns feed bytes into a Channel.
type Parser interface {
	Parse(data []byte) (*domain.Channel, error)
}

// Aggregator fetches and parses feed sources. It never retries; that is up to callers.
type Aggregator struct {
	fetcher Fetcher
	parser  Parser
	logger  *slog.Logger
}

// New creates a new feed aggregator
func New(fetcher Fetcher, parser Parser) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		parser:  parser,
		logger:  slog.Default(),
	}
}

// SetLogger sets the logger
func (a *Aggregator) SetLogger(logger *slog.Logger) {
	a.logger = logger
}

// FetchChannel fetches src and returns the parsed channel with every item tagged
// with the source name. Failures are *domain.FetchError.
func (a *Aggregator) FetchChannel(ctx context.Context, src sourceDomain.FeedSource) (*domain.Channel, error) {
	start := time.Now()

	data, err := a.fetcher.Fetch(ctx, src.FetchURL)
	if err != nil {
		a.logger.Warn("Feed fetch failed", "source", src.Name, "url", src.FetchURL, "error", err)
		metrics.ObserveFetch(src.Kind.String(), metrics.OutcomeNetwork, time.Since(start))
		return nil, domain.NewNetworkError(src.Name, err)
	}

	channel, err := a.parser.Parse(data)
	if err != nil {
		a.logger.Warn("Feed parse failed", "source", src.Name, "url", src.FetchURL, "error", err)
		metrics.ObserveFetch(src.Kind.String(), metrics.OutcomeParse, time.Since(start))
		return nil, domain.NewParseError(src.Name, err)
	}
	metrics.ObserveFetch(src.Kind.String(), metrics.OutcomeOK, time.Since(start))

	if channel.Items == nil {
		channel.Items = []domain.FeedItem{}
	}
	for i := range channel.Items {
		channel.Items[i].SourceName = src.Name
	}

	a.logger.Debug("Feed fetched", "source", src.Name, "items", len(channel.Items))
	return channel, nil
}

// FetchItems returns the items of src in parser order. A feed with no items yields
// an empty slice and a nil error.
func (a *Aggregator) FetchItems(ctx context.Context, src sourceDomain.FeedSource) ([]domain.FeedItem, error) {
	channel, err := a.FetchChannel(ctx, src)
	if err != nil {
		return nil, err
	}
	return channel.Items, nil
}

// FetchAll fetches every source concurrently. Results come back in source order,
// one per source, regardless of completion order or individual failures.
func (a *Aggregator) FetchAll(ctx context.Context, sources []sourceDomain.FeedSource) []domain.SourceResult {
	return lop.Map(sources, func(src sourceDomain.FeedSource, _ int) domain.SourceResult {
		items, err := a.FetchItems(ctx, src)
		if err != nil {
			return domain.SourceResult{Source: src, Err: domain.AsFetchError(src.Name, err)}
		}
		return domain.SourceResult{Source: src, Items: items}
	})
}

package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	articleDomain "github.com/reshetovitsme/rss-reader/internal/modules/article/domain"
	feedDomain "github.com/reshetovitsme/rss-reader/internal/modules/feed/domain"
	navDomain "github.com/reshetovitsme/rss-reader/internal/modules/navigation/domain"
	sourceDomain "github.com/reshetovitsme/rss-reader/internal/modules/source/domain"
)

// Aggregator is the subset of the feed aggregator the presenter needs.
type Aggregator interface {
	FetchItems(ctx context.Context, src sourceDomain.FeedSource) ([]feedDomain.FeedItem, error)
	FetchAll(ctx context.Context, sources []sourceDomain.FeedSource) []feedDomain.SourceResult
}

// ArticleSaver persists an opened article.
type ArticleSaver interface {
	Save(ctx context.Context, sourceName, sourceURL string, item feedDomain.FeedItem) (articleDomain.ArticleRecord, string, error)
}

// runTicket executes a controller fetch ticket in the background
func runTicket(ctx context.Context, agg Aggregator, t navDomain.FetchTicket) tea.Cmd {
	return func() tea.Msg {
		if t.Kind == navDomain.TicketKindBatch {
			return batchDoneMsg{Ticket: t, Results: agg.FetchAll(ctx, t.Sources)}
		}
		items, err := agg.FetchItems(ctx, t.Source)
		return fetchDoneMsg{Ticket: t, Items: items, Err: feedDomain.AsFetchError(t.Source.Name, err)}
	}
}

// saveArticle stores the open article
func saveArticle(ctx context.Context, saver ArticleSaver, src sourceDomain.FeedSource, item feedDomain.FeedItem) tea.Cmd {
	return func() tea.Msg {
		record, _, err := saver.Save(ctx, src.Name, src.FetchURL, item)
		return savedMsg{Record: record, Err: err}
	}
}

package di

import (
	"context"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	articleRepo "github.com/reshetovitsme/rss-reader/internal/modules/article/repository"
	articleService "github.com/reshetovitsme/rss-reader/internal/modules/article/service"
	feedClient "github.com/reshetovitsme/rss-reader/internal/modules/feed/client"
	feedService "github.com/reshetovitsme/rss-reader/internal/modules/feed/service"
	sourceService "github.com/reshetovitsme/rss-reader/internal/modules/source/service"
	"github.com/reshetovitsme/rss-reader/internal/shared/config"
	httpServer "github.com/reshetovitsme/rss-reader/internal/transport/http"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
)

const shutdownTimeout = 5 * time.Second

// invoked records services that need stopping, so Shutdown never builds one.
type invoked struct {
	server *httpServer.Server
}

// Setup initializes the dependency injection container around an already
// loaded configuration. Services are built lazily on first invoke, so commands
// that never touch the registry do not need any configured feeds.
func Setup(cfg *config.Config) (do.Injector, error) {
	if cfg == nil {
		return nil, oops.Errorf("config is required")
	}
	injector := do.New()

	// Register Config
	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, &invoked{})

	// Register Feed Source Registry
	do.Provide(injector, func(i do.Injector) (*sourceService.Registry, error) {
		cfg := do.MustInvoke[*config.Config](i)
		registry, err := sourceService.New(cfg)
		if err != nil {
			return nil, err
		}
		slog.Debug("Feed sources resolved", "count", registry.Len())
		return registry, nil
	})

	// Register Fetcher
	do.Provide(injector, func(i do.Injector) (feedService.Fetcher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return feedClient.NewHTTPFetcher(cfg.Fetch.Timeout), nil
	})

	// Register Aggregator
	do.Provide(injector, func(i do.Injector) (*feedService.Aggregator, error) {
		fetcher := do.MustInvoke[feedService.Fetcher](i)
		aggregator := feedService.New(fetcher, feedClient.NewGofeedParser())
		aggregator.SetLogger(slog.Default())
		return aggregator, nil
	})

	// Register Article Index
	do.Provide(injector, func(i do.Injector) (articleRepo.Index, error) {
		cfg := do.MustInvoke[*config.Config](i)
		dir := filepath.Join(cfg.Storage.Path, articleService.ArticlesDir)
		index, err := articleRepo.NewCSVIndex(dir)
		if err != nil {
			return nil, oops.With("storage_path", cfg.Storage.Path, "context", "failed to initialize article index").Wrap(err)
		}
		index.SetLogger(slog.Default())
		return index, nil
	})

	// Register Image Localizer
	do.Provide(injector, func(i do.Injector) (*articleService.ImageLocalizer, error) {
		cfg := do.MustInvoke[*config.Config](i)
		dir := filepath.Join(cfg.Storage.Path, articleService.ArticlesDir, articleService.ImagesDir)
		localizer, err := articleService.NewImageLocalizer(dir, &http.Client{Timeout: cfg.Fetch.Timeout})
		if err != nil {
			return nil, oops.With("storage_path", cfg.Storage.Path, "context", "failed to initialize image localizer").Wrap(err)
		}
		localizer.SetLogger(slog.Default())
		return localizer, nil
	})

	// Register Article Store
	do.Provide(injector, func(i do.Injector) (*articleService.Store, error) {
		cfg := do.MustInvoke[*config.Config](i)
		index := do.MustInvoke[articleRepo.Index](i)
		localizer := do.MustInvoke[*articleService.ImageLocalizer](i)
		store, err := articleService.New(cfg.Storage.Path, index, localizer)
		if err != nil {
			return nil, oops.With("storage_path", cfg.Storage.Path, "context", "failed to initialize article store").Wrap(err)
		}
		store.SetLogger(slog.Default())
		return store, nil
	})

	// Register HTTP Server
	do.Provide(injector, func(i do.Injector) (*httpServer.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		registry, err := do.Invoke[*sourceService.Registry](i)
		if err != nil {
			return nil, err
		}
		aggregator := do.MustInvoke[*feedService.Aggregator](i)
		store := do.MustInvoke[*articleService.Store](i)
		server := httpServer.New(cfg, registry, aggregator, store)
		server.SetLogger(slog.Default())
		do.MustInvoke[*invoked](i).server = server
		return server, nil
	})

	return injector, nil
}

// Shutdown gracefully shuts down all services
func Shutdown(injector do.Injector) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Shutdown HTTP server if it was built
	if state, err := do.Invoke[*invoked](injector); err == nil && state.server != nil {
		if err := state.server.Shutdown(ctx); err != nil {
			return oops.With("context", "failed to shut down http server").Wrap(err)
		}
	}

	return nil
}

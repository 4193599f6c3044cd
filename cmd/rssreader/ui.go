package main

import (
	feedService "github.com/reshetovitsme/rss-reader/internal/modules/feed/service"
	navService "github.com/reshetovitsme/rss-reader/internal/modules/navigation/service"
	sourceService "github.com/reshetovitsme/rss-reader/internal/modules/source/service"
	"github.com/reshetovitsme/rss-reader/internal/shared/logging"
	"github.com/reshetovitsme/rss-reader/internal/transport/tui"
	"github.com/samber/do/v2"
	"github.com/urfave/cli/v2"
)

func uiCmd() *cli.Command {
	return &cli.Command{
		Name:  "ui",
		Usage: "Browse the configured feeds in the terminal UI",
		Action: func(c *cli.Context) error {
			s, err := setup(c, true, logging.ModeTUI)
			if err != nil {
				return err
			}
			defer s.Close()

			registry, err := do.Invoke[*sourceService.Registry](s.injector)
			if err != nil {
				return exitOnConfigError(err)
			}
			aggregator := do.MustInvoke[*feedService.Aggregator](s.injector)
			store := s.store()

			controller := navService.New(registry.Sources())
			controller.SetLogger(s.logger)

			s.logger.Info("Terminal UI starting", "feeds", registry.Len(), "saving", store != nil)
			if err := tui.Run(c.Context, controller, aggregator, s.tuiOptions(store)...); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return nil
		},
	}
}

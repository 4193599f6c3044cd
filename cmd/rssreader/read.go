package main

import (
	"context"
	"os"
	"strings"

	articleService "github.com/reshetovitsme/rss-reader/internal/modules/article/service"
	feedDomain "github.com/reshetovitsme/rss-reader/internal/modules/feed/domain"
	feedService "github.com/reshetovitsme/rss-reader/internal/modules/feed/service"
	navService "github.com/reshetovitsme/rss-reader/internal/modules/navigation/service"
	sourceDomain "github.com/reshetovitsme/rss-reader/internal/modules/source/domain"
	sourceService "github.com/reshetovitsme/rss-reader/internal/modules/source/service"
	"github.com/reshetovitsme/rss-reader/internal/shared/config"
	"github.com/reshetovitsme/rss-reader/internal/shared/logging"
	"github.com/reshetovitsme/rss-reader/internal/transport/console"
	"github.com/reshetovitsme/rss-reader/internal/transport/tui"
	"github.com/samber/do/v2"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
)

func oneShotFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"n"},
			Value:   5,
			Usage:   "Number of items to print",
		},
		&cli.BoolFlag{
			Name:  "tui",
			Usage: "Browse the feed in the terminal UI instead of printing it",
		},
	}
}

func readCmd() *cli.Command {
	return &cli.Command{
		Name:      "read",
		Usage:     "Fetch a feed URL, store its items and print them",
		ArgsUsage: "<url>",
		Flags:     oneShotFlags(),
		Action: func(c *cli.Context) error {
			feedURL, err := requireArg(c, "<url>")
			if err != nil {
				return err
			}
			src, err := sourceService.ResolveRSS(feedURL, feedURL)
			if err != nil {
				return exitOnConfigError(err)
			}
			console.NewPrinter(os.Stdout).Fetching("RSS from", src.FetchURL)
			return runOneShot(c, src)
		},
	}
}

func rsshubCmd() *cli.Command {
	flags := append(oneShotFlags(), &cli.StringFlag{
		Name:    "host",
		Value:   config.DefaultRSSHubHost,
		Usage:   "RSSHub instance to resolve the route against",
		EnvVars: []string{"RSSREADER_RSSHUB_HOST"},
	})
	return &cli.Command{
		Name:      "rsshub",
		Usage:     "Fetch an RSSHub route, store its items and print them",
		ArgsUsage: "<route>",
		Flags:     flags,
		Action: func(c *cli.Context) error {
			route, err := requireArg(c, "<route>")
			if err != nil {
				return err
			}
			if !strings.HasPrefix(route, "/") {
				route = "/" + route
			}
			src, err := sourceService.ResolveRSSHub(route, route, c.String("host"))
			if err != nil {
				return exitOnConfigError(err)
			}
			console.NewPrinter(os.Stdout).Fetching("RSSHub route "+route+" (full URL)", src.FetchURL)
			return runOneShot(c, src)
		},
	}
}

// runOneShot fetches src, stores every item, then prints the channel or opens
// it in the terminal UI. The source is renamed after the channel title.
func runOneShot(c *cli.Context, src sourceDomain.FeedSource) error {
	mode := lo.Ternary(c.Bool("tui"), logging.ModeTUI, logging.ModeConsole)
	s, err := setup(c, false, mode)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := c.Context
	aggregator := do.MustInvoke[*feedService.Aggregator](s.injector)
	store := s.store()

	channel, err := aggregator.FetchChannel(ctx, src)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if title := strings.TrimSpace(channel.Title); title != "" {
		src.Name = title
	}
	channel.Items = lo.Map(channel.Items, func(item feedDomain.FeedItem, _ int) feedDomain.FeedItem {
		item.SourceName = src.Name
		return item
	})

	if store != nil {
		storeChannel(ctx, s, store, src, channel)
	}

	if !c.Bool("tui") {
		console.NewPrinter(os.Stdout).PrintChannel(channel, c.Int("limit"))
		return nil
	}

	controller := navService.New([]sourceDomain.FeedSource{src})
	controller.SetLogger(s.logger)
	controller.Preload([]feedDomain.SourceResult{{Source: src, Items: channel.Items}})

	err = tui.Run(ctx, controller, aggregator, s.tuiOptions(store, tui.WithAutoOpen(0))...)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}

func storeChannel(ctx context.Context, s *session, store *articleService.Store, src sourceDomain.FeedSource, channel *feedDomain.Channel) {
	records, err := store.SaveAll(ctx, src.Name, src.FetchURL, channel.Items)
	if err != nil {
		s.logger.Error("Some articles could not be stored", "source", src.Name, "stored", len(records), "error", err)
		return
	}
	s.logger.Info("Articles stored", "source", src.Name, "stored", len(records))
}

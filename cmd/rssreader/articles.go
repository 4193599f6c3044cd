package main

import (
	"os"

	articleDomain "github.com/reshetovitsme/rss-reader/internal/modules/article/domain"
	articleService "github.com/reshetovitsme/rss-reader/internal/modules/article/service"
	"github.com/reshetovitsme/rss-reader/internal/shared/logging"
	"github.com/reshetovitsme/rss-reader/internal/transport/console"
	"github.com/samber/do/v2"
	"github.com/urfave/cli/v2"
)

func articlesCmd() *cli.Command {
	return &cli.Command{
		Name:  "articles",
		Usage: "List stored articles from the index",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "name",
				Usage: "Only list articles with this exact title",
			},
		},
		Action: func(c *cli.Context) error {
			s, err := setup(c, false, logging.ModeConsole)
			if err != nil {
				return err
			}
			defer s.Close()

			store, err := do.Invoke[*articleService.Store](s.injector)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			var records []articleDomain.ArticleRecord
			if name := c.String("name"); name != "" {
				records, err = store.Find(name)
			} else {
				records, err = store.Records()
			}
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			console.NewPrinter(os.Stdout).PrintRecords(records)
			return nil
		},
	}
}

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/reshetovitsme/rss-reader/internal/di"
	articleService "github.com/reshetovitsme/rss-reader/internal/modules/article/service"
	sourceDomain "github.com/reshetovitsme/rss-reader/internal/modules/source/domain"
	"github.com/reshetovitsme/rss-reader/internal/shared/config"
	"github.com/reshetovitsme/rss-reader/internal/shared/logging"
	"github.com/reshetovitsme/rss-reader/internal/transport/tui"
	"github.com/samber/do/v2"
	"github.com/urfave/cli/v2"
)

const logFileName = "rssreader.log"

// App builds the command line application.
func App() *cli.App {
	return &cli.App{
		Name:  "rssreader",
		Usage: "Read RSS and RSSHub feeds in the terminal or the browser",
		Description: `Fetches RSS, Atom and RSSHub feeds, stores every item as Markdown
		and keeps an append-only index of stored articles.

		Flags can generally be set via environment variables, e.g.:

		--config => RSSREADER_CONFIG=feeds.toml
		--storage => RSSREADER_STORAGE=data`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   config.DefaultConfigPath,
				Usage:   "Feeds configuration file (.toml, .yaml or .json)",
				EnvVars: []string{"RSSREADER_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "storage",
				Usage:   "Directory for stored articles, the index and logs",
				EnvVars: []string{"RSSREADER_STORAGE"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"RSSREADER_LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			readCmd(),
			rsshubCmd(),
			uiCmd(),
			serverCmd(),
			articlesCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}

// session is what every command needs once flags are parsed.
type session struct {
	cfg      *config.Config
	logger   *slog.Logger
	injector do.Injector
	closer   io.Closer
	// notices are shown once the terminal UI starts
	notices []string
}

// store returns the article store, or nil when storage is unusable. Reading
// goes on without persistence in that case.
func (s *session) store() *articleService.Store {
	store, err := do.Invoke[*articleService.Store](s.injector)
	if err != nil {
		s.logger.Error("Article storage unavailable, saving disabled", "path", s.cfg.Storage.Path, "error", err)
		s.notices = append(s.notices, "Storage unavailable, saving disabled")
		return nil
	}
	return store
}

// tuiOptions adds the saver, when there is one, and any startup notices.
func (s *session) tuiOptions(store *articleService.Store, opts ...tui.Option) []tui.Option {
	opts = append(opts, tui.WithLogger(s.logger))
	if store != nil {
		opts = append(opts, tui.WithSaver(store))
	}
	if len(s.notices) > 0 {
		opts = append(opts, tui.WithNotice(strings.Join(s.notices, "; ")))
	}
	return opts
}

func (s *session) Close() {
	if err := di.Shutdown(s.injector); err != nil {
		s.logger.Error("Error during shutdown", "error", err)
	}
	s.closer.Close()
}

// setup loads configuration (or the built-in defaults when loadFile is false),
// applies the global flag overrides, starts logging and builds the container.
func setup(c *cli.Context, loadFile bool, mode logging.Mode) (*session, error) {
	cfg := config.Default()
	if loadFile {
		loaded, err := config.Load(c.String("config"))
		if err != nil {
			return nil, cli.Exit(err.Error(), 1)
		}
		cfg = loaded
	}
	if c.IsSet("storage") {
		cfg.Storage.Path = c.String("storage")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}

	var notices []string
	logger, closer, err := logging.Setup(mode, cfg.Log.Level, filepath.Join(cfg.Storage.Path, logFileName))
	if err != nil {
		if logger == nil {
			return nil, cli.Exit(err.Error(), 1)
		}
		notices = append(notices, "Logging disabled")
	}

	injector, err := di.Setup(cfg)
	if err != nil {
		closer.Close()
		return nil, cli.Exit(err.Error(), 1)
	}

	return &session{cfg: cfg, logger: logger, injector: injector, closer: closer, notices: notices}, nil
}

// exitOnConfigError turns a ConfigError into a status 1 exit.
func exitOnConfigError(err error) error {
	var cfgErr *sourceDomain.ConfigError
	if errors.As(err, &cfgErr) {
		return cli.Exit(cfgErr.Error(), 1)
	}
	return err
}

// requireArg returns the first positional argument or a usage error naming it.
func requireArg(c *cli.Context, name string) (string, error) {
	if c.Args().Len() == 0 {
		return "", cli.Exit(fmt.Sprintf("%s: missing %s argument\nUsage: %s %s %s", c.Command.Name, name, c.App.Name, c.Command.Name, c.Command.ArgsUsage), 1)
	}
	return c.Args().First(), nil
}

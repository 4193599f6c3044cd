package main

import (
	"os/exec"
	"runtime"

	"github.com/reshetovitsme/rss-reader/internal/shared/logging"
	httpServer "github.com/reshetovitsme/rss-reader/internal/transport/http"
	"github.com/samber/do/v2"
	"github.com/urfave/cli/v2"
)

func serverCmd() *cli.Command {
	return &cli.Command{
		Name:  "server",
		Usage: "Serve the configured feeds and stored articles over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Usage:   "Address to bind",
				EnvVars: []string{"RSSREADER_SERVER_HOST"},
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to bind",
				EnvVars: []string{"RSSREADER_SERVER_PORT"},
			},
			&cli.BoolFlag{
				Name:  "open",
				Value: true,
				Usage: "Open the page in a browser once started (--open=false to disable)",
			},
		},
		Action: func(c *cli.Context) error {
			s, err := setup(c, true, logging.ModeConsole)
			if err != nil {
				return err
			}
			defer s.Close()

			if c.IsSet("host") {
				s.cfg.Server.Host = c.String("host")
			}
			if c.IsSet("port") {
				s.cfg.Server.Port = c.Int("port")
			}
			if c.IsSet("open") {
				s.cfg.Server.Open = c.Bool("open")
			}

			server, err := do.Invoke[*httpServer.Server](s.injector)
			if err != nil {
				return exitOnConfigError(err)
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			if s.cfg.Server.Open {
				if err := openBrowser(server.URL()); err != nil {
					s.logger.Warn("Failed to open browser", "url", server.URL(), "error", err)
				}
			}
			s.logger.Info("Press Ctrl+C to stop")

			select {
			case err := <-errCh:
				if err != nil {
					return cli.Exit(err.Error(), 1)
				}
			case <-c.Context.Done():
				s.logger.Info("Shutting down...")
			}
			return nil
		},
	}
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

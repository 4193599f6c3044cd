package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/oops"
	slogmulti "github.com/samber/slog-multi"
)

// Mode selects where logs go.
type Mode int

const (
	// ModeConsole logs text to stdout and errors as JSON to stderr.
	ModeConsole Mode = iota
	// ModeTUI logs only to a file; the terminal belongs to the UI.
	ModeTUI
)

// ParseLevel maps a level name onto slog.Level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup builds the process logger and installs it as the slog default. The
// returned closer releases the log file, if one was opened.
//
// In ModeTUI a log file that cannot be opened is not fatal: the logger discards
// everything and the error is returned alongside it.
func Setup(mode Mode, level string, logFile string) (*slog.Logger, io.Closer, error) {
	lvl := ParseLevel(level)

	var (
		handler slog.Handler
		closer  io.Closer = nopCloser{}
	)

	switch mode {
	case ModeTUI:
		f, err := openLogFile(logFile)
		if err != nil {
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			slog.SetDefault(logger)
			return logger, closer, err
		}
		closer = f
		handler = slog.NewTextHandler(f, &slog.HandlerOptions{Level: lvl})
	default:
		textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: lvl,
		})
		jsonHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelError,
		})
		handler = slogmulti.Fanout(textHandler, jsonHandler)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, closer, nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, oops.With("path", path, "context", "failed to create log directory").Wrap(err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, oops.With("path", path, "context", "failed to open log file").Wrap(err)
	}
	return f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

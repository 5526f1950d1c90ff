package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/golang-cz/devslog"
	"github.com/mattn/go-isatty"
)

var ErrInvalidLogLevel = errors.New("invalid log level")

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func parseLevel(level string) (slog.Level, error) {
	parsed, ok := logLevels[level]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrInvalidLogLevel, level)
	}
	return parsed, nil
}

// newLogger picks devslog for a terminal and JSON lines for anything else.
func newLogger(w io.Writer, terminal bool, level string) (*slog.Logger, error) {
	parsed, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: parsed}

	if terminal {
		return slog.New(devslog.NewHandler(w, &devslog.Options{HandlerOptions: opts})), nil
	}
	return slog.New(slog.NewJSONHandler(w, opts)), nil
}

// initLogger installs the default logger on stderr, stdout carries command
// output.
func initLogger(level string) error {
	logger, err := newLogger(os.Stderr, isatty.IsTerminal(os.Stderr.Fd()), level)
	if err != nil {
		return err
	}

	slog.SetDefault(logger)
	return nil
}

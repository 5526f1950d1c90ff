package cmd

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := parseLevel(name)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := parseLevel("loud")
	require.ErrorIs(t, err, ErrInvalidLogLevel)
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := newLogger(&buf, false, "warn")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "post_id", "p1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "shown", line["msg"])
	require.Equal(t, "p1", line["post_id"])

	_, err = newLogger(&buf, true, "trace")
	require.ErrorIs(t, err, ErrInvalidLogLevel)
}

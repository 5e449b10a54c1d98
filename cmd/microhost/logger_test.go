package main

import (
	"log/slog"
	"testing"

	"github.com/atlanticdynamic/microhost/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	originalLogger := slog.Default()
	defer slog.SetDefault(originalLogger)

	SetupLogger("warn")
	ctx := t.Context()
	assert.False(t, slog.Default().Enabled(ctx, slog.LevelInfo))
	assert.True(t, slog.Default().Enabled(ctx, slog.LevelWarn))
}

func TestHostLogHandler(t *testing.T) {
	cfg := config.NewDefault("svc")
	cfg.Logging.Level = "error"

	t.Run("configured level", func(t *testing.T) {
		handler, closeFn, err := hostLogHandler(cfg, "")
		require.NoError(t, err)
		defer func() { _ = closeFn() }()
		assert.False(t, handler.Enabled(t.Context(), slog.LevelWarn))
	})

	t.Run("override", func(t *testing.T) {
		handler, closeFn, err := hostLogHandler(cfg, "debug")
		require.NoError(t, err)
		defer func() { _ = closeFn() }()
		assert.True(t, handler.Enabled(t.Context(), slog.LevelDebug))
	})
}

package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupHandlerText(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		enabled  slog.Level
		disabled slog.Level
	}{
		{name: "trace", logLevel: "trace", enabled: slog.LevelDebug, disabled: slog.LevelDebug - 1},
		{name: "debug", logLevel: "DeBuG", enabled: slog.LevelDebug, disabled: slog.LevelDebug - 1},
		{name: "info", logLevel: "info", enabled: slog.LevelInfo, disabled: slog.LevelDebug},
		{name: "warning", logLevel: "warning", enabled: slog.LevelWarn, disabled: slog.LevelInfo},
		{name: "error", logLevel: "ERROR", enabled: slog.LevelError, disabled: slog.LevelWarn},
		{name: "unknown defaults to info", logLevel: "chatty", enabled: slog.LevelInfo, disabled: slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			handler := SetupHandlerText(tt.logLevel, buf)
			require.NotNil(t, handler)

			assert.True(t, handler.Enabled(t.Context(), tt.enabled))
			assert.False(t, handler.Enabled(t.Context(), tt.disabled))

			slog.New(handler).Log(t.Context(), tt.enabled, "host started", "phase", "load")
			assert.Contains(t, buf.String(), "host started")
			assert.Contains(t, buf.String(), "phase=load")
		})
	}
}

func TestSetupHandlerJSON(t *testing.T) {
	t.Run("filters by level", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := slog.New(SetupHandlerJSON("warn", buf))

		logger.Info("quiet")
		logger.Warn("loud", "key", "value")

		out := buf.String()
		assert.NotContains(t, out, "quiet")
		assert.Contains(t, out, `"msg":"loud"`)
		assert.Contains(t, out, `"key":"value"`)
		assert.Contains(t, out, `"level":"WARN"`)
	})

	t.Run("trace adds source", func(t *testing.T) {
		buf := &bytes.Buffer{}
		slog.New(SetupHandlerJSON("trace", buf)).Debug("details")
		assert.Contains(t, buf.String(), `"source"`)
	})
}

func TestSetupHandler(t *testing.T) {
	buf := &bytes.Buffer{}
	assert.IsType(t, &log.Logger{}, SetupHandler("info", "text", buf))
	assert.IsType(t, &slog.JSONHandler{}, SetupHandler("info", "JSON", buf))
	assert.IsType(t, &log.Logger{}, SetupHandler("info", "", buf))
}

func TestNewHandler(t *testing.T) {
	t.Run("file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "host.log")
		handler, closeFn, err := NewHandler("info", "json", path)
		require.NoError(t, err)

		slog.New(handler).Info("to file")
		require.NoError(t, closeFn())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"to file"`)
	})

	t.Run("stderr close is a no-op", func(t *testing.T) {
		handler, closeFn, err := NewHandler("info", "text", "stderr")
		require.NoError(t, err)
		require.NotNil(t, handler)
		assert.NoError(t, closeFn())
	})

	t.Run("bad output", func(t *testing.T) {
		_, _, err := NewHandler("info", "text", "tcp://collector:9000")
		require.Error(t, err)
	})
}

func TestSetupLogger(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	SetupLogger("debug")
	assert.NotSame(t, original, slog.Default())
	assert.True(t, slog.Default().Enabled(t.Context(), slog.LevelDebug))
}

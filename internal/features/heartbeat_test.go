package features

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/atlanticdynamic/microhost/internal/config"
	"github.com/atlanticdynamic/microhost/internal/container"
	"github.com/atlanticdynamic/microhost/internal/host"
	"github.com/atlanticdynamic/microhost/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardHandler() slog.Handler {
	return slog.NewTextHandler(io.Discard, nil)
}

func TestNewHeartbeat(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		f, err := NewHeartbeat(nil, discardHandler())
		require.NoError(t, err)
		assert.Equal(t, HeartbeatName, f.Name())
		assert.Equal(t, DefaultHeartbeatInterval, f.Interval())
	})

	t.Run("settings", func(t *testing.T) {
		f, err := NewHeartbeat(map[string]any{"interval": "250ms", "message": "alive"}, nil)
		require.NoError(t, err)
		assert.Equal(t, 250*time.Millisecond, f.Interval())
		assert.Equal(t, "alive", f.message)
	})

	bad := []map[string]any{
		{"interval": 5},
		{"interval": "soon"},
		{"interval": "-1s"},
		{"message": ""},
		{"message": 7},
	}
	for _, settings := range bad {
		_, err := NewHeartbeat(settings, discardHandler())
		require.ErrorIs(t, err, ErrInvalidSetting, "%v", settings)
	}
}

func TestPulse(t *testing.T) {
	t.Parallel()

	p := NewPulse(5*time.Millisecond, "beat", slog.New(discardHandler()))
	assert.False(t, p.Running())

	require.NoError(t, p.MicroserviceActivated(t.Context()))
	require.NoError(t, p.MicroserviceActivated(t.Context()))
	assert.True(t, p.Running())

	assert.Eventually(t, func() bool { return p.Beats() >= 2 }, time.Second, time.Millisecond)

	require.NoError(t, p.MicroserviceMaybeDeactivating(t.Context()))
	assert.False(t, p.Running())
	beats := p.Beats()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, beats, p.Beats())

	require.NoError(t, p.Close())
}

func TestPulseLogsMessage(t *testing.T) {
	t.Parallel()

	var buf testutil.LogBuffer
	p := NewPulse(5*time.Millisecond, "still here", slog.New(slog.NewTextHandler(&buf, nil)))
	require.NoError(t, p.MicroserviceActivated(t.Context()))
	defer func() { _ = p.Close() }()

	assert.Eventually(t, func() bool { return buf.Count("still here") >= 2 }, time.Second, time.Millisecond)
	assert.Contains(t, buf.String(), "beat=1")
}

func TestHeartbeatInHost(t *testing.T) {
	t.Parallel()

	registry := host.NewRegistry()
	require.NoError(t, Register(registry, discardHandler()))

	cfg := config.NewDefault("heartbeat-test")
	cfg.Features = []config.FeatureSpec{{Name: HeartbeatName, Settings: map[string]any{"interval": "5ms"}}}

	h, err := host.New(cfg, host.WithModuleLoader(registry), host.WithLogHandler(discardHandler()))
	require.NoError(t, err)
	defer func() { require.NoError(t, h.Dispose()) }()

	require.NoError(t, h.Start(t.Context()))

	pulses := container.ResolveAll[*Pulse](h.GetContainer())
	require.Len(t, pulses, 1)
	pulse := pulses[0]
	assert.Eventually(t, func() bool { return pulse.Beats() > 0 }, time.Second, time.Millisecond)

	stopped, err := h.Stop(t.Context(), time.Second)
	require.NoError(t, err)
	require.True(t, stopped)
	assert.False(t, pulse.Running())
}

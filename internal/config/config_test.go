package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullConfig = `
name = "billing"
instance_id = "1ef7c3a0-5b7c-6d2a-8b1e-0242ac120002"

[mode]
clustered = true
precompiled = true

[timeouts]
lock = "2s"
stop = "1m"
dispose = "3s"

[logging]
level = "debug"
format = "json"

[[features]]
name = "heartbeat"
[features.settings]
interval = "250ms"

[[features]]
name = "reports"
`

func TestNewConfigFromBytes(t *testing.T) {
	t.Parallel()

	t.Run("full config", func(t *testing.T) {
		cfg, err := NewConfigFromBytes([]byte(fullConfig))
		require.NoError(t, err)

		assert.Equal(t, "billing", cfg.Name)
		assert.Equal(t, uuid.FromStringOrNil("1ef7c3a0-5b7c-6d2a-8b1e-0242ac120002"), cfg.InstanceID)
		assert.True(t, cfg.Mode.Clustered)
		assert.False(t, cfg.Mode.Batch)
		assert.True(t, cfg.Mode.Precompiled)
		assert.True(t, cfg.StandbyOnly())
		assert.Equal(t, 2*time.Second, cfg.Timeouts.Lock.AsDuration())
		assert.Equal(t, time.Minute, cfg.Timeouts.Stop.AsDuration())
		assert.Equal(t, 3*time.Second, cfg.Timeouts.Dispose.AsDuration())
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "json", cfg.Logging.Format)
		assert.Equal(t, []string{"heartbeat", "reports"}, cfg.FeatureNames())
		assert.Equal(t, "250ms", cfg.Features[0].Settings["interval"])
	})

	t.Run("defaults", func(t *testing.T) {
		cfg, err := NewConfigFromBytes([]byte(`name = "minimal"`))
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, cfg.InstanceID)
		assert.Equal(t, DefaultLockTimeout, cfg.Timeouts.Lock.AsDuration())
		assert.Equal(t, DefaultStopTimeout, cfg.Timeouts.Stop.AsDuration())
		assert.Equal(t, DefaultDisposeTimeout, cfg.Timeouts.Dispose.AsDuration())
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, "text", cfg.Logging.Format)
		assert.Equal(t, "stderr", cfg.Logging.Output)
		assert.False(t, cfg.StandbyOnly())
	})

	t.Run("environment references are expanded", func(t *testing.T) {
		cfg, err := NewConfigFromBytes([]byte(`
name = "${MH_CONFIG_TEST_UNSET:orders}"

[[features]]
name = "heartbeat"
[features.settings]
interval = "${MH_CONFIG_TEST_UNSET:2s}"
`))
		require.NoError(t, err)
		assert.Equal(t, "orders", cfg.Name)
		assert.Equal(t, "2s", cfg.Features[0].Settings["interval"])
	})

	errorCases := []struct {
		name  string
		input string
		errIs error
	}{
		{name: "empty", input: "  ", errIs: ErrNoSourceData},
		{name: "bad toml", input: "name = ", errIs: ErrFailedToLoadConfig},
		{name: "unknown field", input: "name = \"x\"\nbogus = 1", errIs: ErrFailedToLoadConfig},
		{name: "missing name", input: "[mode]\nbatch = true", errIs: ErrMissingRequiredField},
		{
			name:  "conflicting modes",
			input: "name = \"x\"\n[mode]\nbatch = true\nclustered = true",
			errIs: ErrInvalidValue,
		},
		{name: "bad duration", input: "name = \"x\"\n[timeouts]\nstop = \"soon\"", errIs: ErrFailedToLoadConfig},
		{name: "bad instance id", input: "name = \"x\"\ninstance_id = \"nope\"", errIs: ErrInvalidValue},
		{name: "bad log level", input: "name = \"x\"\n[logging]\nlevel = \"loud\"", errIs: ErrInvalidValue},
		{
			name:  "duplicate feature",
			input: "name = \"x\"\n[[features]]\nname = \"a\"\n[[features]]\nname = \"a\"",
			errIs: ErrDuplicateFeature,
		},
		{
			name:  "missing env reference",
			input: "name = \"${MH_CONFIG_TEST_UNSET}\"",
			errIs: ErrFailedToLoadConfig,
		},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConfigFromBytes([]byte(tc.input))
			require.ErrorIs(t, err, tc.errIs)
		})
	}
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	t.Run("reads toml file", func(t *testing.T) {
		path := filepath.Join(dir, "host.toml")
		require.NoError(t, os.WriteFile(path, []byte(fullConfig), 0o600))

		cfg, err := NewConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "billing", cfg.Name)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewConfig(filepath.Join(dir, "missing.toml"))
		require.ErrorIs(t, err, ErrFailedToLoadConfig)
	})

	t.Run("wrong extension", func(t *testing.T) {
		path := filepath.Join(dir, "host.yaml")
		require.NoError(t, os.WriteFile(path, []byte("name: x"), 0o600))

		_, err := NewConfig(path)
		require.ErrorIs(t, err, ErrUnsupportedExtension)
	})

	t.Run("reader", func(t *testing.T) {
		cfg, err := NewConfigFromReader(strings.NewReader(`name = "from-reader"`))
		require.NoError(t, err)
		assert.Equal(t, "from-reader", cfg.Name)
	})
}

func TestConfigTree(t *testing.T) {
	t.Parallel()

	cfg, err := NewConfigFromBytes([]byte(fullConfig))
	require.NoError(t, err)

	out := cfg.String()
	assert.Contains(t, out, "billing")
	assert.Contains(t, out, "Clustered: true")
	assert.Contains(t, out, "Stop: 1m0s")
	assert.Contains(t, out, "heartbeat")
	assert.Contains(t, out, "interval: 250ms")
}

func TestNewDefault(t *testing.T) {
	t.Parallel()

	cfg := NewDefault("svc")
	require.NoError(t, cfg.Validate())
	assert.NotEqual(t, uuid.Nil, cfg.InstanceID)
	assert.Empty(t, cfg.FeatureNames())
}

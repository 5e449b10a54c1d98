// Package config loads the boot configuration of a microservice host: its
// identity, run mode, lifecycle timeouts, logging, and the features to load.
package config

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Default timeouts, applied when the boot file leaves them unset.
const (
	DefaultLockTimeout    = 5 * time.Second
	DefaultStopTimeout    = 30 * time.Second
	DefaultDisposeTimeout = 10 * time.Second
)

// BootConfig is the read-only configuration a host is created with.
type BootConfig struct {
	Name       string        `toml:"name"`
	InstanceID uuid.UUID     `toml:"-"`
	RawID      string        `toml:"instance_id"`
	Mode       Mode          `toml:"mode"`
	Timeouts   Timeouts      `toml:"timeouts"`
	Logging    Logging       `toml:"logging"`
	Features   []FeatureSpec `toml:"features"`
}

// Mode selects how far Start drives the host and what Compile does.
type Mode struct {
	// Clustered hosts stop at Standby; activation is left to a coordinator.
	Clustered bool `toml:"clustered"`
	// Batch hosts stop at Standby and run a single job.
	Batch bool `toml:"batch"`
	// Precompiled hosts skip component compilation.
	Precompiled bool `toml:"precompiled"`
}

// Timeouts bound lifecycle calls.
type Timeouts struct {
	Lock    Duration `toml:"lock"`
	Stop    Duration `toml:"stop"`
	Dispose Duration `toml:"dispose"`
}

// Logging selects the log handler and where it writes.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	// Output is "stderr", "stdout", a file path, or a file:// URL.
	Output string `toml:"output"`
}

// FeatureSpec names a feature loader and its settings table.
type FeatureSpec struct {
	Name     string         `toml:"name"`
	Settings map[string]any `toml:"settings"`
}

// NewDefault returns a config with a fresh instance ID and default timeouts.
func NewDefault(name string) *BootConfig {
	cfg := &BootConfig{Name: name}
	cfg.applyDefaults()
	return cfg
}

// StandbyOnly reports whether Start should stop at Standby.
func (c *BootConfig) StandbyOnly() bool {
	return c.Mode.Clustered || c.Mode.Batch
}

// FeatureNames returns the configured feature names in order.
func (c *BootConfig) FeatureNames() []string {
	names := make([]string, 0, len(c.Features))
	for _, f := range c.Features {
		names = append(names, f.Name)
	}
	return names
}

func (c *BootConfig) applyDefaults() {
	if c.InstanceID == uuid.Nil {
		c.InstanceID = uuid.Must(uuid.NewV6())
	}
	if c.Timeouts.Lock <= 0 {
		c.Timeouts.Lock = FromDuration(DefaultLockTimeout)
	}
	if c.Timeouts.Stop <= 0 {
		c.Timeouts.Stop = FromDuration(DefaultStopTimeout)
	}
	if c.Timeouts.Dispose <= 0 {
		c.Timeouts.Dispose = FromDuration(DefaultDisposeTimeout)
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stderr"
	}
}

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/atlanticdynamic/microhost/internal/interpolation"
	"github.com/gofrs/uuid/v5"
	"github.com/pelletier/go-toml/v2"
)

// NewConfig loads and validates a boot configuration from a TOML file.
func NewConfig(filePath string) (*BootConfig, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: config file does not exist: %s", ErrFailedToLoadConfig, filePath)
	}

	if ext := filepath.Ext(filePath); ext != ".toml" {
		return nil, fmt.Errorf("%w: '%s'", ErrUnsupportedExtension, ext)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file '%s': %w", ErrFailedToLoadConfig, filePath, err)
	}

	return NewConfigFromBytes(data)
}

// NewConfigFromReader loads and validates a boot configuration from r.
func NewConfigFromReader(r io.Reader) (*BootConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config data: %w", ErrFailedToLoadConfig, err)
	}
	return NewConfigFromBytes(data)
}

// NewConfigFromBytes parses TOML, expands environment references, applies
// defaults and validates the result.
func NewConfigFromBytes(data []byte) (*BootConfig, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrFailedToLoadConfig, ErrNoSourceData)
	}

	cfg := &BootConfig{}
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: %s", ErrFailedToLoadConfig, strict.String())
		}
		return nil, fmt.Errorf("%w: %w", ErrFailedToLoadConfig, err)
	}

	if err := cfg.expand(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToLoadConfig, err)
	}

	if cfg.RawID != "" {
		id, err := uuid.FromString(cfg.RawID)
		if err != nil {
			return nil, fmt.Errorf("%w: instance_id: %w: %w", ErrFailedToValidateConfig, ErrInvalidValue, err)
		}
		cfg.InstanceID = id
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToValidateConfig, err)
	}
	return cfg, nil
}

func (c *BootConfig) expand() error {
	errs := []error{
		interpolation.ExpandStrings(&c.Name, &c.RawID, &c.Logging.Level, &c.Logging.Format, &c.Logging.Output),
	}
	for i := range c.Features {
		if err := interpolation.ExpandSettings(c.Features[i].Settings); err != nil {
			errs = append(errs, fmt.Errorf("feature %s: %w", c.Features[i].Name, err))
		}
	}
	return errors.Join(errs...)
}

package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	validLogLevels  = []string{"trace", "debug", "info", "warn", "warning", "error"}
	validLogFormats = []string{"text", "json"}
)

// Validate reports every problem in the configuration at once.
func (c *BootConfig) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, fmt.Errorf("%w: name", ErrMissingRequiredField))
	}

	if c.Mode.Clustered && c.Mode.Batch {
		errs = append(errs, fmt.Errorf("%w: mode: clustered and batch are mutually exclusive", ErrInvalidValue))
	}

	for name, d := range map[string]Duration{
		"lock":    c.Timeouts.Lock,
		"stop":    c.Timeouts.Stop,
		"dispose": c.Timeouts.Dispose,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%w: timeouts.%s must not be negative", ErrInvalidValue, name))
		}
	}

	if c.Logging.Level != "" && !slices.Contains(validLogLevels, strings.ToLower(c.Logging.Level)) {
		errs = append(errs, fmt.Errorf("%w: logging.level %q", ErrInvalidValue, c.Logging.Level))
	}
	if c.Logging.Format != "" && !slices.Contains(validLogFormats, strings.ToLower(c.Logging.Format)) {
		errs = append(errs, fmt.Errorf("%w: logging.format %q", ErrInvalidValue, c.Logging.Format))
	}

	seen := make(map[string]struct{}, len(c.Features))
	for i, f := range c.Features {
		if strings.TrimSpace(f.Name) == "" {
			errs = append(errs, fmt.Errorf("%w: features[%d].name", ErrMissingRequiredField, i))
			continue
		}
		if _, dup := seen[f.Name]; dup {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateFeature, f.Name))
		}
		seen[f.Name] = struct{}{}
	}

	return errors.Join(errs...)
}

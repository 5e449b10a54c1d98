// Package interpolation expands ${VAR} and ${VAR:default} references to
// environment variables inside boot configuration values.
package interpolation

import (
	"errors"
	"fmt"
	"os"
	"regexp"
)

// ErrUndefinedVariable is returned for a reference without a default whose
// variable is not set.
var ErrUndefinedVariable = errors.New("environment variable not defined")

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:)?([^}]*)\}`)

// ExpandEnvVars replaces every ${NAME} or ${NAME:default} in input. Missing
// variables without a default are left in place and reported together.
func ExpandEnvVars(input string) (string, error) {
	if input == "" {
		return "", nil
	}

	var missing []error
	result := envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		parts := envVarPattern.FindStringSubmatch(match)
		name, hasDefault, fallback := parts[1], parts[2] == ":", parts[3]

		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		if hasDefault {
			return fallback
		}
		missing = append(missing, fmt.Errorf("%w: %s", ErrUndefinedVariable, name))
		return match
	})

	return result, errors.Join(missing...)
}

// ExpandStrings expands each referenced string in place.
func ExpandStrings(fields ...*string) error {
	var errs []error
	for _, f := range fields {
		if f == nil {
			continue
		}
		expanded, err := ExpandEnvVars(*f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		*f = expanded
	}
	return errors.Join(errs...)
}

// ExpandSettings expands string values of a decoded settings table in place,
// descending into nested tables and arrays.
func ExpandSettings(settings map[string]any) error {
	var errs []error
	for key, value := range settings {
		expanded, err := expandValue(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		settings[key] = expanded
	}
	return errors.Join(errs...)
}

func expandValue(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return ExpandEnvVars(v)
	case map[string]any:
		return v, ExpandSettings(v)
	case []any:
		var errs []error
		for i, item := range v {
			expanded, err := expandValue(item)
			if err != nil {
				errs = append(errs, fmt.Errorf("[%d]: %w", i, err))
				continue
			}
			v[i] = expanded
		}
		return v, errors.Join(errs...)
	default:
		return value, nil
	}
}

package config

import "errors"

var (
	ErrFailedToLoadConfig     = errors.New("failed to load config")
	ErrFailedToValidateConfig = errors.New("failed to validate config")
	ErrNoSourceData           = errors.New("no source data provided")
	ErrUnsupportedExtension   = errors.New("unsupported config extension")
)

// Validation specific errors
var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidValue         = errors.New("invalid value")
	ErrDuplicateFeature     = errors.New("duplicate feature")
	ErrInvalidDuration      = errors.New("invalid duration")
)

package server

import (
	"log/slog"
	"time"
)

type Option func(*Runner)

// WithLogger sets a custom logger for the Runner instance.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithLogHandler sets a custom log handler for the Runner instance.
func WithLogHandler(handler slog.Handler) Option {
	return func(r *Runner) {
		r.logger = slog.New(handler).WithGroup("server.Runner")
	}
}

// WithStopTimeout overrides the host's configured stop timeout.
func WithStopTimeout(timeout time.Duration) Option {
	return func(r *Runner) {
		r.stopTimeout = timeout
	}
}

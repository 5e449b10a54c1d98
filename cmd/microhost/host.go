package main

import (
	"fmt"
	"log/slog"

	"github.com/atlanticdynamic/microhost/internal/config"
	"github.com/atlanticdynamic/microhost/internal/features"
	"github.com/atlanticdynamic/microhost/internal/host"
	"github.com/urfave/cli/v3"
)

var configFlag = &cli.StringFlag{
	Name:     "config",
	Usage:    "Path to TOML boot configuration file",
	Aliases:  []string{"c"},
	Required: true,
	Sources:  cli.EnvVars("MICROHOST_CONFIG"),
}

// hostSession is a host built from a boot config, with its log output.
type hostSession struct {
	host    *host.Host
	logger  *slog.Logger
	handler slog.Handler
	closeFn func() error
}

// newHostSession loads the boot config at path, lets mutate adjust it, and
// builds a host with the built-in features registered.
func newHostSession(cmd *cli.Command, path string, mutate func(*config.BootConfig)) (*hostSession, error) {
	cfg, err := config.NewConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if mutate != nil {
		mutate(cfg)
	}

	handler, closeFn, err := hostLogHandler(cfg, cmd.String("log-level"))
	if err != nil {
		return nil, err
	}

	registry := host.NewRegistry()
	if err := features.Register(registry, handler); err != nil {
		_ = closeFn()
		return nil, fmt.Errorf("failed to register features: %w", err)
	}

	h, err := host.New(cfg,
		host.WithLogHandler(handler),
		host.WithModuleLoader(registry),
	)
	if err != nil {
		_ = closeFn()
		return nil, fmt.Errorf("failed to create host: %w", err)
	}

	return &hostSession{
		host:    h,
		logger:  slog.New(handler).With("microservice", cfg.Name),
		handler: handler,
		closeFn: closeFn,
	}, nil
}

// Close disposes the host and releases the log output.
func (s *hostSession) Close() error {
	err := s.host.Dispose()
	if err != nil {
		s.logger.Error("Failed to dispose host", "error", err)
	}
	if closeErr := s.closeFn(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

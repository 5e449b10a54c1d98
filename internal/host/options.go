package host

import (
	"log/slog"

	"github.com/atlanticdynamic/microhost/internal/container"
)

type Option func(*Host)

// WithLogHandler sets the handler the host logs to. Every record is also kept
// for PlaybackLogs.
func WithLogHandler(handler slog.Handler) Option {
	return func(h *Host) {
		if handler != nil {
			h.baseHandler = handler
		}
	}
}

// WithModuleLoader sets how feature loaders are resolved from the boot
// configuration.
func WithModuleLoader(loader ModuleLoader) Option {
	return func(h *Host) {
		h.moduleLoader = loader
	}
}

// WithFeatureLoaders adds loaders that run after the module loader's ones.
func WithFeatureLoaders(loaders ...FeatureLoader) Option {
	return func(h *Host) {
		h.extraLoaders = append(h.extraLoaders, loaders...)
	}
}

// WithContainerFactory replaces the constructor of the per-cycle component
// container.
func WithContainerFactory(factory func() (*container.Container, error)) Option {
	return func(h *Host) {
		if factory != nil {
			h.newContainer = factory
		}
	}
}

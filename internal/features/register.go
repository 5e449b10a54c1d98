package features

import (
	"log/slog"

	"github.com/atlanticdynamic/microhost/internal/host"
)

// Register adds every built-in feature to r. Feature loggers write to handler.
func Register(r *host.Registry, handler slog.Handler) error {
	return r.Register(HeartbeatName, func(settings map[string]any) (host.FeatureLoader, error) {
		return NewHeartbeat(settings, handler)
	})
}

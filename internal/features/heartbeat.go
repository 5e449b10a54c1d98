// Package features holds the feature loaders built into the microhost binary.
package features

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/atlanticdynamic/microhost/internal/container"
	"github.com/atlanticdynamic/microhost/internal/host"
)

const (
	HeartbeatName            = "heartbeat"
	DefaultHeartbeatInterval = 30 * time.Second
)

var ErrInvalidSetting = errors.New("invalid feature setting")

// Heartbeat contributes a lifecycle component that logs at a fixed interval
// while the host is Active.
type Heartbeat struct {
	host.FeatureLoaderBase
	interval time.Duration
	message  string
	logger   *slog.Logger
}

// NewHeartbeat builds the feature from its settings table. Recognized keys are
// "interval" (a duration string) and "message".
func NewHeartbeat(settings map[string]any, handler slog.Handler) (*Heartbeat, error) {
	f := &Heartbeat{
		interval: DefaultHeartbeatInterval,
		message:  "Heartbeat",
		logger:   slog.Default().WithGroup("features.Heartbeat"),
	}
	if handler != nil {
		f.logger = slog.New(handler).WithGroup("features.Heartbeat")
	}

	if raw, ok := settings["interval"]; ok {
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: interval must be a duration string, got %T", ErrInvalidSetting, raw)
		}
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%w: interval %q", ErrInvalidSetting, s)
		}
		f.interval = d
	}
	if raw, ok := settings["message"]; ok {
		s, ok := raw.(string)
		if !ok || s == "" {
			return nil, fmt.Errorf("%w: message must be a non-empty string", ErrInvalidSetting)
		}
		f.message = s
	}
	return f, nil
}

func (f *Heartbeat) Name() string {
	return HeartbeatName
}

// Interval returns the configured beat interval.
func (f *Heartbeat) Interval() time.Duration {
	return f.interval
}

func (f *Heartbeat) ContributeComponents(_ context.Context, _ *container.Container, b *container.Builder) error {
	b.Register("heartbeat.Pulse", NewPulse(f.interval, f.message, f.logger))
	return nil
}

// Pulse is the component behind the heartbeat feature.
type Pulse struct {
	host.ComponentBase

	interval time.Duration
	message  string
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	beats  atomic.Int64
}

var _ host.LifecycleComponent = (*Pulse)(nil)

// NewPulse creates a stopped Pulse.
func NewPulse(interval time.Duration, message string, logger *slog.Logger) *Pulse {
	return &Pulse{interval: interval, message: message, logger: logger}
}

// Beats returns how many beats have been logged.
func (p *Pulse) Beats() int64 {
	return p.beats.Load()
}

// Running reports whether the pulse is ticking.
func (p *Pulse) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// MicroserviceActivated starts ticking.
func (p *Pulse) MicroserviceActivated(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return nil
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(runCtx, p.done)

	p.logger.Debug("Heartbeat started", "interval", p.interval)
	return nil
}

// MicroserviceMaybeDeactivating stops ticking.
func (p *Pulse) MicroserviceMaybeDeactivating(context.Context) error {
	p.stop()
	return nil
}

// Close stops ticking when the container is released.
func (p *Pulse) Close() error {
	p.stop()
	return nil
}

func (p *Pulse) stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.logger.Debug("Heartbeat stopped", "beats", p.beats.Load())
}

func (p *Pulse) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := p.beats.Add(1)
			p.logger.Info(p.message, "beat", n)
		}
	}
}

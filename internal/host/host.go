// Package host drives a microservice process through its lifecycle:
// configuration, compilation, loading and activation, and the reverse on the
// way down. Phases run synchronously on the calling goroutine; a reentrant,
// timeout-bounded lock serializes public lifecycle calls.
package host

import (
	"log/slog"
	"sync/atomic"

	"github.com/atlanticdynamic/microhost/internal/config"
	"github.com/atlanticdynamic/microhost/internal/container"
	"github.com/atlanticdynamic/microhost/internal/reentrant"
	"github.com/atlanticdynamic/microhost/internal/sequence"
	"github.com/atlanticdynamic/microhost/internal/statemachine"
	"github.com/gofrs/uuid/v5"
	"github.com/robbyt/go-loglater"
)

// BootConfigName is the container name the boot configuration is registered under.
const BootConfigName = "microhost.BootConfig"

// Host is a microservice lifecycle host.
type Host struct {
	cfg *config.BootConfig

	baseHandler  slog.Handler
	logCollector *loglater.LogCollector
	logger       *slog.Logger

	lock      *reentrant.Mutex
	machine   *statemachine.Machine[State, Trigger]
	scheduler *statemachine.Scheduler[State, Trigger]

	loadSeq     *sequence.Sequence
	activateSeq *sequence.Sequence

	moduleLoader ModuleLoader
	extraLoaders []FeatureLoader
	newContainer func() (*container.Container, error)

	// The fields below are only written while the lifecycle lock is held.
	container  atomic.Pointer[container.Container]
	loaders    []FeatureLoader
	components []container.Named[LifecycleComponent]
	phaseErr   error

	disposed atomic.Bool
}

// New creates a host in the Down state.
func New(cfg *config.BootConfig, opts ...Option) (*Host, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	h := &Host{
		cfg:          cfg,
		baseHandler:  slog.Default().Handler(),
		moduleLoader: NewRegistry(),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.logCollector = loglater.NewLogCollector(h.baseHandler)
	h.logger = slog.New(h.logCollector).With(
		"microservice", cfg.Name,
		"instance", cfg.InstanceID.String(),
	).WithGroup("host.Host")

	if h.newContainer == nil {
		h.newContainer = func() (*container.Container, error) {
			return container.New(container.WithLogHandler(h.logger.Handler())), nil
		}
	}

	h.lock = reentrant.New("host.Host", cfg.Timeouts.Lock.AsDuration())
	h.loadSeq = h.newLoadSequence()
	h.activateSeq = h.newActivateSequence()

	machine, err := newMachine(h)
	if err != nil {
		return nil, err
	}
	machine.OnTransition(func(from, to State, trigger Trigger) {
		h.logger.Info("State changed", "from", from, "to", to, "trigger", trigger)
	})
	h.machine = machine
	h.scheduler = statemachine.NewScheduler(machine,
		statemachine.WithSchedulerLogHandler[State, Trigger](h.logger.Handler()))

	return h, nil
}

// String returns the microservice name.
func (h *Host) String() string {
	return h.cfg.Name
}

// Config returns the boot configuration the host was created with.
func (h *Host) Config() *config.BootConfig {
	return h.cfg
}

// InstanceID returns the identity of this host instance.
func (h *Host) InstanceID() uuid.UUID {
	return h.cfg.InstanceID
}

// CurrentState returns the state the host is in. It is safe to call at any time.
func (h *Host) CurrentState() State {
	return h.machine.CurrentState()
}

// OnStateChanged subscribes fn to every state transition. fn runs on the
// goroutine driving the lifecycle and must not block.
func (h *Host) OnStateChanged(fn func(from, to State, trigger Trigger)) {
	h.machine.OnTransition(fn)
}

// GetContainer returns the component container, or nil while the host is Down.
// Callers may resolve components but must not merge into it.
func (h *Host) GetContainer() *container.Container {
	return h.container.Load()
}

// IsDisposed reports whether Dispose has been called.
func (h *Host) IsDisposed() bool {
	return h.disposed.Load()
}

// PlaybackLogs replays every record the host has logged to handler.
func (h *Host) PlaybackLogs(handler slog.Handler) error {
	return h.logCollector.PlayLogs(handler)
}

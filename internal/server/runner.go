package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/atlanticdynamic/microhost/internal/host"
	"github.com/atlanticdynamic/microhost/internal/server/finitestate"
	"github.com/robbyt/go-supervisor/supervisor"
)

var (
	_ supervisor.Runnable  = (*Runner)(nil)
	_ supervisor.Stateable = (*Runner)(nil)
)

var ErrNilHost = errors.New("host is nil")

// Runner runs a Host as a daemon under a supervisor. The runner reports
// Running once the host reaches its target state.
type Runner struct {
	host        *host.Host
	stopTimeout time.Duration

	logger *slog.Logger
	fsm    finitestate.Machine

	mu        sync.Mutex
	runCancel context.CancelFunc
	stopped   bool
}

// NewRunner creates a Runner for h. The stop timeout defaults to the host's
// configured timeouts.stop.
func NewRunner(h *host.Host, opts ...Option) (*Runner, error) {
	if h == nil {
		return nil, ErrNilHost
	}

	runner := &Runner{
		host:        h,
		stopTimeout: h.Config().Timeouts.Stop.AsDuration(),
		logger:      slog.Default().WithGroup("server.Runner"),
	}

	for _, opt := range opts {
		opt(runner)
	}

	fsmLogger := runner.logger.WithGroup("fsm")
	fsm, err := finitestate.New(fsmLogger.Handler())
	if err != nil {
		return nil, fmt.Errorf("failed to create state machine: %w", err)
	}
	runner.fsm = fsm

	h.OnStateChanged(runner.hostStateChanged)
	return runner, nil
}

// String implements the supervisor.Runnable interface
func (r *Runner) String() string {
	return fmt.Sprintf("server.Runner(%s)", r.host)
}

// Run implements the supervisor.Runnable interface. It blocks until ctx is
// cancelled or Stop is called, then stops the host.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Debug("Starting Runner")

	if err := r.fsm.Transition(finitestate.StatusBooting); err != nil {
		return fmt.Errorf("failed to transition to booting state: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.mu.Lock()
	if r.stopped {
		cancel()
	}
	r.runCancel = cancel
	r.mu.Unlock()

	completed, err := r.host.RunDaemon(runCtx, r.stopTimeout)
	if err != nil {
		if stateErr := r.fsm.Transition(finitestate.StatusError); stateErr != nil {
			r.logger.Error("Failed to transition to error state", "error", stateErr)
		}
		return fmt.Errorf("host %s failed: %w", r.host, err)
	}

	r.logger.Info("Runner shutting down", "completed", completed)
	if !completed {
		r.logger.Warn("Host stop did not finish before the timeout", "timeout", r.stopTimeout)
	}

	if r.fsm.GetState() != finitestate.StatusStopping {
		if err := r.fsm.Transition(finitestate.StatusStopping); err != nil {
			r.logger.Error("Failed to transition to stopping state", "error", err)
		}
	}

	if err := r.fsm.Transition(finitestate.StatusStopped); err != nil {
		return fmt.Errorf("failed to transition to stopped state: %w", err)
	}
	return nil
}

// Stop implements the supervisor.Runnable interface
func (r *Runner) Stop() {
	r.logger.Debug("Stopping Runner")

	r.mu.Lock()
	r.stopped = true
	cancel := r.runCancel
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	if err := r.fsm.Transition(finitestate.StatusStopping); err != nil {
		r.logger.Error("Failed to transition to stopping state", "error", err)
	}
	cancel()
}

// hostStateChanged flips the runner to Running when the host settles in its
// target state.
func (r *Runner) hostStateChanged(_, to host.State, _ host.Trigger) {
	if to != r.host.TargetState() {
		return
	}
	if r.fsm.GetState() != finitestate.StatusBooting {
		return
	}
	if err := r.fsm.TransitionIfCurrentState(finitestate.StatusBooting, finitestate.StatusRunning); err != nil {
		r.logger.Debug("Skipping running transition", "error", err)
	}
}

package host

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atlanticdynamic/microhost/internal/reentrant"
	"github.com/atlanticdynamic/microhost/internal/statemachine"
)

// enter acquires the lifecycle lock for op and rejects calls on a disposed or
// faulted host. The returned context carries lock ownership. A context that
// ends before the lock is taken yields a cancelled StateError toward want.
func (h *Host) enter(ctx context.Context, op string, want State) (context.Context, func(), error) {
	if h.disposed.Load() {
		return ctx, nil, fmt.Errorf("%s: %w", op, ErrDisposed)
	}

	lockCtx, release, err := h.lock.Acquire(ctx)
	switch {
	case errors.Is(err, reentrant.ErrCancelled):
		return ctx, nil, &StateError{Operation: op, Want: want, Got: h.CurrentState(), Cancelled: true, Cause: err}
	case err != nil:
		return ctx, nil, fmt.Errorf("%s: %w", op, err)
	}

	switch {
	case h.disposed.Load():
		release()
		return ctx, nil, fmt.Errorf("%s: %w", op, ErrDisposed)
	case h.machine.IsFaulted():
		release()
		return ctx, nil, fmt.Errorf("%s: %w", op, ErrFaulted)
	}
	return lockCtx, release, nil
}

// drive raises trigger and drains its feedback until the host settles. It
// returns a StateError when the settled state is not want.
func (h *Host) drive(ctx context.Context, op string, trigger Trigger, want State) error {
	h.phaseErr = nil
	h.scheduler.QueueTrigger(trigger)

	got, err := h.scheduler.RunOnCurrentThread(ctx,
		func(s State) bool { return s == want },
		func(s State, err error) bool {
			h.logger.Error("Unrecoverable lifecycle error", "operation", op, "state", s, "error", err)
			return false
		},
	)

	switch {
	case errors.Is(err, statemachine.ErrFaulted):
		return fmt.Errorf("%s: %w: %w", op, ErrFaulted, err)
	case errors.Is(err, statemachine.ErrCancelled):
		return &StateError{Operation: op, Want: want, Got: got, Cancelled: true, Cause: err}
	case err != nil:
		return fmt.Errorf("%s: %w", op, err)
	case got != want:
		return &StateError{Operation: op, Want: want, Got: got, Cause: h.phaseErr}
	}
	return nil
}

func (h *Host) expect(op string, allowed ...State) error {
	current := h.machine.CurrentState()
	for _, s := range allowed {
		if s == current {
			return nil
		}
	}
	return fmt.Errorf("%s: %w: %s", op, ErrInvalidState, current)
}

// Configure builds the component container and runs the configuration phases
// of every feature loader. The host must be Down.
func (h *Host) Configure(ctx context.Context) error {
	ctx, release, err := h.enter(ctx, "configure", StateConfigured)
	if err != nil {
		return err
	}
	defer release()

	if err := h.expect("configure", StateDown); err != nil {
		return err
	}
	return h.drive(ctx, "configure", TriggerConfigure, StateConfigured)
}

// Compile runs the compile phases. The host must be Configured.
func (h *Host) Compile(ctx context.Context) error {
	ctx, release, err := h.enter(ctx, "compile", StateCompiledStopped)
	if err != nil {
		return err
	}
	defer release()

	if err := h.expect("compile", StateConfigured); err != nil {
		return err
	}
	return h.drive(ctx, "compile", TriggerCompile, StateCompiledStopped)
}

// Start configures and compiles the host as needed, loads it, and activates it
// unless the boot mode only requires Standby. Starting a host that already
// reached its target state is a no-op.
func (h *Host) Start(ctx context.Context) error {
	ctx, release, err := h.enter(ctx, "start", h.TargetState())
	if err != nil {
		return err
	}
	defer release()

	target := h.TargetState()
	if h.CurrentState() == target {
		return nil
	}
	if err := h.expect("start", StateDown, StateConfigured, StateCompiledStopped, StateStandby); err != nil {
		return err
	}

	if h.CurrentState() == StateDown {
		if err := h.Configure(ctx); err != nil {
			return err
		}
	}
	if h.CurrentState() == StateConfigured {
		if err := h.Compile(ctx); err != nil {
			return err
		}
	}
	if h.CurrentState() == StateCompiledStopped {
		if err := h.drive(ctx, "load", TriggerLoad, StateStandby); err != nil {
			return err
		}
	}
	if target == StateActive {
		if err := h.drive(ctx, "activate", TriggerActivate, StateActive); err != nil {
			return err
		}
	}

	h.logger.Info("Microservice started", "state", h.CurrentState())
	return nil
}

// TargetState is the state Start drives toward: Standby for clustered and
// batch microservices, Active otherwise.
func (h *Host) TargetState() State {
	if h.cfg.StandbyOnly() {
		return StateStandby
	}
	return StateActive
}

// Stop deactivates and unloads the host. It reports whether CompiledStopped was
// reached before timeout elapsed or ctx was done; a stop that cannot take the
// lifecycle lock reports false without an error. A stop that runs out of time
// keeps running in the background and holds the lifecycle lock until it ends.
// A non-positive timeout waits for the stop to finish. A host that is not
// loaded is already stopped.
func (h *Host) Stop(ctx context.Context, timeout time.Duration) (bool, error) {
	return h.stop(ctx, timeout, nil)
}

// stop runs the stop phases on their own goroutine, followed by then when it is
// set. The lifecycle lock is released when both have finished.
func (h *Host) stop(ctx context.Context, timeout time.Duration, then func(context.Context)) (bool, error) {
	lockCtx, release, err := h.enter(ctx, "stop", StateCompiledStopped)
	var stateErr *StateError
	switch {
	case errors.As(err, &stateErr), errors.Is(err, reentrant.ErrTimeout):
		h.logger.Warn("Stop could not take the lifecycle lock", "error", err, "state", h.CurrentState())
		return false, nil
	case err != nil:
		return false, err
	}

	done := make(chan bool, 1)
	go func() {
		defer release()

		runCtx := context.WithoutCancel(lockCtx)
		ok := h.runStop(runCtx)
		if then != nil {
			then(runCtx)
		}
		done <- ok
	}()

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case ok := <-done:
		return ok, nil
	case <-expired:
		h.logger.Warn("Stop did not complete in time", "timeout", timeout, "state", h.CurrentState())
	case <-ctx.Done():
		h.logger.Warn("Stop abandoned", "error", ctx.Err(), "state", h.CurrentState())
	}
	return false, nil
}

func (h *Host) runStop(ctx context.Context) bool {
	switch h.CurrentState() {
	case StateDown, StateConfigured, StateCompiledStopped:
		return true
	case StateActive:
		if err := h.drive(ctx, "deactivate", TriggerDeactivate, StateStandby); err != nil {
			h.logger.Error("Deactivation failed", "error", err)
		}
	}

	if h.CurrentState() == StateStandby {
		if err := h.drive(ctx, "unload", TriggerUnload, StateCompiledStopped); err != nil {
			h.logger.Error("Unload failed", "error", err)
		}
	}

	stopped := h.CurrentState() == StateCompiledStopped
	if stopped {
		h.logger.Info("Microservice stopped")
	}
	return stopped
}

// RunDaemon starts the host, blocks until ctx is done, then stops it. It
// reports whether the stop completed within stopTimeout.
func (h *Host) RunDaemon(ctx context.Context, stopTimeout time.Duration) (bool, error) {
	if err := h.Start(ctx); err != nil {
		return false, err
	}

	h.logger.Info("Daemon running", "state", h.CurrentState())
	<-ctx.Done()
	h.logger.Info("Daemon stopping", "reason", context.Cause(ctx))

	return h.Stop(context.WithoutCancel(ctx), stopTimeout)
}

// BatchJob is the work of a batch run.
type BatchJob func(ctx context.Context) error

// RunBatchJob starts the host, runs job once, and stops the host whatever the
// job's outcome. It reports whether the job succeeded; a failed or cancelled
// job is returned as an error wrapping ErrBatchJobFailed or
// ErrBatchJobCancelled.
func (h *Host) RunBatchJob(ctx context.Context, job BatchJob, stopTimeout time.Duration) (bool, error) {
	if err := h.Start(ctx); err != nil {
		return false, err
	}

	act := h.begin("batch job")
	jobErr := h.runJob(ctx, job)
	if jobErr != nil {
		act.fail(jobErr)
	}
	act.end()

	stopped, stopErr := h.Stop(context.WithoutCancel(ctx), stopTimeout)
	if stopErr == nil && !stopped {
		h.logger.Warn("Host did not stop after batch job", "timeout", stopTimeout)
	}

	return jobErr == nil, errors.Join(jobErr, stopErr)
}

func (h *Host) runJob(ctx context.Context, job BatchJob) error {
	if job == nil {
		return fmt.Errorf("%w: no job", ErrBatchJobFailed)
	}

	err := safeCall(ctx, job)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded), ctx.Err() != nil:
		return fmt.Errorf("%w: %w", ErrBatchJobCancelled, err)
	default:
		return fmt.Errorf("%w: %w", ErrBatchJobFailed, err)
	}
}

// Dispose stops the host within the configured dispose timeout, takes it Down
// and marks it disposed. A stop that outlives the timeout finishes the
// teardown when it completes. Dispose is idempotent.
func (h *Host) Dispose() error {
	if h.disposed.Load() {
		return nil
	}

	ctx, release, err := h.lock.Acquire(context.Background())
	if err != nil {
		return fmt.Errorf("dispose: %w", err)
	}
	defer release()

	if h.disposed.Load() {
		return nil
	}

	act := h.begin("dispose")
	defer act.end()

	if h.machine.IsFaulted() {
		h.disposed.Store(true)
		h.releaseContainer()
		return nil
	}

	timeout := h.cfg.Timeouts.Dispose.AsDuration()
	stopped, err := h.stop(ctx, timeout, h.takeDown)
	h.disposed.Store(true)
	if err != nil {
		act.fail(err)
		return fmt.Errorf("dispose: %w", err)
	}
	if !stopped {
		h.logger.Warn("Dispose continues in the background", "timeout", timeout)
	}
	return nil
}

// Close implements io.Closer by disposing the host.
func (h *Host) Close() error {
	return h.Dispose()
}

// takeDown moves a stopped host to Down, releasing the container.
func (h *Host) takeDown(ctx context.Context) {
	switch h.CurrentState() {
	case StateConfigured, StateCompiledStopped:
		if err := h.drive(ctx, "dispose", TriggerUnload, StateDown); err != nil {
			h.logger.Error("Failed to take host down", "error", err)
		}
	case StateDown:
	default:
		h.logger.Warn("Host left running at dispose", "state", h.CurrentState())
	}
}

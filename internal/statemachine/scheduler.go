package statemachine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ExitFunc decides whether a run has reached its goal.
type ExitFunc[S comparable] func(state S) bool

// ErrorFunc handles an error raised while draining a trigger. Returning false
// stops the run and faults the machine.
type ErrorFunc[S comparable] func(state S, err error) bool

type queued[T comparable] struct {
	trigger  T
	feedback bool
}

// Scheduler owns the trigger queue of a Machine and drains it on the calling
// goroutine. Feedback triggers are always drained before cancellation is
// considered, so a run only ever stops in a state that was settled by its
// entry callback.
type Scheduler[S, T comparable] struct {
	machine *Machine[S, T]
	logger  *slog.Logger

	mu    sync.Mutex
	queue []queued[T]
}

// SchedulerOption configures a Scheduler.
type SchedulerOption[S, T comparable] func(*Scheduler[S, T])

// WithSchedulerLogHandler sets the slog handler for the scheduler.
func WithSchedulerLogHandler[S, T comparable](handler slog.Handler) SchedulerOption[S, T] {
	return func(s *Scheduler[S, T]) {
		if handler != nil {
			s.logger = slog.New(handler).WithGroup("statemachine.Scheduler")
		}
	}
}

// NewScheduler wraps machine with a trigger queue.
func NewScheduler[S, T comparable](machine *Machine[S, T], opts ...SchedulerOption[S, T]) *Scheduler[S, T] {
	s := &Scheduler[S, T]{
		machine: machine,
		logger:  slog.Default().WithGroup("statemachine.Scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Machine returns the wrapped state machine.
func (s *Scheduler[S, T]) Machine() *Machine[S, T] {
	return s.machine
}

// CurrentState returns the machine's current state.
func (s *Scheduler[S, T]) CurrentState() S {
	return s.machine.CurrentState()
}

// QueueTrigger appends an external trigger to the queue.
func (s *Scheduler[S, T]) QueueTrigger(trigger T) {
	s.push(queued[T]{trigger: trigger})
}

// Pending returns the number of queued triggers.
func (s *Scheduler[S, T]) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// push appends q. Feedback is placed behind earlier feedback but ahead of
// pending external triggers.
func (s *Scheduler[S, T]) push(q queued[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !q.feedback {
		s.queue = append(s.queue, q)
		return
	}
	at := 0
	for at < len(s.queue) && s.queue[at].feedback {
		at++
	}
	s.queue = append(s.queue, queued[T]{})
	copy(s.queue[at+1:], s.queue[at:])
	s.queue[at] = q
}

func (s *Scheduler[S, T]) pop() (queued[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return queued[T]{}, false
	}
	q := s.queue[0]
	s.queue = s.queue[1:]
	return q, true
}

func (s *Scheduler[S, T]) peekExternal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue) > 0 && !s.queue[0].feedback
}

func (s *Scheduler[S, T]) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = nil
}

// RunOnCurrentThread drains the queue until exit matches, the queue is empty,
// the context is done, or onError declines to continue. Triggers still pending
// when the run stops early are discarded. The returned state is the state the
// machine settled in.
//
// When the context is done, the run stops with ErrCancelled before the next
// external trigger is raised. When onError returns false the machine is forced
// into its fault state (if one is declared) and ErrFaulted is returned.
func (s *Scheduler[S, T]) RunOnCurrentThread(
	ctx context.Context,
	exit ExitFunc[S],
	onError ErrorFunc[S],
) (S, error) {
	var none T

	for {
		if s.peekExternal() && ctx.Err() != nil {
			state := s.machine.CurrentState()
			s.logger.Debug("Run cancelled", "state", state)
			s.clear()
			return state, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		}

		next, ok := s.pop()
		if !ok {
			return s.machine.CurrentState(), nil
		}

		feedback, err := s.machine.Raise(ctx, next.trigger)
		if err != nil {
			state := s.machine.CurrentState()
			s.logger.Error("Failed to raise trigger", "state", state, "trigger", next.trigger, "error", err)
			if onError == nil || !onError(state, err) {
				s.clear()
				return s.fault(state, err)
			}
			continue
		}

		if feedback != none {
			s.push(queued[T]{trigger: feedback, feedback: true})
		}

		state := s.machine.CurrentState()
		if exit != nil && exit(state) {
			if feedback != none {
				s.logger.Warn("Exit state reached with feedback pending", "state", state, "feedback", feedback)
			}
			s.clear()
			return state, nil
		}
	}
}

func (s *Scheduler[S, T]) fault(state S, cause error) (S, error) {
	if err := s.machine.Fault(); err != nil && !errors.Is(err, ErrNoFaultState) {
		return state, errors.Join(fmt.Errorf("%w: %w", ErrFaulted, cause), err)
	}
	return s.machine.CurrentState(), fmt.Errorf("%w: %w", ErrFaulted, cause)
}

// Package statemachine provides a declarative, trigger-driven finite state
// machine and a scheduler that drains trigger queues against it.
//
// A Machine is a table of declared states, (state, trigger) -> state
// transitions, and optional per-state entry callbacks. An entry callback runs
// synchronously when its state is entered and may answer with a feedback
// trigger. The zero value of the trigger type means "no feedback", so trigger
// enumerations should reserve their zero value for that purpose.
//
// The Machine itself owns no goroutines. Reading the current state is safe
// from any goroutine, but Raise must not be called concurrently.
package statemachine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// EntryFunc is invoked when its state is entered. A non-zero trigger result is
// fed back to the caller of Raise. A returned error is converted into the
// machine's failed trigger when one is configured.
type EntryFunc[T comparable] func(ctx context.Context) (T, error)

// TransitionFunc observes a completed transition.
type TransitionFunc[S, T comparable] func(from, to S, trigger T)

// Machine is a finite state machine over comparable states S and triggers T.
type Machine[S, T comparable] struct {
	mu      sync.RWMutex
	current S
	started bool

	states      map[S]struct{}
	transitions map[S]map[T]S
	entries     map[S]EntryFunc[T]

	initial    S
	hasInitial bool
	fault      S
	hasFault   bool

	failed    T
	hasFailed bool

	observers []TransitionFunc[S, T]
	logger    *slog.Logger
}

// Option configures a Machine.
type Option[S, T comparable] func(*Machine[S, T])

// WithFailedTrigger sets the trigger raised on behalf of an entry callback that
// returns an error or panics.
func WithFailedTrigger[S, T comparable](trigger T) Option[S, T] {
	return func(m *Machine[S, T]) {
		m.failed = trigger
		m.hasFailed = true
	}
}

// WithLogHandler sets the slog handler used for transition diagnostics.
func WithLogHandler[S, T comparable](handler slog.Handler) Option[S, T] {
	return func(m *Machine[S, T]) {
		if handler != nil {
			m.logger = slog.New(handler).WithGroup("statemachine.Machine")
		}
	}
}

// New creates an empty Machine. States and transitions must be declared before
// the first call to Raise.
func New[S, T comparable](opts ...Option[S, T]) *Machine[S, T] {
	m := &Machine[S, T]{
		states:      make(map[S]struct{}),
		transitions: make(map[S]map[T]S),
		entries:     make(map[S]EntryFunc[T]),
		logger:      slog.Default().WithGroup("statemachine.Machine"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Declare registers a state. Exactly one state must be declared as initial.
func (m *Machine[S, T]) Declare(state S, initial bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrSealed
	}
	if _, ok := m.states[state]; ok {
		return fmt.Errorf("%w: %v", ErrDuplicateState, state)
	}
	if initial {
		if m.hasInitial {
			return fmt.Errorf("%w: %v (existing %v)", ErrDuplicateInitialState, state, m.initial)
		}
		m.initial = state
		m.hasInitial = true
		m.current = state
	}
	m.states[state] = struct{}{}
	return nil
}

// DeclareFault marks an already declared state as the terminal fault state.
// The fault state must not have outgoing transitions.
func (m *Machine[S, T]) DeclareFault(state S) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrSealed
	}
	if _, ok := m.states[state]; !ok {
		return fmt.Errorf("%w: %v", ErrUndeclaredState, state)
	}
	if len(m.transitions[state]) > 0 {
		return fmt.Errorf("fault state %v must be terminal", state)
	}
	m.fault = state
	m.hasFault = true
	return nil
}

// DeclareTransition registers (state, trigger) -> next. Both states must be declared.
func (m *Machine[S, T]) DeclareTransition(state S, trigger T, next S) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrSealed
	}
	if _, ok := m.states[state]; !ok {
		return fmt.Errorf("%w: %v", ErrUndeclaredState, state)
	}
	if _, ok := m.states[next]; !ok {
		return fmt.Errorf("%w: %v", ErrUndeclaredState, next)
	}
	if m.hasFault && state == m.fault {
		return fmt.Errorf("fault state %v must be terminal", state)
	}

	row, ok := m.transitions[state]
	if !ok {
		row = make(map[T]S)
		m.transitions[state] = row
	}
	if _, exists := row[trigger]; exists {
		return &TransitionError[S, T]{State: state, Trigger: trigger, Err: ErrDuplicateTransition}
	}
	row[trigger] = next
	return nil
}

// SetEntryCallback sets the callback run when state is entered.
func (m *Machine[S, T]) SetEntryCallback(state S, fn EntryFunc[T]) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrSealed
	}
	if _, ok := m.states[state]; !ok {
		return fmt.Errorf("%w: %v", ErrUndeclaredState, state)
	}
	m.entries[state] = fn
	return nil
}

// OnTransition subscribes an observer invoked once per completed transition,
// before the entry callback of the new state runs.
func (m *Machine[S, T]) OnTransition(fn TransitionFunc[S, T]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// Validate reports configuration errors that can only be detected once the
// table is complete.
func (m *Machine[S, T]) Validate() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.hasInitial {
		return ErrNoInitialState
	}
	return nil
}

// CurrentState returns the state the machine is in.
func (m *Machine[S, T]) CurrentState() S {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// IsFaulted reports whether the machine sits in its declared fault state.
func (m *Machine[S, T]) IsFaulted() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hasFault && m.current == m.fault
}

// Raise fires trigger against the current state. An undeclared pair leaves the
// state untouched and returns a TransitionError wrapping ErrUndeclaredTransition.
// On success the returned trigger is the entry callback's feedback, or the
// zero trigger when there is none.
func (m *Machine[S, T]) Raise(ctx context.Context, trigger T) (T, error) {
	var none T

	m.mu.Lock()
	if !m.hasInitial {
		m.mu.Unlock()
		return none, ErrNoInitialState
	}
	m.started = true

	from := m.current
	next, ok := m.transitions[from][trigger]
	if !ok {
		m.mu.Unlock()
		return none, &TransitionError[S, T]{State: from, Trigger: trigger, Err: ErrUndeclaredTransition}
	}
	m.current = next
	entry := m.entries[next]
	observers := m.observers
	m.mu.Unlock()

	m.logger.Debug("Transition", "from", from, "to", next, "trigger", trigger)
	for _, observe := range observers {
		observe(from, next, trigger)
	}

	if entry == nil {
		return none, nil
	}

	feedback, err := m.runEntry(ctx, entry)
	if err == nil {
		return feedback, nil
	}
	if !m.hasFailed {
		return none, fmt.Errorf("entry callback of state %v failed: %w", next, err)
	}

	m.logger.Warn("Entry callback failed, raising failed trigger",
		"state", next, "trigger", m.failed, "error", err)
	return m.failed, nil
}

// Fault forces the machine into its declared fault state.
func (m *Machine[S, T]) Fault() error {
	var none T

	m.mu.Lock()
	if !m.hasFault {
		m.mu.Unlock()
		return ErrNoFaultState
	}
	from := m.current
	if from == m.fault {
		m.mu.Unlock()
		return nil
	}
	m.current = m.fault
	m.started = true
	observers := m.observers
	m.mu.Unlock()

	m.logger.Error("Forced into fault state", "from", from, "to", m.fault)
	for _, observe := range observers {
		observe(from, m.fault, none)
	}
	return nil
}

func (m *Machine[S, T]) runEntry(ctx context.Context, entry EntryFunc[T]) (feedback T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("entry callback panic: %v", r)
		}
	}()
	return entry(ctx)
}

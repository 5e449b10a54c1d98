package statemachine

import (
	"errors"
	"fmt"
)

var (
	ErrUndeclaredTransition  = errors.New("undeclared transition")
	ErrUndeclaredState       = errors.New("undeclared state")
	ErrDuplicateState        = errors.New("state already declared")
	ErrDuplicateTransition   = errors.New("transition already declared")
	ErrDuplicateInitialState = errors.New("initial state already declared")
	ErrNoInitialState        = errors.New("no initial state declared")
	ErrNoFaultState          = errors.New("no fault state declared")
	ErrSealed                = errors.New("state machine is already in use")

	// ErrCancelled is returned by the scheduler when the context is done
	// before the exit predicate matched.
	ErrCancelled = errors.New("trigger run cancelled")

	// ErrFaulted is returned by the scheduler when a run was stopped by
	// its error handler.
	ErrFaulted = errors.New("trigger run faulted")
)

// TransitionError describes a (state, trigger) pair that could not be resolved.
type TransitionError[S, T comparable] struct {
	State   S
	Trigger T
	Err     error
}

func (e *TransitionError[S, T]) Error() string {
	return fmt.Sprintf("%v: state %v, trigger %v", e.Err, e.State, e.Trigger)
}

func (e *TransitionError[S, T]) Unwrap() error {
	return e.Err
}

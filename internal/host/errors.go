package host

import (
	"errors"
	"fmt"
)

var (
	// ErrDisposed is returned by lifecycle calls made after Dispose.
	ErrDisposed = errors.New("microservice host is disposed")
	// ErrFaulted is returned once the host reached the Faulted state.
	ErrFaulted = errors.New("microservice host is faulted")
	// ErrNotReachedState means a lifecycle call stopped short of its target state.
	ErrNotReachedState = errors.New("microservice host did not reach required state")
	// ErrInvalidState is returned when a lifecycle call is not valid in the current state.
	ErrInvalidState = errors.New("invalid state for operation")
	ErrNilConfig    = errors.New("boot configuration is nil")

	ErrBatchJobFailed    = errors.New("batch job failed")
	ErrBatchJobCancelled = errors.New("batch job cancelled")

	ErrUnknownFeature   = errors.New("unknown feature")
	ErrDuplicateFeature = errors.New("feature already registered")
	ErrInvalidFeature   = errors.New("invalid feature registration")
	ErrComponentPanic   = errors.New("component panicked")
)

// StateError reports a lifecycle call that left the host short of the state it
// was driving toward. Cancelled distinguishes cooperative cancellation from a
// failed phase.
type StateError struct {
	Operation string
	Want      State
	Got       State
	Cancelled bool
	Cause     error
}

func (e *StateError) Error() string {
	reason := "failed"
	if e.Cancelled {
		reason = "cancelled"
	}
	msg := fmt.Sprintf("%s %s: %v: want %s, got %s", e.Operation, reason, ErrNotReachedState, e.Want, e.Got)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *StateError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrNotReachedState}
	}
	return []error{ErrNotReachedState, e.Cause}
}

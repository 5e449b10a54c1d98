// Package sequence implements revertible sequences: ordered lists of steps that
// run forward and, when a step fails, undo every unit of work that already
// completed in exact reverse order.
//
// A step is either a singleton (one perform, one optional revert) or a for-each
// step whose items are produced when the step runs, so a for-each step can
// iterate over a collection populated by earlier steps. The same declarations
// serve both directions: Perform drives a lifecycle phase forward, Revert tears
// it down again.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Func is the perform or revert action of a singleton step.
type Func func(ctx context.Context) error

// ItemFunc is the perform or revert action of a for-each step.
type ItemFunc[T any] func(ctx context.Context, item T, index int, isLast bool) error

// step is a declared unit of a sequence. run performs the step and records a
// revert unit for every piece of work that completed.
type step struct {
	name string
	run  func(ctx context.Context, record func(unit)) error
}

// unit is one completed perform, with the action that undoes it.
type unit struct {
	step   string
	index  int
	revert Func
}

// Sequence is an ordered list of revertible steps.
type Sequence struct {
	name   string
	logger *slog.Logger

	mu        sync.Mutex
	steps     []step
	completed []unit
}

// Option configures a Sequence.
type Option func(*Sequence)

// WithLogHandler sets the slog handler used to report revert failures.
func WithLogHandler(handler slog.Handler) Option {
	return func(s *Sequence) {
		if handler != nil {
			s.logger = slog.New(handler).WithGroup("sequence").With("sequence", s.name)
		}
	}
}

// WithLogger sets the logger used to report revert failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sequence) {
		if logger != nil {
			s.logger = logger.With("sequence", s.name)
		}
	}
}

// New creates an empty sequence.
func New(name string, opts ...Option) *Sequence {
	s := &Sequence{
		name:   name,
		logger: slog.Default().WithGroup("sequence").With("sequence", name),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the sequence name.
func (s *Sequence) Name() string {
	return s.name
}

// AddOnce appends a singleton step. revert may be nil.
func (s *Sequence) AddOnce(name string, perform, revert Func) {
	if revert == nil {
		revert = noop
	}
	s.add(step{
		name: name,
		run: func(ctx context.Context, record func(unit)) error {
			if err := call(func() error { return perform(ctx) }); err != nil {
				return &StepError{Sequence: s.name, Step: name, Index: -1, Err: err}
			}
			record(unit{step: name, index: -1, revert: revert})
			return nil
		},
	})
}

// AddForEach appends a for-each step to seq. items is evaluated when the step
// runs; revert may be nil. Reverting uses the items that were actually
// performed, never a fresh evaluation of items.
func AddForEach[T any](seq *Sequence, name string, items func() []T, perform, revert ItemFunc[T]) {
	seq.add(step{
		name: name,
		run: func(ctx context.Context, record func(unit)) error {
			list := items()
			for i, item := range list {
				isLast := i == len(list)-1
				if err := call(func() error { return perform(ctx, item, i, isLast) }); err != nil {
					return &StepError{Sequence: seq.name, Step: name, Index: i, Err: err}
				}
				undo := noop
				if revert != nil {
					undo = func(ctx context.Context) error {
						return revert(ctx, item, i, isLast)
					}
				}
				record(unit{step: name, index: i, revert: undo})
			}
			return nil
		},
	})
}

func (s *Sequence) add(st step) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps = append(s.steps, st)
}

// Completed returns the number of completed units that a Revert would undo.
func (s *Sequence) Completed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.completed)
}

// Perform runs every step in declaration order. When a step fails, the units
// completed so far are reverted in reverse order and the step's error is
// returned after the revert walk finishes. Revert failures on that path are
// logged only.
func (s *Sequence) Perform(ctx context.Context) error {
	s.mu.Lock()
	if len(s.completed) > 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAlreadyPerformed, s.name)
	}
	steps := make([]step, len(s.steps))
	copy(steps, s.steps)
	s.mu.Unlock()

	record := func(u unit) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.completed = append(s.completed, u)
	}

	for _, st := range steps {
		err := st.run(ctx, record)
		if err == nil {
			continue
		}

		s.logger.Warn("Step failed, reverting completed work",
			"step", st.name, "completed", s.Completed(), "error", err)
		if revertErr := s.Revert(ctx); revertErr != nil {
			s.logger.Error("Revert after failed step was incomplete", "error", revertErr)
		}
		return err
	}
	return nil
}

// Revert undoes every completed unit, last completed first. Every unit gets an
// undo attempt even when earlier undos fail; all failures are joined into the
// returned error. The sequence can be performed again afterwards.
func (s *Sequence) Revert(ctx context.Context) error {
	s.mu.Lock()
	completed := s.completed
	s.completed = nil
	s.mu.Unlock()

	var errs []error
	for i := len(completed) - 1; i >= 0; i-- {
		u := completed[i]
		if err := call(func() error { return u.revert(ctx) }); err != nil {
			s.logger.Error("Revert failed", "step", u.step, "index", u.index, "error", err)
			errs = append(errs, &StepError{Sequence: s.name, Step: u.step, Index: u.index, Err: err, Revert: true})
		}
	}
	return errors.Join(errs...)
}

func noop(context.Context) error { return nil }

func call(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return fn()
}

package statemachine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type light int

const (
	off light = iota
	warming
	on
	broken
)

type signal int

const (
	noSignal signal = iota
	flip
	ready
	fail
)

func newLight(t *testing.T, opts ...Option[light, signal]) *Machine[light, signal] {
	t.Helper()

	m := New(opts...)
	require.NoError(t, m.Declare(off, true))
	require.NoError(t, m.Declare(warming, false))
	require.NoError(t, m.Declare(on, false))
	require.NoError(t, m.Declare(broken, false))
	require.NoError(t, m.DeclareTransition(off, flip, warming))
	require.NoError(t, m.DeclareTransition(warming, ready, on))
	require.NoError(t, m.DeclareTransition(warming, fail, off))
	require.NoError(t, m.DeclareTransition(on, flip, off))
	require.NoError(t, m.DeclareFault(broken))
	return m
}

func TestDeclare(t *testing.T) {
	t.Parallel()

	t.Run("second initial state is rejected", func(t *testing.T) {
		m := New[light, signal]()
		require.NoError(t, m.Declare(off, true))
		err := m.Declare(on, true)
		require.ErrorIs(t, err, ErrDuplicateInitialState)
	})

	t.Run("duplicate state is rejected", func(t *testing.T) {
		m := New[light, signal]()
		require.NoError(t, m.Declare(off, true))
		require.ErrorIs(t, m.Declare(off, false), ErrDuplicateState)
	})

	t.Run("missing initial state", func(t *testing.T) {
		m := New[light, signal]()
		require.NoError(t, m.Declare(off, false))
		require.ErrorIs(t, m.Validate(), ErrNoInitialState)

		_, err := m.Raise(context.Background(), flip)
		require.ErrorIs(t, err, ErrNoInitialState)
	})

	t.Run("transition to undeclared state", func(t *testing.T) {
		m := New[light, signal]()
		require.NoError(t, m.Declare(off, true))
		require.ErrorIs(t, m.DeclareTransition(off, flip, on), ErrUndeclaredState)
	})

	t.Run("duplicate transition", func(t *testing.T) {
		m := newLight(t)
		require.ErrorIs(t, m.DeclareTransition(off, flip, on), ErrDuplicateTransition)
	})

	t.Run("fault state must be terminal", func(t *testing.T) {
		m := newLight(t)
		require.Error(t, m.DeclareTransition(broken, flip, off))
	})

	t.Run("declarations are sealed after first raise", func(t *testing.T) {
		m := newLight(t)
		_, err := m.Raise(context.Background(), flip)
		require.NoError(t, err)
		require.ErrorIs(t, m.Declare(light(99), false), ErrSealed)
	})
}

func TestRaise(t *testing.T) {
	t.Parallel()

	t.Run("undeclared pair leaves state untouched", func(t *testing.T) {
		m := newLight(t)
		for _, trig := range []signal{ready, fail, noSignal} {
			_, err := m.Raise(context.Background(), trig)
			require.ErrorIs(t, err, ErrUndeclaredTransition)
			assert.Equal(t, off, m.CurrentState())

			var terr *TransitionError[light, signal]
			require.ErrorAs(t, err, &terr)
			assert.Equal(t, off, terr.State)
			assert.Equal(t, trig, terr.Trigger)
		}
	})

	t.Run("entry callback feedback is returned", func(t *testing.T) {
		m := newLight(t)
		require.NoError(t, m.SetEntryCallback(warming, func(context.Context) (signal, error) {
			return ready, nil
		}))

		feedback, err := m.Raise(context.Background(), flip)
		require.NoError(t, err)
		assert.Equal(t, ready, feedback)
		assert.Equal(t, warming, m.CurrentState())
	})

	t.Run("entry error becomes failed trigger", func(t *testing.T) {
		m := newLight(t, WithFailedTrigger[light](fail))
		require.NoError(t, m.SetEntryCallback(warming, func(context.Context) (signal, error) {
			return noSignal, errors.New("bulb missing")
		}))

		feedback, err := m.Raise(context.Background(), flip)
		require.NoError(t, err)
		assert.Equal(t, fail, feedback)
	})

	t.Run("entry panic becomes failed trigger", func(t *testing.T) {
		m := newLight(t, WithFailedTrigger[light](fail))
		require.NoError(t, m.SetEntryCallback(warming, func(context.Context) (signal, error) {
			panic("filament")
		}))

		feedback, err := m.Raise(context.Background(), flip)
		require.NoError(t, err)
		assert.Equal(t, fail, feedback)
	})

	t.Run("entry error without failed trigger is returned", func(t *testing.T) {
		m := newLight(t)
		require.NoError(t, m.SetEntryCallback(warming, func(context.Context) (signal, error) {
			return noSignal, errors.New("bulb missing")
		}))

		_, err := m.Raise(context.Background(), flip)
		require.Error(t, err)
		assert.Equal(t, warming, m.CurrentState())
	})

	t.Run("observers see each transition", func(t *testing.T) {
		m := newLight(t)
		var seen []light
		m.OnTransition(func(from, to light, _ signal) {
			seen = append(seen, from, to)
		})

		_, err := m.Raise(context.Background(), flip)
		require.NoError(t, err)
		_, err = m.Raise(context.Background(), ready)
		require.NoError(t, err)

		assert.Equal(t, []light{off, warming, warming, on}, seen)
	})
}

func TestFault(t *testing.T) {
	t.Parallel()

	m := newLight(t)
	require.NoError(t, m.Fault())
	assert.Equal(t, broken, m.CurrentState())
	assert.True(t, m.IsFaulted())

	_, err := m.Raise(context.Background(), flip)
	require.ErrorIs(t, err, ErrUndeclaredTransition)
	assert.Equal(t, broken, m.CurrentState())

	require.ErrorIs(t, New[light, signal]().Fault(), ErrNoFaultState)
}

package finitestate

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	m, err := New(slog.Default().Handler())
	require.NoError(t, err)
	assert.Equal(t, StatusNew, m.GetState())
}

func TestRunnerTransitions(t *testing.T) {
	t.Parallel()

	t.Run("normal lifecycle", func(t *testing.T) {
		m, err := New(slog.Default().Handler())
		require.NoError(t, err)

		for _, next := range []string{StatusBooting, StatusRunning, StatusStopping, StatusStopped} {
			require.NoError(t, m.Transition(next), "transition to %s", next)
			assert.Equal(t, next, m.GetState())
		}
	})

	t.Run("cannot skip booting", func(t *testing.T) {
		m, err := New(slog.Default().Handler())
		require.NoError(t, err)

		assert.False(t, m.TransitionBool(StatusRunning))
		assert.Equal(t, StatusNew, m.GetState())
	})

	t.Run("boot failure", func(t *testing.T) {
		m, err := New(slog.Default().Handler())
		require.NoError(t, err)

		require.NoError(t, m.Transition(StatusBooting))
		require.NoError(t, m.Transition(StatusError))
		assert.Equal(t, StatusError, m.GetState())
	})

	t.Run("conditional transition", func(t *testing.T) {
		m, err := New(slog.Default().Handler())
		require.NoError(t, err)

		require.Error(t, m.TransitionIfCurrentState(StatusBooting, StatusRunning))
		require.NoError(t, m.Transition(StatusBooting))
		require.NoError(t, m.TransitionIfCurrentState(StatusBooting, StatusRunning))
	})
}

func TestGetStateChan(t *testing.T) {
	t.Parallel()

	m, err := New(slog.Default().Handler())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	ch := m.GetStateChan(ctx)
	select {
	case s := <-ch:
		assert.Equal(t, StatusNew, s)
	case <-time.After(time.Second):
		t.Fatal("no initial state")
	}

	require.NoError(t, m.Transition(StatusBooting))
	select {
	case s := <-ch:
		assert.Equal(t, StatusBooting, s)
	case <-time.After(time.Second):
		t.Fatal("no state update")
	}
}

package server

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/atlanticdynamic/microhost/internal/config"
	"github.com/atlanticdynamic/microhost/internal/container"
	"github.com/atlanticdynamic/microhost/internal/host"
	"github.com/atlanticdynamic/microhost/internal/host/mocks"
	"github.com/atlanticdynamic/microhost/internal/logging"
	"github.com/atlanticdynamic/microhost/internal/server/finitestate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type componentFeature struct {
	host.FeatureLoaderBase
	component *mocks.RecordingComponent
}

func (f *componentFeature) Name() string { return "component" }

func (f *componentFeature) ContributeComponents(_ context.Context, _ *container.Container, b *container.Builder) error {
	b.Register(f.component.String(), f.component)
	return nil
}

func newTestRunner(t *testing.T, mutate func(*config.BootConfig), component *mocks.RecordingComponent) (*Runner, *host.Host) {
	t.Helper()

	cfg := config.NewDefault("runner-test")
	if mutate != nil {
		mutate(cfg)
	}

	handler := logging.SetupHandlerText("error", io.Discard)
	opts := []host.Option{host.WithLogHandler(handler)}
	if component != nil {
		opts = append(opts, host.WithFeatureLoaders(&componentFeature{component: component}))
	}
	h, err := host.New(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Dispose() })

	runner, err := NewRunner(h, WithLogHandler(handler))
	require.NoError(t, err)
	return runner, h
}

func runAsync(ctx context.Context, r *Runner) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- r.Run(ctx)
	}()
	return errCh
}

func TestNewRunner(t *testing.T) {
	t.Parallel()

	t.Run("nil host", func(t *testing.T) {
		_, err := NewRunner(nil)
		require.ErrorIs(t, err, ErrNilHost)
	})

	t.Run("defaults", func(t *testing.T) {
		runner, h := newTestRunner(t, nil, nil)
		assert.Equal(t, h.Config().Timeouts.Stop.AsDuration(), runner.stopTimeout)
		assert.Equal(t, finitestate.StatusNew, runner.GetState())
		assert.False(t, runner.IsRunning())
		assert.Equal(t, "server.Runner(runner-test)", runner.String())
	})

	t.Run("stop timeout option", func(t *testing.T) {
		h, err := host.New(config.NewDefault("opts"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = h.Dispose() })

		runner, err := NewRunner(h, WithStopTimeout(time.Second))
		require.NoError(t, err)
		assert.Equal(t, time.Second, runner.stopTimeout)
	})
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	t.Run("runs until context is cancelled", func(t *testing.T) {
		journal := &mocks.Journal{}
		runner, h := newTestRunner(t, nil, mocks.NewRecordingComponent("svc", journal))

		ctx, cancel := context.WithCancel(t.Context())
		errCh := runAsync(ctx, runner)

		require.Eventually(t, runner.IsRunning, time.Second, 10*time.Millisecond)
		assert.Equal(t, host.StateActive, h.CurrentState())

		cancel()
		select {
		case err := <-errCh:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("runner did not stop")
		}

		assert.Equal(t, finitestate.StatusStopped, runner.GetState())
		assert.Equal(t, host.StateCompiledStopped, h.CurrentState())
		assert.Contains(t, journal.Entries(), "svc.MayUnload")
	})

	t.Run("standby only", func(t *testing.T) {
		runner, h := newTestRunner(t, func(c *config.BootConfig) { c.Mode.Clustered = true }, nil)

		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()
		errCh := runAsync(ctx, runner)

		require.Eventually(t, runner.IsRunning, time.Second, 10*time.Millisecond)
		assert.Equal(t, host.StateStandby, h.CurrentState())

		runner.Stop()
		select {
		case err := <-errCh:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("runner did not stop")
		}
		assert.Equal(t, finitestate.StatusStopped, runner.GetState())
	})

	t.Run("start failure", func(t *testing.T) {
		boom := errors.New("boom")
		component := mocks.NewRecordingComponent("svc", &mocks.Journal{}).FailOn("Load", boom)
		runner, h := newTestRunner(t, nil, component)

		err := runner.Run(t.Context())
		require.Error(t, err)
		require.ErrorIs(t, err, host.ErrNotReachedState)
		assert.Equal(t, finitestate.StatusError, runner.GetState())
		assert.Equal(t, host.StateCompiledStopped, h.CurrentState())
	})
}

func TestRunner_Stop(t *testing.T) {
	t.Parallel()

	t.Run("before run", func(t *testing.T) {
		runner, _ := newTestRunner(t, nil, nil)
		runner.Stop()
		assert.Equal(t, finitestate.StatusNew, runner.GetState())
	})

	t.Run("state channel reports shutdown", func(t *testing.T) {
		runner, _ := newTestRunner(t, nil, nil)

		stateCtx, stateCancel := context.WithCancel(t.Context())
		defer stateCancel()
		stateCh := runner.GetStateChan(stateCtx)

		seenCh := make(chan []string, 1)
		go func() {
			var seen []string
			for s := range stateCh {
				seen = append(seen, s)
				if s == finitestate.StatusStopped {
					break
				}
			}
			seenCh <- seen
		}()

		errCh := runAsync(t.Context(), runner)
		require.Eventually(t, runner.IsRunning, time.Second, 10*time.Millisecond)
		runner.Stop()
		require.NoError(t, <-errCh)

		var seen []string
		select {
		case seen = <-seenCh:
		case <-time.After(2 * time.Second):
			t.Fatal("shutdown states not delivered")
		}
		assert.Equal(t, []string{
			finitestate.StatusNew,
			finitestate.StatusBooting,
			finitestate.StatusRunning,
			finitestate.StatusStopping,
			finitestate.StatusStopped,
		}, seen)
	})
}

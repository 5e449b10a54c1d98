package finitestate

import (
	"context"
	"log/slog"
	"time"

	"github.com/robbyt/go-fsm"
)

const (
	StatusNew      = fsm.StatusNew
	StatusBooting  = fsm.StatusBooting
	StatusRunning  = fsm.StatusRunning
	StatusStopping = fsm.StatusStopping
	StatusStopped  = fsm.StatusStopped
	StatusError    = fsm.StatusError
	StatusUnknown  = fsm.StatusUnknown
)

// broadcastTimeout bounds how long a state change waits for a slow subscriber.
const broadcastTimeout = 5 * time.Second

// RunnerTransitions are the status changes a supervised host runner may make.
// A runner is started once; there is no reload cycle.
var RunnerTransitions = map[string][]string{
	StatusNew:      {StatusBooting, StatusError},
	StatusBooting:  {StatusRunning, StatusStopping, StatusError},
	StatusRunning:  {StatusStopping, StatusError},
	StatusStopping: {StatusStopped, StatusError},
	StatusStopped:  {StatusNew, StatusError},
	StatusError:    {StatusNew, StatusStopping, StatusStopped},
}

// Machine is the status machine a runner reports through supervisor.Stateable.
type Machine interface {
	Transition(state string) error
	TransitionBool(state string) bool
	TransitionIfCurrentState(currentState, newState string) error
	SetState(state string) error
	GetState() string

	// GetStateChan emits the current status and every later change until ctx
	// is cancelled.
	GetStateChan(ctx context.Context) <-chan string
}

// RunnerFSM delivers status changes synchronously so subscribers see the
// final Stopping and Stopped statuses during shutdown.
type RunnerFSM struct {
	*fsm.Machine
}

func (m *RunnerFSM) GetStateChan(ctx context.Context) <-chan string {
	return m.GetStateChanWithOptions(ctx, fsm.WithSyncTimeout(broadcastTimeout))
}

// New creates a status machine in StatusNew using RunnerTransitions.
func New(handler slog.Handler) (Machine, error) {
	machine, err := fsm.New(handler, StatusNew, RunnerTransitions)
	if err != nil {
		return nil, err
	}
	return &RunnerFSM{Machine: machine}, nil
}

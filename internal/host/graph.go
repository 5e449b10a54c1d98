package host

import (
	"fmt"

	"github.com/atlanticdynamic/microhost/internal/statemachine"
)

// Transition is one edge of the host state graph.
type Transition struct {
	From    State
	Trigger Trigger
	To      State
}

var transitions = []Transition{
	{StateDown, TriggerConfigure, StateConfiguring},
	{StateConfiguring, TriggerOK, StateConfigured},
	{StateConfiguring, TriggerFailed, StateDown},
	{StateConfigured, TriggerCompile, StateCompiling},
	{StateConfigured, TriggerUnload, StateDown},
	{StateCompiling, TriggerOK, StateCompiledStopped},
	{StateCompiling, TriggerFailed, StateDown},
	{StateCompiledStopped, TriggerLoad, StateLoading},
	{StateCompiledStopped, TriggerUnload, StateDown},
	{StateLoading, TriggerOK, StateStandby},
	{StateLoading, TriggerFailed, StateCompiledStopped},
	{StateStandby, TriggerActivate, StateActivating},
	{StateStandby, TriggerUnload, StateUnloading},
	{StateActivating, TriggerOK, StateActive},
	{StateActivating, TriggerFailed, StateUnloading},
	{StateActive, TriggerDeactivate, StateDeactivating},
	{StateDeactivating, TriggerOK, StateStandby},
	{StateDeactivating, TriggerFailed, StateUnloading},
	{StateUnloading, TriggerDone, StateCompiledStopped},
}

// Transitions returns the host state graph.
func Transitions() []Transition {
	return append([]Transition(nil), transitions...)
}

// newMachine declares the host state graph and binds the phase functions of h
// to their states.
func newMachine(h *Host) (*statemachine.Machine[State, Trigger], error) {
	m := statemachine.New(
		statemachine.WithFailedTrigger[State](TriggerFailed),
		statemachine.WithLogHandler[State, Trigger](h.logger.Handler()),
	)

	for _, s := range States() {
		if err := m.Declare(s, s == StateDown); err != nil {
			return nil, err
		}
	}
	if err := m.DeclareFault(StateFaulted); err != nil {
		return nil, err
	}
	for _, t := range transitions {
		if err := m.DeclareTransition(t.From, t.Trigger, t.To); err != nil {
			return nil, err
		}
	}

	entries := map[State]statemachine.EntryFunc[Trigger]{
		StateDown:         h.enterDown,
		StateConfiguring:  h.phase("configure", h.configure),
		StateCompiling:    h.phase("compile", h.compile),
		StateLoading:      h.phase("load", h.loadSeq.Perform),
		StateActivating:   h.phase("activate", h.activateSeq.Perform),
		StateDeactivating: h.phase("deactivate", h.activateSeq.Revert),
		StateUnloading:    h.enterUnloading,
	}
	for s, fn := range entries {
		if err := m.SetEntryCallback(s, fn); err != nil {
			return nil, fmt.Errorf("entry callback for %s: %w", s, err)
		}
	}

	return m, m.Validate()
}

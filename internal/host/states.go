package host

// State is an operating phase of the host.
type State uint8

const (
	StateDown State = iota
	StateConfiguring
	StateConfigured
	StateCompiling
	StateCompiledStopped
	StateLoading
	StateStandby
	StateActivating
	StateActive
	StateDeactivating
	StateUnloading
	StateFaulted
)

var stateNames = [...]string{
	StateDown:            "Down",
	StateConfiguring:     "Configuring",
	StateConfigured:      "Configured",
	StateCompiling:       "Compiling",
	StateCompiledStopped: "CompiledStopped",
	StateLoading:         "Loading",
	StateStandby:         "Standby",
	StateActivating:      "Activating",
	StateActive:          "Active",
	StateDeactivating:    "Deactivating",
	StateUnloading:       "Unloading",
	StateFaulted:         "Faulted",
}

// States lists every state in declaration order.
func States() []State {
	states := make([]State, 0, len(stateNames))
	for s := range stateNames {
		states = append(states, State(s))
	}
	return states
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

// Transient reports whether s is a state the host only passes through while a
// phase runs.
func (s State) Transient() bool {
	switch s {
	case StateConfiguring, StateCompiling, StateLoading, StateActivating, StateDeactivating, StateUnloading:
		return true
	default:
		return false
	}
}

// Trigger is an event that moves the host between states. The zero value is
// reserved for "no feedback".
type Trigger uint8

const (
	TriggerNone Trigger = iota
	TriggerConfigure
	TriggerCompile
	TriggerLoad
	TriggerActivate
	TriggerDeactivate
	TriggerUnload
	TriggerOK
	TriggerFailed
	TriggerDone
)

var triggerNames = [...]string{
	TriggerNone:       "None",
	TriggerConfigure:  "Configure",
	TriggerCompile:    "Compile",
	TriggerLoad:       "Load",
	TriggerActivate:   "Activate",
	TriggerDeactivate: "Deactivate",
	TriggerUnload:     "Unload",
	TriggerOK:         "OK",
	TriggerFailed:     "Failed",
	TriggerDone:       "Done",
}

func (t Trigger) String() string {
	if int(t) < len(triggerNames) {
		return triggerNames[t]
	}
	return "Unknown"
}

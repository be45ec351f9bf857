package sim

import (
	"fmt"
	"strings"

	"github.com/hector-sim/hector-core/sim/simerr"
)

// State is a position in the component lifecycle:
//
//	Uninitialized → Initialized → ReadyToRun → Running → ShutDown
type State int

const (
	Uninitialized State = iota
	Initialized
	ReadyToRun
	Running
	ShutDown
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Initialized:
		return "Initialized"
	case ReadyToRun:
		return "ReadyToRun"
	case Running:
		return "Running"
	case ShutDown:
		return "ShutDown"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Lifecycle guards lifecycle transitions. Embed it in a component and call Require or
// Transition at the top of each lifecycle method.
type Lifecycle struct {
	Owner string
	state State
}

func (l *Lifecycle) State() State { return l.state }

// Require fails with LifecycleError unless the current state is one of allowed.
func (l *Lifecycle) Require(op string, allowed ...State) error {
	for _, s := range allowed {
		if l.state == s {
			return nil
		}
	}
	return simerr.New(simerr.LifecycleError, "%s: %s not allowed in state %s (want %s)",
		l.Owner, op, l.state, joinStates(allowed))
}

// Transition moves to `to` if the current state is one of from.
func (l *Lifecycle) Transition(op string, to State, from ...State) error {
	if err := l.Require(op, from...); err != nil {
		return err
	}
	l.state = to
	return nil
}

// AfterInit lists the states in which data access and visiting are valid.
var AfterInit = []State{Initialized, ReadyToRun, Running}

func joinStates(states []State) string {
	names := make([]string, len(states))
	for i, s := range states {
		names[i] = s.String()
	}
	return strings.Join(names, "|")
}

package bench

import "fmt"

// State is the phase of a run.
type State int

const (
	StateIdle State = iota
	StateResetting
	StateStreaming
	StateFlushing
	StateAligning
	StateComparing
	StatePass
	StateFail
)

var stateNames = [...]string{
	"IDLE",
	"RESETTING",
	"STREAMING",
	"FLUSHING",
	"ALIGNING",
	"COMPARING",
	"PASS",
	"FAIL",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}

	return stateNames[s]
}

// Terminal tells whether the run is over.
func (s State) Terminal() bool {
	return s == StatePass || s == StateFail
}

// canFail lists the states a run may fail from.
func (s State) canFail() bool {
	switch s {
	case StateStreaming, StateFlushing, StateAligning, StateComparing:
		return true
	default:
		return false
	}
}

// stateMachine only moves forward: to the next state in order, or to FAIL
// from a state that can fail.
type stateMachine struct {
	state   State
	history []State
}

func newStateMachine() stateMachine {
	return stateMachine{state: StateIdle, history: []State{StateIdle}}
}

func (m *stateMachine) to(next State) {
	from := m.state

	legal := next == from+1 && !from.Terminal() && next != StateFail
	if next == StateFail {
		legal = from.canFail()
	}

	if !legal {
		panic(fmt.Sprintf("illegal state transition %s -> %s", from, next))
	}

	m.state = next
	m.history = append(m.history, next)
}

func (m *stateMachine) names() []string {
	out := make([]string, len(m.history))
	for i, s := range m.history {
		out[i] = s.String()
	}

	return out
}

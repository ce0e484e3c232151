package pipeline

import "fmt"

// State is a run lifecycle state.
type State string

const (
	StateIdle       State = "idle"
	StateLocating   State = "locating"
	StateExtracting State = "extracting"
	StateReady      State = "ready"
	StateConverting State = "converting"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

var transitions = map[State][]State{
	StateIdle:       {StateLocating},
	StateLocating:   {StateExtracting, StateReady, StateFailed},
	StateExtracting: {StateReady, StateFailed},
	StateReady:      {StateConverting},
	StateConverting: {StateDone, StateFailed},
}

// Next returns to if the transition from s is allowed.
func (s State) Next(to State) (State, error) {
	for _, allowed := range transitions[s] {
		if allowed == to {
			return to, nil
		}
	}
	return s, fmt.Errorf("invalid state transition %s -> %s", s, to)
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

func (s State) String() string {
	return string(s)
}

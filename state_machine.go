package wfdsource

import "fmt"

// State is a session's position in the M1-M16 handshake, per spec §4.5.
type State int

// Session states.
const (
	StateInit State = iota
	StateM1Sent
	StateM2Received
	StateM3Sent
	StateM3Received
	StateM4Sent
	StateM4Received
	StateReady
	StateSetup
	StatePlaying
	StatePaused
	StateTeardown
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateM1Sent:
		return "M1Sent"
	case StateM2Received:
		return "M2Received"
	case StateM3Sent:
		return "M3Sent"
	case StateM3Received:
		return "M3Received"
	case StateM4Sent:
		return "M4Sent"
	case StateM4Received:
		return "M4Received"
	case StateReady:
		return "Ready"
	case StateSetup:
		return "Setup"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	case StateTeardown:
		return "Teardown"
	default:
		return "Unknown"
	}
}

// transitions lists, for each state, the states it may legally move to.
// A transition not listed here is a programmer error, not a runtime
// condition a caller needs to recover from.
var transitions = map[State][]State{
	StateInit:        {StateM1Sent},
	StateM1Sent:      {StateM2Received},
	StateM2Received:  {StateM3Sent},
	StateM3Sent:      {StateM3Received},
	StateM3Received:  {StateM4Sent},
	StateM4Sent:      {StateM4Received},
	StateM4Received:  {StateReady},
	StateReady:       {StateSetup, StateTeardown},
	StateSetup:       {StatePlaying, StateTeardown},
	StatePlaying:     {StatePaused, StateTeardown},
	StatePaused:      {StatePlaying, StateTeardown},
	StateTeardown:    {},
}

// advance moves cur to next if the transition is legal, else returns an
// error naming both states - callers use this rather than assigning state
// directly so an out-of-order message can never silently desynchronize
// the session from the wire.
func advance(cur, next State) (State, error) {
	for _, allowed := range transitions[cur] {
		if allowed == next {
			return next, nil
		}
	}
	return cur, fmt.Errorf("wfdsource: illegal transition %s -> %s", cur, next)
}

// Package cycle orchestrates hero media playback: playlist order,
// lifecycle state, event coordination, and the handoff between asset
// loading, waypoint generation, and animation playback.
package cycle

import "time"

// State is the lifecycle state of a cycling session. All mutation goes
// through Machine.transition; everything else sees read-only snapshots.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateCycling
	StatePaused
	StateError
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateCycling:
		return "cycling"
	case StatePaused:
		return "paused"
	case StateError:
		return "error"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// canTransition encodes the lifecycle graph. Disposed is terminal;
// Error is re-enterable toward Loading on the next tick.
func canTransition(from, to State) bool {
	if from == StateDisposed {
		return false
	}
	switch to {
	case StateDisposed:
		return true
	case StateError:
		return true
	case StateLoading:
		return from == StateIdle || from == StateError
	case StateReady:
		return from == StateLoading
	case StateCycling:
		return from == StateReady || from == StatePaused
	case StatePaused:
		return from == StateCycling
	default:
		return false
	}
}

// Snapshot is the read-only view of the machine state handed to
// observers.
type Snapshot struct {
	State        State
	Visible      bool
	AtHome       bool
	ActiveIndex  int
	ActiveItemID string
	LastActive   time.Time
}

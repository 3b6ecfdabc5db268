package model

import "fmt"

// ActionState is the lifecycle state of one action within a run.
//
// Transitions are Pending -> Executing -> Succeeded | Failed. The last two
// are terminal.
type ActionState int

const (
	// StatePending is the state before request construction starts.
	StatePending ActionState = iota

	// StateExecuting covers request construction and the HTTP round trip.
	StateExecuting

	// StateSucceeded means a response with a 2xx status was received.
	StateSucceeded

	// StateFailed means a non-2xx status, a transport error or an
	// unsupported method.
	StateFailed
)

// String returns a human-readable representation of the state.
func (s ActionState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateExecuting:
		return "executing"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transition can happen.
func (s ActionState) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s ActionState) CanTransitionTo(next ActionState) bool {
	switch s {
	case StatePending:
		return next == StateExecuting
	case StateExecuting:
		return next.IsTerminal()
	default:
		return false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s ActionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *ActionState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "pending":
		*s = StatePending
	case "executing":
		*s = StateExecuting
	case "succeeded":
		*s = StateSucceeded
	case "failed":
		*s = StateFailed
	default:
		return fmt.Errorf("unknown action state %q", text)
	}
	return nil
}

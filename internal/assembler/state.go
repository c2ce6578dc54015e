// SPDX-License-Identifier: MPL-2.0

package assembler

import (
	"errors"
	"fmt"
)

const (
	// StateIdle indicates the run was created and nothing was loaded yet.
	StateIdle State = iota
	// StateLoading indicates descriptors are being registered.
	StateLoading
	// StateSealed indicates the store is read-only.
	StateSealed
	// StateGraphBuilt indicates every requested target has a BuildGraph.
	StateGraphBuilt
	// StateValidated indicates every graph passed the checker and the
	// target compatibility rules.
	StateValidated
	// StatePlanned indicates every target has a BuildPlan.
	StatePlanned
	// StateDone is terminal: plans were handed to the caller.
	StateDone
	// StateFailed is terminal: some phase returned an error.
	StateFailed
)

var (
	// ErrInvalidState is returned when a State value is not one of the defined run states.
	ErrInvalidState = errors.New("invalid run state")

	// ErrInvalidTransition is the sentinel wrapped by InvalidTransitionError.
	ErrInvalidTransition = errors.New("invalid run state transition")
)

type (
	// State is the phase of a planning run.
	State int32

	// InvalidStateError is returned when a State value is not recognized.
	InvalidStateError struct {
		Value State
	}

	// InvalidTransitionError is returned when a run is asked to move to a
	// state that does not follow its current one.
	InvalidTransitionError struct {
		From State
		To   State
	}
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateSealed:
		return "sealed"
	case StateGraphBuilt:
		return "graph_built"
	case StateValidated:
		return "validated"
	case StatePlanned:
		return "planned"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid run state %d", e.Value)
}

// Unwrap returns ErrInvalidState for errors.Is() compatibility.
func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move planning run from %s to %s", e.From, e.To)
}

// Unwrap returns ErrInvalidTransition for errors.Is() compatibility.
func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// Validate returns nil if s is a defined run state.
func (s State) Validate() error {
	if s < StateIdle || s > StateFailed {
		return &InvalidStateError{Value: s}
	}
	return nil
}

// IsTerminal returns true for Done and Failed.
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}

// Next returns the state that follows s on the success path. Terminal
// states have no successor.
func (s State) Next() (State, bool) {
	if s.IsTerminal() || s.Validate() != nil {
		return s, false
	}
	return s + 1, true
}

// CanTransition reports whether a run in state s may move to next: either
// the following state on the success path, or Failed from any non-terminal
// state.
func (s State) CanTransition(next State) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StateFailed {
		return true
	}
	following, ok := s.Next()
	return ok && following == next
}

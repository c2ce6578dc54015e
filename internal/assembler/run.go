// SPDX-License-Identifier: MPL-2.0

package assembler

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Run tracks one planning run through its states. Reads of the current
// state are lock-free; transitions are serialized.
//
// A Run is single-use: once Done or Failed, create a new one.
type Run struct {
	state atomic.Int32

	mu      sync.Mutex
	lastErr error
	history []State
}

// NewRun returns a Run in StateIdle.
func NewRun() *Run {
	r := &Run{history: []State{StateIdle}}
	r.state.Store(int32(StateIdle))
	return r
}

// State returns the current state.
func (r *Run) State() State { return State(r.state.Load()) }

// Err returns the error that moved the run to Failed, or nil.
func (r *Run) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// History returns every state the run has been in, oldest first.
func (r *Run) History() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]State, len(r.history))
	copy(out, r.history)
	return out
}

// Transition moves the run to next. Use Fail to enter StateFailed.
func (r *Run) Transition(next State) error {
	if next == StateFailed {
		return fmt.Errorf("use Fail to enter %s: %w", StateFailed, ErrInvalidTransition)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.State()
	if !cur.CanTransition(next) {
		return &InvalidTransitionError{From: cur, To: next}
	}
	r.state.Store(int32(next))
	r.history = append(r.history, next)
	return nil
}

// Fail records err, moves the run to Failed and returns err so callers can
// write `return run.Fail(err)`. Failing a terminal run only returns err.
func (r *Run) Fail(err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.State().IsTerminal() {
		return err
	}
	r.lastErr = err
	r.state.Store(int32(StateFailed))
	r.history = append(r.history, StateFailed)
	return err
}

// Advance moves the run forward until it reaches target, so a caller that
// already holds a sealed store can enter the pipeline at StateSealed.
func (r *Run) Advance(target State) error {
	for r.State() != target {
		next, ok := r.State().Next()
		if !ok || next > target {
			return &InvalidTransitionError{From: r.State(), To: target}
		}
		if err := r.Transition(next); err != nil {
			return err
		}
	}
	return nil
}

// SPDX-License-Identifier: MPL-2.0

package assembler

import (
	"errors"
	"slices"
	"testing"
)

func TestRun_HappyPath(t *testing.T) {
	t.Parallel()

	r := NewRun()
	for _, s := range []State{StateLoading, StateSealed, StateGraphBuilt, StateValidated, StatePlanned, StateDone} {
		if err := r.Transition(s); err != nil {
			t.Fatalf("Transition(%s) error = %v", s, err)
		}
	}
	if r.State() != StateDone {
		t.Errorf("State() = %s, want done", r.State())
	}
	if got := r.History(); len(got) != 7 || got[0] != StateIdle {
		t.Errorf("History() = %v", got)
	}
}

func TestRun_InvalidTransition(t *testing.T) {
	t.Parallel()

	r := NewRun()
	err := r.Transition(StatePlanned)
	var transErr *InvalidTransitionError
	if !errors.As(err, &transErr) {
		t.Fatalf("Transition() error = %v, want InvalidTransitionError", err)
	}
	if transErr.From != StateIdle || transErr.To != StatePlanned {
		t.Errorf("InvalidTransitionError = %+v", transErr)
	}
	if r.State() != StateIdle {
		t.Errorf("state changed after invalid transition: %s", r.State())
	}
	if err := r.Transition(StateFailed); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Transition(Failed) error = %v, want ErrInvalidTransition", err)
	}
}

func TestRun_Fail(t *testing.T) {
	t.Parallel()

	r := NewRun()
	if err := r.Advance(StateSealed); err != nil {
		t.Fatal(err)
	}
	cause := errors.New("boom")
	if err := r.Fail(cause); err != cause {
		t.Errorf("Fail() returned %v, want the cause", err)
	}
	if r.State() != StateFailed || r.Err() != cause {
		t.Errorf("State() = %s, Err() = %v", r.State(), r.Err())
	}
	if err := r.Transition(StateGraphBuilt); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("transition out of Failed error = %v", err)
	}

	// A second failure keeps the first cause.
	_ = r.Fail(errors.New("later"))
	if r.Err() != cause {
		t.Errorf("Err() = %v, want first cause", r.Err())
	}
}

func TestRun_Advance(t *testing.T) {
	t.Parallel()

	r := NewRun()
	if err := r.Advance(StateSealed); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	want := []State{StateIdle, StateLoading, StateSealed}
	if got := r.History(); !slices.Equal(got, want) {
		t.Errorf("History() = %v, want %v", got, want)
	}
	if err := r.Advance(StateIdle); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Advance() backwards error = %v", err)
	}
}

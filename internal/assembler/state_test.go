// SPDX-License-Identifier: MPL-2.0

package assembler

import (
	"errors"
	"testing"
)

func TestStateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "idle"},
		{StateLoading, "loading"},
		{StateSealed, "sealed"},
		{StateGraphBuilt, "graph_built"},
		{StateValidated, "validated"},
		{StatePlanned, "planned"},
		{StateDone, "done"},
		{StateFailed, "failed"},
		{State(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestStateValidate(t *testing.T) {
	t.Parallel()

	if err := StatePlanned.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if err := State(-1).Validate(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Validate() error = %v, want ErrInvalidState", err)
	}
}

func TestStateCanTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to State
		want     bool
	}{
		{StateIdle, StateLoading, true},
		{StateLoading, StateSealed, true},
		{StateSealed, StateGraphBuilt, true},
		{StateGraphBuilt, StateValidated, true},
		{StateValidated, StatePlanned, true},
		{StatePlanned, StateDone, true},
		{StateIdle, StateSealed, false},
		{StateValidated, StateGraphBuilt, false},
		{StateSealed, StateFailed, true},
		{StateIdle, StateFailed, true},
		{StateDone, StateFailed, false},
		{StateFailed, StateIdle, false},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			t.Parallel()
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Errorf("CanTransition() = %v, want %v", got, tt.want)
			}
		})
	}
}

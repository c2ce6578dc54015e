// SPDX-License-Identifier: MPL-2.0

package planerr

import (
	"errors"
	"fmt"
	"slices"
	"testing"
)

func TestErrorsUnwrapToSentinels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err      PlanningError
		sentinel error
		kind     Kind
	}{
		{&DuplicateNameError{Name: "Core"}, ErrDuplicateName, KindDuplicateName},
		{&UnknownModuleError{Name: "Core"}, ErrUnknownModule, KindUnknownModule},
		{&UnknownTargetError{Name: "Game"}, ErrUnknownTarget, KindUnknownTarget},
		{&UnresolvedDependencyError{Module: "GameModule", Dependency: "UnknownLib"}, ErrUnresolvedDependency, KindUnresolvedDependency},
		{&CycleError{Path: []string{"A", "B", "A"}}, ErrCycle, KindCycle},
		{&InvalidEdgeError{Consumer: "A", Dependency: "Game", Problem: EdgeIntoTarget}, ErrInvalidEdge, KindInvalidEdge},
		{&TargetModuleMismatchError{Target: "Editor", Module: "GameOnly"}, ErrTargetModuleMismatch, KindTargetModuleMismatch},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			t.Parallel()

			wrapped := fmt.Errorf("planning: %w", tt.err)
			if !errors.Is(wrapped, tt.sentinel) {
				t.Errorf("errors.Is(%v, sentinel) = false", wrapped)
			}
			pe, ok := As(wrapped)
			if !ok {
				t.Fatal("As() found no PlanningError")
			}
			if pe.Kind() != tt.kind {
				t.Errorf("Kind() = %s, want %s", pe.Kind(), tt.kind)
			}
			if len(pe.Names()) == 0 {
				t.Error("Names() is empty")
			}
		})
	}
}

func TestCycleErrorMessage(t *testing.T) {
	t.Parallel()

	err := &CycleError{Path: []string{"A", "B", "A"}}
	if got, want := err.Error(), "dependency cycle detected: A -> B -> A"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestDuplicateNameErrorNames(t *testing.T) {
	t.Parallel()

	err := &DuplicateNameError{Name: "Core", ExistingSource: "a.toml", IncomingSource: "b.yaml"}
	if got := err.Names(); !slices.Equal(got, []string{"Core", "a.toml", "b.yaml"}) {
		t.Errorf("Names() = %v", got)
	}
	if got, want := err.Error(), `duplicate name "Core": declared in a.toml and b.yaml`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestTargetModuleMismatchMessage(t *testing.T) {
	t.Parallel()

	err := &TargetModuleMismatchError{
		Target:       "BastionLastStandEditor",
		TargetType:   "editor",
		Module:       "GameOnlyNet",
		Availability: "game_only",
		Chain:        []string{"BastionLastStand", "GameOnlyNet"},
	}
	want := `editor target "BastionLastStandEditor" cannot contain game_only module "GameOnlyNet" (via BastionLastStand -> GameOnlyNet)`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q\nwant      %q", got, want)
	}
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"cycle", "Unresolved-Dependency", " invalid_edge "} {
		if _, ok := ParseKind(in); !ok {
			t.Errorf("ParseKind(%q) failed", in)
		}
	}
	if _, ok := ParseKind("timeout"); ok {
		t.Error("ParseKind(timeout) succeeded")
	}
}

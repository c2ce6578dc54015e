// SPDX-License-Identifier: MPL-2.0

package check

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/modgraph/modgraph/internal/depgraph"
	"github.com/modgraph/modgraph/internal/planerr"
	dt "github.com/modgraph/modgraph/internal/testutil/descriptortest"
	"github.com/modgraph/modgraph/pkg/descriptor"
)

func build(t *testing.T, roots []string, descs ...descriptor.Descriptor) *depgraph.BuildGraph {
	t.Helper()
	g, err := depgraph.Build(context.Background(), dt.SealedStore(t, descs...), roots)
	if err != nil {
		t.Fatalf("depgraph.Build() error = %v", err)
	}
	return g
}

func TestValidate_Acyclic(t *testing.T) {
	t.Parallel()

	g := build(t, []string{"Editor"},
		dt.Module("Core"),
		dt.Module("Engine", dt.Public("Core")),
		dt.Module("Editor", dt.Public("Engine")),
	)
	v, err := Validate(g)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if v.Graph() != g {
		t.Error("Graph() does not return the validated graph")
	}
}

func TestValidate_CyclePath(t *testing.T) {
	t.Parallel()

	// A privately depends on B, B publicly depends on A.
	g := build(t, []string{"A"},
		dt.Module("A", dt.Private("B")),
		dt.Module("B", dt.Public("A")),
	)
	_, err := Validate(g)
	var cycleErr *planerr.CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("Validate() error = %v, want CycleError", err)
	}
	if !slices.Equal(cycleErr.Path, []string{"A", "B", "A"}) {
		t.Errorf("Path = %v, want [A B A]", cycleErr.Path)
	}
}

func TestValidate_LongCycle(t *testing.T) {
	t.Parallel()

	g := build(t, []string{"Game"},
		dt.Module("Game", dt.Public("Engine")),
		dt.Module("Engine", dt.Public("Render")),
		dt.Module("Render", dt.Private("Physics")),
		dt.Module("Physics", dt.Public("Engine")),
	)
	_, err := Validate(g)
	var cycleErr *planerr.CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("Validate() error = %v, want CycleError", err)
	}
	want := []string{"Engine", "Render", "Physics", "Engine"}
	if !slices.Equal(cycleErr.Path, want) {
		t.Errorf("Path = %v, want %v", cycleErr.Path, want)
	}
}

func TestValidate_InvalidEdges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		roots   []string
		descs   []descriptor.Descriptor
		want    planerr.EdgeProblem
		wantDep string
	}{
		{
			name:  "edge into target",
			roots: []string{"UnrealMCP"},
			descs: []descriptor.Descriptor{
				dt.Module("UnrealMCP", dt.Private("BastionLastStandEditor")),
				dt.Target("BastionLastStandEditor", descriptor.TargetEditor, "UnrealMCP"),
			},
			want:    planerr.EdgeIntoTarget,
			wantDep: "BastionLastStandEditor",
		},
		{
			name:    "self edge",
			roots:   []string{"Core"},
			descs:   []descriptor.Descriptor{dt.Module("Core", dt.Private("Core"))},
			want:    planerr.EdgeSelf,
			wantDep: "Core",
		},
		{
			name:  "public and private",
			roots: []string{"Game"},
			descs: []descriptor.Descriptor{
				dt.Module("Engine"),
				dt.Module("Game", dt.Public("Engine"), dt.Private("Engine")),
			},
			want:    planerr.EdgeConflictingVisibility,
			wantDep: "Engine",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Validate(build(t, tt.roots, tt.descs...))
			var edgeErr *planerr.InvalidEdgeError
			if !errors.As(err, &edgeErr) {
				t.Fatalf("Validate() error = %v, want InvalidEdgeError", err)
			}
			if edgeErr.Problem != tt.want || edgeErr.Dependency != tt.wantDep {
				t.Errorf("InvalidEdgeError = %+v, want problem %q dependency %q", edgeErr, tt.want, tt.wantDep)
			}
		})
	}
}

func TestValidate_EdgeProblemsBeforeCycles(t *testing.T) {
	t.Parallel()

	g := build(t, []string{"A"},
		dt.Module("A", dt.Private("B")),
		dt.Module("B", dt.Public("A"), dt.Private("Tool")),
		dt.Target("Tool", descriptor.TargetProgram, "A"),
	)
	_, err := Validate(g)
	if !errors.Is(err, planerr.ErrInvalidEdge) {
		t.Errorf("Validate() error = %v, want ErrInvalidEdge", err)
	}

	problems := Diagnose(g)
	if len(problems) != 2 {
		t.Fatalf("Diagnose() = %v, want 2 problems", problems)
	}
	if !errors.Is(problems[0], planerr.ErrInvalidEdge) || !errors.Is(problems[1], planerr.ErrCycle) {
		t.Errorf("Diagnose() = %v", problems)
	}
}

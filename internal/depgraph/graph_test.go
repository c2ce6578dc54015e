// SPDX-License-Identifier: MPL-2.0

package depgraph

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/modgraph/modgraph/internal/planerr"
	dt "github.com/modgraph/modgraph/internal/testutil/descriptortest"
	"github.com/modgraph/modgraph/pkg/descriptor"
)

func TestBuild_RequiresSealedStore(t *testing.T) {
	t.Parallel()

	s := dt.OpenStore(t, dt.Module("Core"))
	if _, err := Build(context.Background(), s, []string{"Core"}); !errors.Is(err, ErrStoreNotSealed) {
		t.Errorf("Build() error = %v, want ErrStoreNotSealed", err)
	}
}

func TestBuild_ExplicitEdges(t *testing.T) {
	t.Parallel()

	s := dt.SealedStore(t,
		dt.Module("Core"),
		dt.Module("CoreUObject", dt.Public("Core")),
		dt.Module("Engine", dt.Public("Core", "CoreUObject")),
		dt.Module("Slate"),
		dt.Module("Game", dt.Public("Engine", "Core"), dt.Private("Slate", "Slate")),
		dt.Module("Unreachable"),
	)

	g, err := Build(context.Background(), s, []string{"Game"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if got, want := g.Modules(), []string{"Core", "CoreUObject", "Engine", "Game", "Slate"}; !slices.Equal(got, want) {
		t.Errorf("Modules() = %v, want %v", got, want)
	}
	want := []descriptor.DependencyEdge{
		{Consumer: "Game", Dependency: "Core", Visibility: descriptor.VisibilityPublic},
		{Consumer: "Game", Dependency: "Engine", Visibility: descriptor.VisibilityPublic},
		{Consumer: "Game", Dependency: "Slate", Visibility: descriptor.VisibilityPrivate},
	}
	var got []descriptor.DependencyEdge
	for _, e := range g.ExplicitEdges() {
		if e.Consumer == "Game" {
			got = append(got, e)
		}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("explicit edges mismatch (-want +got):\n%s", diff)
	}
	if got := g.ResolvedDeps("Game"); !slices.Equal(got, []string{"Core", "CoreUObject", "Engine", "Slate"}) {
		t.Errorf("ResolvedDeps(Game) = %v", got)
	}
	if g.Contains("Unreachable") {
		t.Error("graph contains a module not reachable from the roots")
	}
}

func TestBuild_PublicPropagation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		modules      []descriptor.ModuleDescriptor
		consumer     string
		wantResolved []string
	}{
		{
			name: "public dependency propagates",
			modules: []descriptor.ModuleDescriptor{
				dt.Module("B"),
				dt.Module("A", dt.Public("B")),
				dt.Module("C", dt.Private("A")),
			},
			consumer:     "C",
			wantResolved: []string{"A", "B"},
		},
		{
			name: "private dependency does not propagate",
			modules: []descriptor.ModuleDescriptor{
				dt.Module("B"),
				dt.Module("A", dt.Private("B")),
				dt.Module("C", dt.Public("A")),
			},
			consumer:     "C",
			wantResolved: []string{"A"},
		},
		{
			name: "propagates through public chains",
			modules: []descriptor.ModuleDescriptor{
				dt.Module("Core"),
				dt.Module("Engine", dt.Public("Core")),
				dt.Module("UnrealEd", dt.Public("Engine")),
				dt.Module("UnrealMCP", dt.Private("UnrealEd")),
			},
			consumer:     "UnrealMCP",
			wantResolved: []string{"Core", "Engine", "UnrealEd"},
		},
		{
			name: "chain stops at a private link",
			modules: []descriptor.ModuleDescriptor{
				dt.Module("Json"),
				dt.Module("Core", dt.Private("Json")),
				dt.Module("Engine", dt.Public("Core")),
				dt.Module("Game", dt.Public("Engine")),
			},
			consumer:     "Game",
			wantResolved: []string{"Core", "Engine"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			descs := make([]descriptor.Descriptor, len(tt.modules))
			for i, m := range tt.modules {
				descs[i] = m
			}
			g, err := Build(context.Background(), dt.SealedStore(t, descs...), []string{tt.consumer})
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if diff := cmp.Diff(tt.wantResolved, g.ResolvedDeps(tt.consumer)); diff != "" {
				t.Errorf("ResolvedDeps(%s) mismatch (-want +got):\n%s", tt.consumer, diff)
			}
		})
	}
}

func TestBuild_ImplicitEdgesAreMarked(t *testing.T) {
	t.Parallel()

	s := dt.SealedStore(t,
		dt.Module("B"),
		dt.Module("A", dt.Public("B")),
		dt.Module("C", dt.Public("A")),
	)
	g, err := Build(context.Background(), s, []string{"C"})
	if err != nil {
		t.Fatal(err)
	}
	want := []descriptor.DependencyEdge{
		{Consumer: "C", Dependency: "B", Visibility: descriptor.VisibilityPrivate, Implicit: true},
	}
	if diff := cmp.Diff(want, g.ImplicitEdges()); diff != "" {
		t.Errorf("ImplicitEdges() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_UnresolvedDependency(t *testing.T) {
	t.Parallel()

	s := dt.SealedStore(t,
		dt.Module("GameModule", dt.Private("UnknownLib")),
		dt.Target("Game", descriptor.TargetGame, "GameModule"),
	)
	g, err := Build(context.Background(), s, []string{"GameModule"})
	if g != nil {
		t.Error("Build() returned a partial graph")
	}
	var unresolved *planerr.UnresolvedDependencyError
	if !errors.As(err, &unresolved) {
		t.Fatalf("Build() error = %v, want UnresolvedDependencyError", err)
	}
	if unresolved.Module != "GameModule" || unresolved.Dependency != "UnknownLib" {
		t.Errorf("error = %+v", unresolved)
	}
}

func TestBuild_TargetReferenceRecorded(t *testing.T) {
	t.Parallel()

	s := dt.SealedStore(t,
		dt.Module("Plugin", dt.Private("Editor")),
		dt.Target("Editor", descriptor.TargetEditor, "Plugin"),
	)
	g, err := Build(context.Background(), s, []string{"Plugin"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	refs := g.TargetRefs()
	if len(refs) != 1 || refs[0].Dependency != "Editor" {
		t.Errorf("TargetRefs() = %v", refs)
	}
	if g.Contains("Editor") {
		t.Error("target was added as a module node")
	}
}

func TestBuild_CyclicInputTerminates(t *testing.T) {
	t.Parallel()

	s := dt.SealedStore(t,
		dt.Module("A", dt.Private("B")),
		dt.Module("B", dt.Public("A")),
	)
	g, err := Build(context.Background(), s, []string{"A"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := g.ResolvedDeps("A"); !slices.Equal(got, []string{"B"}) {
		t.Errorf("ResolvedDeps(A) = %v", got)
	}
	if cycle := g.DAG().FindCycle(); !slices.Equal(cycle, []string{"A", "B", "A"}) {
		t.Errorf("FindCycle() = %v", cycle)
	}
}

func TestBuild_UnknownRoot(t *testing.T) {
	t.Parallel()

	_, err := Build(context.Background(), dt.SealedStore(t), []string{"Nope"})
	if !errors.Is(err, planerr.ErrUnknownModule) {
		t.Errorf("Build() error = %v, want ErrUnknownModule", err)
	}
}

func TestBuild_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, dt.SealedStore(t, dt.Module("Core")), []string{"Core"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Build() error = %v, want context.Canceled", err)
	}
}

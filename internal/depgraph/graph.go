// SPDX-License-Identifier: MPL-2.0

// Package depgraph turns the descriptors reachable from a set of root modules
// into a BuildGraph: explicit edges from the declared public and private
// lists plus the implicit edges produced by public propagation.
package depgraph

import (
	"context"
	"errors"
	"slices"

	"github.com/modgraph/modgraph/internal/dag"
	"github.com/modgraph/modgraph/internal/planerr"
	"github.com/modgraph/modgraph/internal/store"
	"github.com/modgraph/modgraph/pkg/descriptor"
)

// ErrStoreNotSealed is returned when Build is given an open store.
var ErrStoreNotSealed = errors.New("descriptor store must be sealed before building a graph")

type (
	// BuildGraph is the dependency graph of one root set. It is not
	// guaranteed acyclic or consistent until it passes the checker.
	BuildGraph struct {
		roots   []string
		modules map[string]descriptor.ModuleDescriptor
		// explicit and implicit edges keyed by consumer, each slice sorted.
		explicit map[string][]descriptor.DependencyEdge
		implicit map[string][]descriptor.DependencyEdge
		// targetRefs are declared dependencies that name a target.
		targetRefs []descriptor.DependencyEdge
	}

	edgeKey struct {
		consumer, dependency string
		visibility           descriptor.Visibility
	}
)

// Build walks every module reachable from roots through public and private
// declarations and returns the resulting graph. A declared name that is
// neither a module nor a target fails the build with
// UnresolvedDependencyError; no partial graph is returned.
func Build(ctx context.Context, s *store.Store, roots []string) (*BuildGraph, error) {
	if !s.Sealed() {
		return nil, ErrStoreNotSealed
	}

	g := &BuildGraph{
		modules:  make(map[string]descriptor.ModuleDescriptor),
		explicit: make(map[string][]descriptor.DependencyEdge),
		implicit: make(map[string][]descriptor.DependencyEdge),
	}
	g.roots = slices.Clone(roots)
	slices.Sort(g.roots)
	g.roots = slices.Compact(g.roots)

	seenEdges := make(map[edgeKey]struct{})
	var visit func(name string) error
	visit = func(name string) error {
		if _, ok := g.modules[name]; ok {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		mod, err := s.Module(name)
		if err != nil {
			return err
		}
		g.modules[name] = mod

		for _, edge := range mod.Declared() {
			key := edgeKey{edge.Consumer, edge.Dependency, edge.Visibility}
			if _, dup := seenEdges[key]; dup {
				continue
			}
			seenEdges[key] = struct{}{}

			switch {
			case s.IsModule(edge.Dependency):
				g.explicit[name] = append(g.explicit[name], edge)
				if err := visit(edge.Dependency); err != nil {
					return err
				}
			case s.IsTarget(edge.Dependency):
				g.targetRefs = append(g.targetRefs, edge)
			default:
				return &planerr.UnresolvedDependencyError{Module: name, Dependency: edge.Dependency}
			}
		}
		return nil
	}

	for _, root := range g.roots {
		if err := visit(root); err != nil {
			return nil, err
		}
	}

	for consumer := range g.explicit {
		slices.SortFunc(g.explicit[consumer], descriptor.CompareEdges)
	}
	slices.SortFunc(g.targetRefs, descriptor.CompareEdges)
	g.propagate()
	return g, nil
}

// propagate adds an implicit edge C -> M for every module M exported by a
// direct dependency of C through a chain of public edges, unless C already
// declares M. Private edges never propagate.
func (g *BuildGraph) propagate() {
	exports := make(map[string][]string, len(g.modules))
	for _, consumer := range g.Modules() {
		declared := make(map[string]struct{})
		for _, e := range g.explicit[consumer] {
			declared[e.Dependency] = struct{}{}
		}

		added := make(map[string]struct{})
		for _, e := range g.explicit[consumer] {
			exported, ok := exports[e.Dependency]
			if !ok {
				exported = g.publicClosure(e.Dependency)
				exports[e.Dependency] = exported
			}
			for _, m := range exported {
				if m == consumer {
					continue
				}
				if _, ok := declared[m]; ok {
					continue
				}
				if _, ok := added[m]; ok {
					continue
				}
				added[m] = struct{}{}
				g.implicit[consumer] = append(g.implicit[consumer], descriptor.DependencyEdge{
					Consumer:   consumer,
					Dependency: m,
					Visibility: descriptor.VisibilityPrivate,
					Implicit:   true,
				})
			}
		}
		slices.SortFunc(g.implicit[consumer], descriptor.CompareEdges)
	}
}

// publicClosure returns the modules reachable from name through public
// edges only, excluding name itself unless a cycle leads back to it.
func (g *BuildGraph) publicClosure(name string) []string {
	seen := map[string]struct{}{}
	queue := []string{name}
	var out []string
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, e := range g.explicit[n] {
			if e.Visibility != descriptor.VisibilityPublic {
				continue
			}
			if _, ok := seen[e.Dependency]; ok {
				continue
			}
			seen[e.Dependency] = struct{}{}
			out = append(out, e.Dependency)
			queue = append(queue, e.Dependency)
		}
	}
	slices.Sort(out)
	return out
}

// Roots returns the deduplicated root modules, sorted.
func (g *BuildGraph) Roots() []string { return slices.Clone(g.roots) }

// Modules returns every module in the graph, sorted.
func (g *BuildGraph) Modules() []string {
	names := make([]string, 0, len(g.modules))
	for name := range g.modules {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Module returns the descriptor of a module in the graph.
func (g *BuildGraph) Module(name string) (descriptor.ModuleDescriptor, bool) {
	m, ok := g.modules[name]
	return m, ok
}

// Contains reports whether name is part of the graph.
func (g *BuildGraph) Contains(name string) bool {
	_, ok := g.modules[name]
	return ok
}

// ExplicitEdges returns the declared module-to-module edges, sorted.
func (g *BuildGraph) ExplicitEdges() []descriptor.DependencyEdge {
	return g.collect(g.explicit)
}

// ImplicitEdges returns the edges added by public propagation, sorted.
func (g *BuildGraph) ImplicitEdges() []descriptor.DependencyEdge {
	return g.collect(g.implicit)
}

// Edges returns explicit and implicit edges together, sorted.
func (g *BuildGraph) Edges() []descriptor.DependencyEdge {
	edges := append(g.ExplicitEdges(), g.ImplicitEdges()...)
	slices.SortFunc(edges, descriptor.CompareEdges)
	return edges
}

// EdgesFrom returns the explicit and implicit edges of one consumer, sorted.
func (g *BuildGraph) EdgesFrom(consumer string) []descriptor.DependencyEdge {
	edges := append(slices.Clone(g.explicit[consumer]), g.implicit[consumer]...)
	slices.SortFunc(edges, descriptor.CompareEdges)
	return edges
}

// TargetRefs returns declared dependencies that name a target, sorted.
func (g *BuildGraph) TargetRefs() []descriptor.DependencyEdge {
	return slices.Clone(g.targetRefs)
}

// ResolvedDeps returns every module consumer depends on, explicitly or
// through public propagation, sorted.
func (g *BuildGraph) ResolvedDeps(consumer string) []string {
	var deps []string
	for _, e := range g.explicit[consumer] {
		deps = append(deps, e.Dependency)
	}
	for _, e := range g.implicit[consumer] {
		deps = append(deps, e.Dependency)
	}
	slices.Sort(deps)
	return slices.Compact(deps)
}

// DAG returns the explicit module edges as a dag.Graph. Implicit edges are
// left out: each one shortcuts an explicit path, so they change neither
// cycles nor layering.
func (g *BuildGraph) DAG() *dag.Graph {
	d := dag.New()
	for name := range g.modules {
		d.AddNode(name)
	}
	for consumer, edges := range g.explicit {
		for _, e := range edges {
			d.AddEdge(consumer, e.Dependency)
		}
	}
	return d
}

func (g *BuildGraph) collect(byConsumer map[string][]descriptor.DependencyEdge) []descriptor.DependencyEdge {
	var edges []descriptor.DependencyEdge
	for _, consumer := range g.Modules() {
		edges = append(edges, byConsumer[consumer]...)
	}
	return edges
}

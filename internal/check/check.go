// SPDX-License-Identifier: MPL-2.0

// Package check validates a BuildGraph before it is planned. Edge
// consistency is checked first, then acyclicity.
package check

import (
	"github.com/modgraph/modgraph/internal/depgraph"
	"github.com/modgraph/modgraph/internal/planerr"
)

// ValidatedGraph is a BuildGraph that passed Validate: it is a DAG, has no
// self edges, no edges into targets and no conflicting visibility. Only
// Validate can construct one.
type ValidatedGraph struct {
	graph *depgraph.BuildGraph
}

// Validate checks g and wraps it as a ValidatedGraph. The first problem
// found is returned.
func Validate(g *depgraph.BuildGraph) (*ValidatedGraph, error) {
	if problems := edgeProblems(g); len(problems) > 0 {
		return nil, problems[0]
	}
	if cycle := g.DAG().FindCycle(); cycle != nil {
		return nil, &planerr.CycleError{Path: cycle}
	}
	return &ValidatedGraph{graph: g}, nil
}

// Diagnose runs every check and returns all problems instead of stopping at
// the first: edge problems in edge order, then the first cycle found.
func Diagnose(g *depgraph.BuildGraph) []error {
	problems := edgeProblems(g)
	if cycle := g.DAG().FindCycle(); cycle != nil {
		problems = append(problems, &planerr.CycleError{Path: cycle})
	}
	return problems
}

// Graph returns the underlying graph.
func (v *ValidatedGraph) Graph() *depgraph.BuildGraph { return v.graph }

func edgeProblems(g *depgraph.BuildGraph) []error {
	var problems []error
	for _, ref := range g.TargetRefs() {
		problems = append(problems, &planerr.InvalidEdgeError{
			Consumer:   ref.Consumer,
			Dependency: ref.Dependency,
			Problem:    planerr.EdgeIntoTarget,
		})
	}

	// Edges are sorted by consumer, dependency, visibility, so a pair
	// declared with both visibilities sits in adjacent slots.
	edges := g.ExplicitEdges()
	for i, e := range edges {
		twin := i > 0 && edges[i-1].Consumer == e.Consumer && edges[i-1].Dependency == e.Dependency
		switch {
		case twin:
			problems = append(problems, &planerr.InvalidEdgeError{
				Consumer:   e.Consumer,
				Dependency: e.Dependency,
				Problem:    planerr.EdgeConflictingVisibility,
			})
		case e.Consumer == e.Dependency:
			problems = append(problems, &planerr.InvalidEdgeError{
				Consumer:   e.Consumer,
				Dependency: e.Dependency,
				Problem:    planerr.EdgeSelf,
			})
		}
	}
	return problems
}

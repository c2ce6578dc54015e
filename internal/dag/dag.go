// SPDX-License-Identifier: MPL-2.0

// Package dag provides the directed graph algorithms the planner needs:
// cycle detection with a full cycle path, longest-path layering, topological
// ordering and shortest paths. Every result is deterministic: ties are
// broken by node name, never by map iteration or insertion order.
package dag

import (
	"fmt"
	"slices"
	"strings"
)

type (
	// CycleError indicates that the graph contains a cycle. Cycle starts and
	// ends with the same node, e.g. [A B A].
	CycleError struct {
		Cycle []string
	}

	// Graph is a directed graph keyed by node name. An edge from A to B
	// means "A depends on B": B has to be built before A.
	Graph struct {
		// succ maps each node to the set of nodes it depends on.
		succ  map[string]map[string]struct{}
		nodes map[string]struct{}
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		succ:  make(map[string]map[string]struct{}),
		nodes: make(map[string]struct{}),
	}
}

// AddNode adds a node to the graph. If the node already exists, this is a no-op.
func (g *Graph) AddNode(name string) {
	g.nodes[name] = struct{}{}
}

// AddEdge records that from depends on to. Both nodes are added if missing
// and repeated edges collapse into one.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	deps, ok := g.succ[from]
	if !ok {
		deps = make(map[string]struct{})
		g.succ[from] = deps
	}
	deps[to] = struct{}{}
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Nodes returns every node, sorted.
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.nodes))
	for n := range g.nodes {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Successors returns the nodes name depends on, sorted.
func (g *Graph) Successors(name string) []string {
	deps := g.succ[name]
	out := make([]string, 0, len(deps))
	for d := range deps {
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}

// FindCycle runs a depth-first search from every node in name order and
// returns the first cycle it closes, or nil when the graph is acyclic.
func (g *Graph) FindCycle() []string {
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[string]int, len(g.nodes))
	var stack []string

	var visit func(n string) []string
	visit = func(n string) []string {
		state[n] = inProgress
		stack = append(stack, n)
		for _, dep := range g.Successors(n) {
			switch state[dep] {
			case inProgress:
				start := slices.Index(stack, dep)
				cycle := slices.Clone(stack[start:])
				return append(cycle, dep)
			case unvisited:
				if cycle := visit(dep); cycle != nil {
					return cycle
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[n] = done
		return nil
	}

	for _, n := range g.Nodes() {
		if state[n] != unvisited {
			continue
		}
		if cycle := visit(n); cycle != nil {
			return cycle
		}
	}
	return nil
}

// Layers partitions the nodes into stages. Stage 0 holds nodes without
// dependencies; every other node sits one stage after its deepest
// dependency. Names inside a stage are sorted. Returns CycleError if the
// graph is not acyclic.
func (g *Graph) Layers() ([][]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	// remaining counts unplaced dependencies; dependents is the reverse adjacency.
	remaining := make(map[string]int, len(g.nodes))
	dependents := make(map[string][]string, len(g.nodes))
	for n := range g.nodes {
		remaining[n] = len(g.succ[n])
		for dep := range g.succ[n] {
			dependents[dep] = append(dependents[dep], n)
		}
	}

	var current []string
	for n, count := range remaining {
		if count == 0 {
			current = append(current, n)
		}
	}

	var layers [][]string
	placed := 0
	for len(current) > 0 {
		slices.Sort(current)
		layers = append(layers, current)
		placed += len(current)

		var next []string
		for _, n := range current {
			for _, consumer := range dependents[n] {
				remaining[consumer]--
				if remaining[consumer] == 0 {
					next = append(next, consumer)
				}
			}
		}
		current = next
	}

	if placed != len(g.nodes) {
		cycle := g.FindCycle()
		return nil, &CycleError{Cycle: cycle}
	}
	return layers, nil
}

// TopologicalSort returns the nodes dependencies first: the stages of
// Layers concatenated.
func (g *Graph) TopologicalSort() ([]string, error) {
	layers, err := g.Layers()
	if err != nil {
		return nil, err
	}
	var order []string
	for _, layer := range layers {
		order = append(order, layer...)
	}
	return order, nil
}

// Reachable returns every node reachable from the given start nodes,
// including the start nodes themselves, sorted.
func (g *Graph) Reachable(from ...string) []string {
	seen := make(map[string]struct{})
	queue := slices.Clone(from)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		queue = append(queue, g.Successors(n)...)
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// ShortestPath returns the shortest dependency path from any of the start
// nodes to target, both ends included. Start nodes are tried in sorted order
// and neighbours are expanded in name order, so the result is stable.
// Returns nil when target is unreachable.
func (g *Graph) ShortestPath(from []string, target string) []string {
	starts := slices.Clone(from)
	slices.Sort(starts)

	parent := make(map[string]string)
	seen := make(map[string]struct{})
	var queue []string
	for _, s := range starts {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		queue = append(queue, s)
	}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n == target {
			path := []string{n}
			for {
				p, ok := parent[path[0]]
				if !ok {
					return path
				}
				path = append([]string{p}, path...)
			}
		}
		for _, dep := range g.Successors(n) {
			if _, ok := seen[dep]; ok {
				continue
			}
			seen[dep] = struct{}{}
			parent[dep] = n
			queue = append(queue, dep)
		}
	}
	return nil
}

// SPDX-License-Identifier: MPL-2.0

// Package assembler turns targets into build plans. For each target it
// resolves the root modules, builds and validates the dependency graph,
// enforces the target/module compatibility rules and plans the stages.
//
// Several targets are planned concurrently over the same sealed store. Each
// phase runs to completion for every target before the run advances, and the
// error reported for a failed phase is the one of the first failing target in
// name order, so failures are as deterministic as plans.
package assembler

import (
	"context"
	"log/slog"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/modgraph/modgraph/internal/check"
	"github.com/modgraph/modgraph/internal/depgraph"
	"github.com/modgraph/modgraph/internal/planerr"
	"github.com/modgraph/modgraph/internal/planner"
	"github.com/modgraph/modgraph/internal/store"
	"github.com/modgraph/modgraph/pkg/descriptor"
)

type (
	// Assembler plans targets registered in a sealed store.
	Assembler struct {
		store       *store.Store
		defaults    descriptor.BuildSettings
		parallelism int
		logger      *slog.Logger
	}

	// Option configures an Assembler.
	Option func(*Assembler)

	// job carries one target through the pipeline phases.
	job struct {
		target    descriptor.TargetDescriptor
		graph     *depgraph.BuildGraph
		validated *check.ValidatedGraph
		plan      *planner.BuildPlan
	}
)

// WithDefaults sets the global build settings. Target settings override them
// field by field; unset fields fall back to descriptor.DefaultBuildSettings.
func WithDefaults(s descriptor.BuildSettings) Option {
	return func(a *Assembler) { a.defaults = s.Merge(descriptor.DefaultBuildSettings()) }
}

// WithParallelism limits how many targets are processed at once. Values
// below 1 are ignored.
func WithParallelism(n int) Option {
	return func(a *Assembler) {
		if n >= 1 {
			a.parallelism = n
		}
	}
}

// WithLogger sets the logger used for per-target progress messages.
func WithLogger(l *slog.Logger) Option {
	return func(a *Assembler) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Assembler over s.
func New(s *store.Store, opts ...Option) *Assembler {
	a := &Assembler{
		store:       s,
		defaults:    descriptor.DefaultBuildSettings(),
		parallelism: runtime.GOMAXPROCS(0),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble plans a single target over a sealed store with the given global
// settings.
func Assemble(ctx context.Context, target descriptor.TargetDescriptor, s *store.Store, settings descriptor.BuildSettings) (*planner.BuildPlan, error) {
	return New(s, WithDefaults(settings)).Assemble(ctx, target)
}

// Assemble plans one target in a run of its own.
func (a *Assembler) Assemble(ctx context.Context, target descriptor.TargetDescriptor) (*planner.BuildPlan, error) {
	if !a.store.Sealed() {
		return nil, depgraph.ErrStoreNotSealed
	}
	run := NewRun()
	if err := run.Advance(StateSealed); err != nil {
		return nil, err
	}
	plans, err := a.assemble(ctx, run, []job{{target: target}})
	if err != nil {
		return nil, err
	}
	return plans[0], nil
}

// AssembleAll plans the named targets, or every registered target when names
// is empty. run must be in StateSealed; it ends in StateDone or StateFailed.
// Plans are returned sorted by target name.
func (a *Assembler) AssembleAll(ctx context.Context, run *Run, names []string) ([]*planner.BuildPlan, error) {
	if run.State() != StateSealed {
		return nil, &InvalidTransitionError{From: run.State(), To: StateGraphBuilt}
	}
	if !a.store.Sealed() {
		return nil, run.Fail(depgraph.ErrStoreNotSealed)
	}

	if len(names) == 0 {
		names = a.store.TargetNames()
	}
	names = slices.Clone(names)
	slices.Sort(names)
	names = slices.Compact(names)

	jobs := make([]job, 0, len(names))
	for _, name := range names {
		t, err := a.store.Target(name)
		if err != nil {
			return nil, run.Fail(err)
		}
		jobs = append(jobs, job{target: t})
	}
	return a.assemble(ctx, run, jobs)
}

// Resolve builds and validates the graph of one target without planning
// it. run must be in StateSealed and ends in StateValidated or StateFailed.
func (a *Assembler) Resolve(ctx context.Context, run *Run, name string) (*check.ValidatedGraph, error) {
	if run.State() != StateSealed {
		return nil, &InvalidTransitionError{From: run.State(), To: StateGraphBuilt}
	}
	t, err := a.store.Target(name)
	if err != nil {
		return nil, run.Fail(err)
	}
	j := &job{target: t}
	if err := a.buildGraph(ctx, j); err != nil {
		return nil, run.Fail(err)
	}
	if err := run.Transition(StateGraphBuilt); err != nil {
		return nil, run.Fail(err)
	}
	if err := a.validate(ctx, j); err != nil {
		return nil, run.Fail(err)
	}
	if err := run.Transition(StateValidated); err != nil {
		return nil, run.Fail(err)
	}
	return j.validated, nil
}

func (a *Assembler) assemble(ctx context.Context, run *Run, jobs []job) ([]*planner.BuildPlan, error) {
	phases := []struct {
		next State
		fn   func(context.Context, *job) error
	}{
		{StateGraphBuilt, a.buildGraph},
		{StateValidated, a.validate},
		{StatePlanned, a.plan},
	}
	for _, phase := range phases {
		if err := a.forEach(ctx, jobs, phase.fn); err != nil {
			return nil, run.Fail(err)
		}
		if err := run.Transition(phase.next); err != nil {
			return nil, run.Fail(err)
		}
	}

	plans := make([]*planner.BuildPlan, len(jobs))
	for i := range jobs {
		plans[i] = jobs[i].plan
	}
	if err := run.Transition(StateDone); err != nil {
		return nil, run.Fail(err)
	}
	return plans, nil
}

// forEach runs fn for every job with bounded concurrency and returns the
// error of the first failing job in slice order.
func (a *Assembler) forEach(ctx context.Context, jobs []job, fn func(context.Context, *job) error) error {
	errs := make([]error, len(jobs))
	var g errgroup.Group
	g.SetLimit(a.parallelism)
	for i := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return err
			}
			errs[i] = fn(ctx, &jobs[i])
			return errs[i]
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *Assembler) buildGraph(ctx context.Context, j *job) error {
	t := j.target
	for _, root := range t.Roots {
		switch {
		case a.store.IsModule(root):
		case a.store.IsTarget(root):
			return &planerr.InvalidEdgeError{Consumer: t.Name, Dependency: root, Problem: planerr.EdgeRootIsTarget}
		default:
			return &planerr.UnknownModuleError{Name: root, ReferencedBy: t.Name}
		}
	}

	g, err := depgraph.Build(ctx, a.store, t.Roots)
	if err != nil {
		return err
	}
	j.graph = g
	a.logger.Debug("built dependency graph", "target", t.Name, "modules", len(g.Modules()), "edges", len(g.Edges()))
	return nil
}

func (a *Assembler) validate(_ context.Context, j *job) error {
	v, err := check.Validate(j.graph)
	if err != nil {
		return err
	}
	if err := checkCompatibility(j.target, j.graph); err != nil {
		return err
	}
	j.validated = v
	return nil
}

func (a *Assembler) plan(_ context.Context, j *job) error {
	settings := j.target.Settings.Merge(a.defaults)
	p, err := planner.Plan(j.validated,
		planner.WithTarget(j.target.Name, j.target.Type),
		planner.WithSettings(settings),
	)
	if err != nil {
		return err
	}
	j.plan = p
	a.logger.Debug("planned target", "target", p.Target, "stages", len(p.Stages), "modules", p.Len(), "fingerprint", p.ShortFingerprint())
	return nil
}

// checkCompatibility rejects a target whose closure contains a module its
// type may not link. Modules are checked in name order and the reported
// chain is the shortest path from a root.
func checkCompatibility(t descriptor.TargetDescriptor, g *depgraph.BuildGraph) error {
	for _, name := range g.Modules() {
		m, _ := g.Module(name)
		if m.Availability.AllowedIn(t.Type) {
			continue
		}
		return &planerr.TargetModuleMismatchError{
			Target:       t.Name,
			TargetType:   t.Type,
			Module:       name,
			Availability: m.Availability.OrDefault(),
			Chain:        g.DAG().ShortestPath(g.Roots(), name),
		}
	}
	return nil
}

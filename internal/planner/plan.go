// SPDX-License-Identifier: MPL-2.0

// Package planner layers a validated graph into build stages.
//
// Stage 0 holds the modules without dependencies; every other module sits one
// stage after its deepest dependency. Modules inside a stage are sorted by
// name, so identical input always yields a byte-identical plan and the same
// fingerprint.
package planner

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/modgraph/modgraph/internal/check"
	"github.com/modgraph/modgraph/internal/dag"
	"github.com/modgraph/modgraph/internal/planerr"
	"github.com/modgraph/modgraph/pkg/descriptor"
)

type (
	// BuildPlan is the output of planning one target.
	BuildPlan struct {
		Target      string                   `json:"target" yaml:"target" toml:"target"`
		TargetType  descriptor.TargetType    `json:"target_type,omitempty" yaml:"target_type,omitempty" toml:"target_type,omitempty"`
		Settings    descriptor.BuildSettings `json:"settings" yaml:"settings" toml:"settings"`
		Stages      [][]string               `json:"stages" yaml:"stages" toml:"stages"`
		Units       []Unit                   `json:"units" yaml:"units" toml:"units"`
		Fingerprint string                   `json:"fingerprint" yaml:"fingerprint" toml:"fingerprint"`
	}

	// Unit is one module of a plan with what an executor needs to build it.
	Unit struct {
		Name     string                `json:"name" yaml:"name" toml:"name"`
		Stage    int                   `json:"stage" yaml:"stage" toml:"stage"`
		Kind     descriptor.ModuleKind `json:"kind" yaml:"kind" toml:"kind"`
		PCHUsage descriptor.PCHUsage   `json:"pch_usage" yaml:"pch_usage" toml:"pch_usage"`
		Plugin   string                `json:"plugin,omitempty" yaml:"plugin,omitempty" toml:"plugin,omitempty"`
		Deps     []string              `json:"deps,omitempty" yaml:"deps,omitempty" toml:"deps,omitempty"`
		// Digest is a hash of the module descriptor; it changes whenever the
		// module would have to be rebuilt for descriptor reasons.
		Digest string `json:"digest" yaml:"digest" toml:"digest"`
	}

	// Option configures Plan.
	Option func(*planOptions)

	planOptions struct {
		target     string
		targetType descriptor.TargetType
		settings   descriptor.BuildSettings
	}
)

// WithTarget names the target the plan is for.
func WithTarget(name string, typ descriptor.TargetType) Option {
	return func(o *planOptions) {
		o.target = name
		o.targetType = typ
	}
}

// WithSettings attaches the effective build settings.
func WithSettings(s descriptor.BuildSettings) Option {
	return func(o *planOptions) { o.settings = s }
}

// Plan layers v into stages and computes the plan fingerprint.
func Plan(v *check.ValidatedGraph, opts ...Option) (*BuildPlan, error) {
	var o planOptions
	for _, opt := range opts {
		opt(&o)
	}

	g := v.Graph()
	stages, err := g.DAG().Layers()
	if err != nil {
		// Unreachable for a validated graph; kept so a broken invariant
		// surfaces as the taxonomy error.
		var cycleErr *dag.CycleError
		if errors.As(err, &cycleErr) {
			return nil, &planerr.CycleError{Path: cycleErr.Cycle}
		}
		return nil, err
	}
	if stages == nil {
		stages = [][]string{}
	}

	plan := &BuildPlan{
		Target:     o.target,
		TargetType: o.targetType,
		Settings:   o.settings,
		Stages:     stages,
	}
	for i, stage := range stages {
		for _, name := range stage {
			mod, _ := g.Module(name)
			digest, err := moduleDigest(mod)
			if err != nil {
				return nil, err
			}
			plan.Units = append(plan.Units, Unit{
				Name:     name,
				Stage:    i,
				Kind:     mod.Kind,
				PCHUsage: mod.PCHUsage.OrDefault(),
				Plugin:   mod.Plugin,
				Deps:     g.ResolvedDeps(name),
				Digest:   digest,
			})
		}
	}

	fp, err := plan.computeFingerprint()
	if err != nil {
		return nil, err
	}
	plan.Fingerprint = fp
	return plan, nil
}

// Position returns the stage index of name. Stages must be sorted, as Plan
// produces them and Verify requires.
func (p *BuildPlan) Position(name string) (int, bool) {
	for i, stage := range p.Stages {
		if _, found := slices.BinarySearch(stage, name); found {
			return i, true
		}
	}
	return 0, false
}

// Modules returns every planned module in build order.
func (p *BuildPlan) Modules() []string {
	var out []string
	for _, stage := range p.Stages {
		out = append(out, stage...)
	}
	return out
}

// Unit returns the planned unit for name.
func (p *BuildPlan) Unit(name string) (Unit, bool) {
	for _, u := range p.Units {
		if u.Name == name {
			return u, true
		}
	}
	return Unit{}, false
}

// Len returns the number of planned modules.
func (p *BuildPlan) Len() int { return len(p.Units) }

// Verify checks that every stage is sorted, checks the stage ordering rule
// against the recorded unit dependencies and recomputes the fingerprint. It
// is used on plans read back from disk.
func (p *BuildPlan) Verify() error {
	for i, stage := range p.Stages {
		if !slices.IsSorted(stage) {
			return fmt.Errorf("plan %s: stage %d is not sorted by module name", p.Target, i)
		}
	}
	for _, u := range p.Units {
		for _, dep := range u.Deps {
			stage, ok := p.Position(dep)
			if !ok {
				return fmt.Errorf("plan %s: %s depends on %s, which is not planned", p.Target, u.Name, dep)
			}
			if stage >= u.Stage {
				return fmt.Errorf("plan %s: %s (stage %d) depends on %s (stage %d)", p.Target, u.Name, u.Stage, dep, stage)
			}
		}
	}
	fp, err := p.computeFingerprint()
	if err != nil {
		return err
	}
	if fp != p.Fingerprint {
		return fmt.Errorf("plan %s: %w (recorded %s, computed %s)", p.Target, ErrFingerprintMismatch, short(p.Fingerprint), short(fp))
	}
	return nil
}

// computeFingerprint hashes everything in the plan except the fingerprint.
func (p *BuildPlan) computeFingerprint() (string, error) {
	canonical := *p
	canonical.Fingerprint = ""
	data, err := json.Marshal(canonical)
	if err != nil {
		return "", fmt.Errorf("encode plan for fingerprint: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func moduleDigest(m descriptor.ModuleDescriptor) (string, error) {
	m = m.Clone()
	slices.Sort(m.PublicDeps)
	slices.Sort(m.PrivateDeps)
	m.Availability = m.Availability.OrDefault()
	m.PCHUsage = m.PCHUsage.OrDefault()
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode module %s for digest: %w", m.Name, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// ShortFingerprint returns the first 12 hex digits of the fingerprint.
func (p *BuildPlan) ShortFingerprint() string { return short(p.Fingerprint) }

func short(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}

// SPDX-License-Identifier: MPL-2.0

package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// ErrFingerprintMismatch is returned by ReadDocument when a plan's
// fingerprint does not match its content.
var ErrFingerprintMismatch = errors.New("plan fingerprint does not match its content")

type (
	// Document is the serialized form of one or more plans, as written by
	// "modgraph plan -o json" and read back by "modgraph diff".
	Document struct {
		Plans []*BuildPlan `json:"plans" yaml:"plans" toml:"plans"`
	}

	// DocumentDiff compares two documents target by target.
	DocumentDiff struct {
		Plans          []PlanDiff `json:"plans,omitempty" yaml:"plans,omitempty" toml:"plans,omitempty"`
		AddedTargets   []string   `json:"added_targets,omitempty" yaml:"added_targets,omitempty" toml:"added_targets,omitempty"`
		RemovedTargets []string   `json:"removed_targets,omitempty" yaml:"removed_targets,omitempty" toml:"removed_targets,omitempty"`
	}
)

// NewDocument wraps plans sorted by target name.
func NewDocument(plans ...*BuildPlan) *Document {
	sorted := slices.Clone(plans)
	slices.SortFunc(sorted, func(a, b *BuildPlan) int { return strings.Compare(a.Target, b.Target) })
	return &Document{Plans: sorted}
}

// ReadDocument decodes a JSON document and verifies every fingerprint.
func ReadDocument(r io.Reader) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode plan document: %w", err)
	}
	for _, p := range doc.Plans {
		if p == nil {
			return nil, errors.New("decode plan document: null plan")
		}
		if err := p.Verify(); err != nil {
			return nil, err
		}
	}
	return &doc, nil
}

// Plan returns the plan for target, or nil.
func (d *Document) Plan(target string) *BuildPlan {
	for _, p := range d.Plans {
		if p.Target == target {
			return p
		}
	}
	return nil
}

// DiffDocuments compares the plans of two documents. Targets present in
// both are diffed with Diff; the rest are listed as added or removed.
func DiffDocuments(old, cur *Document) DocumentDiff {
	var out DocumentDiff
	for _, p := range cur.Plans {
		prev := old.Plan(p.Target)
		if prev == nil {
			out.AddedTargets = append(out.AddedTargets, p.Target)
			continue
		}
		out.Plans = append(out.Plans, Diff(prev, p))
	}
	for _, p := range old.Plans {
		if cur.Plan(p.Target) == nil {
			out.RemovedTargets = append(out.RemovedTargets, p.Target)
		}
	}
	slices.Sort(out.AddedTargets)
	slices.Sort(out.RemovedTargets)
	slices.SortFunc(out.Plans, func(a, b PlanDiff) int { return strings.Compare(a.Target, b.Target) })
	return out
}

// Empty reports whether nothing changed.
func (d DocumentDiff) Empty() bool {
	if len(d.AddedTargets) > 0 || len(d.RemovedTargets) > 0 {
		return false
	}
	for _, p := range d.Plans {
		if !p.Empty() {
			return false
		}
	}
	return true
}

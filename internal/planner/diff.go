// SPDX-License-Identifier: MPL-2.0

package planner

import (
	"slices"
	"strings"
)

type (
	// PlanDiff describes how a plan changed between two runs. An executor can
	// skip a rebuild when FingerprintChanged is false.
	PlanDiff struct {
		Target             string   `json:"target" yaml:"target" toml:"target"`
		FingerprintChanged bool     `json:"fingerprint_changed" yaml:"fingerprint_changed" toml:"fingerprint_changed"`
		SettingsChanged    bool     `json:"settings_changed,omitempty" yaml:"settings_changed,omitempty" toml:"settings_changed,omitempty"`
		Added              []string `json:"added,omitempty" yaml:"added,omitempty" toml:"added,omitempty"`
		Removed            []string `json:"removed,omitempty" yaml:"removed,omitempty" toml:"removed,omitempty"`
		Moved              []Move   `json:"moved,omitempty" yaml:"moved,omitempty" toml:"moved,omitempty"`
		// Changed lists modules present in both plans whose descriptor digest differs.
		Changed []string `json:"changed,omitempty" yaml:"changed,omitempty" toml:"changed,omitempty"`
	}

	// Move is a module whose stage changed.
	Move struct {
		Name string `json:"name" yaml:"name" toml:"name"`
		From int    `json:"from" yaml:"from" toml:"from"`
		To   int    `json:"to" yaml:"to" toml:"to"`
	}
)

// Diff compares two plans of the same target. All lists are sorted by name.
func Diff(old, cur *BuildPlan) PlanDiff {
	d := PlanDiff{
		Target:             cur.Target,
		FingerprintChanged: old.Fingerprint != cur.Fingerprint,
		SettingsChanged:    old.Settings != cur.Settings,
	}

	oldUnits := make(map[string]Unit, len(old.Units))
	for _, u := range old.Units {
		oldUnits[u.Name] = u
	}
	curUnits := make(map[string]Unit, len(cur.Units))
	for _, u := range cur.Units {
		curUnits[u.Name] = u
	}

	for name, u := range curUnits {
		prev, ok := oldUnits[name]
		if !ok {
			d.Added = append(d.Added, name)
			continue
		}
		if prev.Stage != u.Stage {
			d.Moved = append(d.Moved, Move{Name: name, From: prev.Stage, To: u.Stage})
		}
		if prev.Digest != u.Digest {
			d.Changed = append(d.Changed, name)
		}
	}
	for name := range oldUnits {
		if _, ok := curUnits[name]; !ok {
			d.Removed = append(d.Removed, name)
		}
	}

	slices.Sort(d.Added)
	slices.Sort(d.Removed)
	slices.Sort(d.Changed)
	slices.SortFunc(d.Moved, func(a, b Move) int { return strings.Compare(a.Name, b.Name) })
	return d
}

// Empty reports whether the plans are equivalent.
func (d PlanDiff) Empty() bool { return !d.FingerprintChanged }

// SPDX-License-Identifier: MPL-2.0

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/modgraph/modgraph/internal/planner"
	"github.com/modgraph/modgraph/pkg/descriptor"
)

type (
	// Summary reports a successful validation run.
	Summary struct {
		Files   int             `json:"files" yaml:"files" toml:"files"`
		Modules int             `json:"modules" yaml:"modules" toml:"modules"`
		Targets []TargetSummary `json:"targets" yaml:"targets" toml:"targets"`
	}

	// TargetSummary is one validated target.
	TargetSummary struct {
		Name        string                `json:"name" yaml:"name" toml:"name"`
		Type        descriptor.TargetType `json:"type" yaml:"type" toml:"type"`
		Modules     int                   `json:"modules" yaml:"modules" toml:"modules"`
		Stages      int                   `json:"stages" yaml:"stages" toml:"stages"`
		Fingerprint string                `json:"fingerprint" yaml:"fingerprint" toml:"fingerprint"`
	}
)

// NewSummary summarizes the plans of a validation run.
func NewSummary(files, modules int, plans []*planner.BuildPlan) Summary {
	sum := Summary{Files: files, Modules: modules, Targets: []TargetSummary{}}
	for _, p := range plans {
		sum.Targets = append(sum.Targets, TargetSummary{
			Name:        p.Target,
			Type:        p.TargetType,
			Modules:     p.Len(),
			Stages:      len(p.Stages),
			Fingerprint: p.ShortFingerprint(),
		})
	}
	return sum
}

// Summary writes a validation summary.
func (r *Renderer) Summary(sum Summary) error {
	return r.emit(sum, textFunc(func(w io.Writer, s Styles) error {
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s %d modules from %d files, %d targets\n",
			s.Success.Render("✓ descriptors are valid:"), sum.Modules, sum.Files, len(sum.Targets))
		for _, t := range sum.Targets {
			fmt.Fprintf(&sb, "  %s %s %d modules in %d stages\n",
				s.Highlight.Render(t.Name), s.Muted.Render(t.Type.String()), t.Modules, t.Stages)
		}
		_, err := io.WriteString(w, sb.String())
		return err
	}), nil)
}

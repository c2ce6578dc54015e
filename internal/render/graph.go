// SPDX-License-Identifier: MPL-2.0

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/modgraph/modgraph/internal/depgraph"
	"github.com/modgraph/modgraph/pkg/descriptor"
)

type (
	// GraphView is the resolved dependency graph of one target.
	GraphView struct {
		Target  string        `json:"target" yaml:"target" toml:"target"`
		Roots   []string      `json:"roots" yaml:"roots" toml:"roots"`
		Modules []GraphModule `json:"modules" yaml:"modules" toml:"modules"`
	}

	// GraphModule lists one module's dependencies by origin.
	GraphModule struct {
		Name    string                `json:"name" yaml:"name" toml:"name"`
		Kind    descriptor.ModuleKind `json:"kind" yaml:"kind" toml:"kind"`
		Public  []string              `json:"public,omitempty" yaml:"public,omitempty" toml:"public,omitempty"`
		Private []string              `json:"private,omitempty" yaml:"private,omitempty" toml:"private,omitempty"`
		// Implicit dependencies come from the public dependencies of
		// direct dependencies.
		Implicit []string `json:"implicit,omitempty" yaml:"implicit,omitempty" toml:"implicit,omitempty"`
	}
)

// NewGraphView flattens g for output.
func NewGraphView(target string, g *depgraph.BuildGraph) GraphView {
	view := GraphView{Target: target, Roots: g.Roots()}
	for _, name := range g.Modules() {
		mod, _ := g.Module(name)
		gm := GraphModule{Name: name, Kind: mod.Kind}
		for _, e := range g.EdgesFrom(name) {
			switch {
			case e.Implicit:
				gm.Implicit = append(gm.Implicit, e.Dependency)
			case e.Visibility == descriptor.VisibilityPublic:
				gm.Public = append(gm.Public, e.Dependency)
			default:
				gm.Private = append(gm.Private, e.Dependency)
			}
		}
		view.Modules = append(view.Modules, gm)
	}
	return view
}

// Graph writes the resolved graph of one target.
func (r *Renderer) Graph(view GraphView) error {
	return r.emit(view,
		textFunc(func(w io.Writer, s Styles) error { return writeGraphText(w, s, view) }),
		tableFunc(func(w io.Writer) error { return writeGraphTable(w, view) }))
}

func writeGraphText(w io.Writer, s Styles, view GraphView) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", s.Title.Render(view.Target), s.Subtitle.Render("roots: "+strings.Join(view.Roots, ", ")))
	for _, m := range view.Modules {
		fmt.Fprintf(&sb, "  %s %s\n", s.Highlight.Render(m.Name), s.Muted.Render(m.Kind.String()))
		for _, line := range []struct {
			label string
			deps  []string
		}{
			{"public:", m.Public},
			{"private:", m.Private},
			{"implicit:", m.Implicit},
		} {
			if len(line.deps) > 0 {
				fmt.Fprintf(&sb, "    %-9s %s\n", line.label, strings.Join(line.deps, ", "))
			}
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeGraphTable(w io.Writer, view GraphView) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Module", "Kind", "Public", "Private", "Implicit"})
	for _, m := range view.Modules {
		t.AppendRow(table.Row{m.Name, m.Kind, strings.Join(m.Public, ", "), strings.Join(m.Private, ", "), strings.Join(m.Implicit, ", ")})
	}
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
	return nil
}

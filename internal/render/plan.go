// SPDX-License-Identifier: MPL-2.0

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/modgraph/modgraph/internal/planner"
)

// Plans writes a plan document. The JSON form is what "modgraph diff" reads.
func (r *Renderer) Plans(doc *planner.Document) error {
	return r.emit(doc,
		textFunc(func(w io.Writer, s Styles) error { return writePlansText(w, s, doc) }),
		tableFunc(func(w io.Writer) error { return writePlansTable(w, doc) }))
}

func writePlansText(w io.Writer, s Styles, doc *planner.Document) error {
	var sb strings.Builder
	for i, p := range doc.Plans {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(s.Title.Render(p.Target))
		if p.TargetType != "" {
			sb.WriteString(" " + s.Subtitle.Render("("+p.TargetType.String()+")"))
		}
		sb.WriteString("  " + s.Muted.Render("fingerprint "+p.ShortFingerprint()) + "\n")
		sb.WriteString(s.Label.Render("settings:") + " " + p.Settings.String() + "\n")
		for n, stage := range p.Stages {
			fmt.Fprintf(&sb, "  %s %s\n", s.Highlight.Render(fmt.Sprintf("stage %d:", n)), strings.Join(stage, " "))
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writePlansTable(w io.Writer, doc *planner.Document) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Target", "Stage", "Module", "Kind", "PCH", "Plugin", "Deps"})
	for _, p := range doc.Plans {
		for _, u := range p.Units {
			t.AppendRow(table.Row{p.Target, u.Stage, u.Name, u.Kind, u.PCHUsage, u.Plugin, strings.Join(u.Deps, ", ")})
		}
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
		{Number: 2, AutoMerge: true},
	})
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
	return nil
}

// Diff writes the comparison of two plan documents.
func (r *Renderer) Diff(d planner.DocumentDiff) error {
	return r.emit(d, textFunc(func(w io.Writer, s Styles) error { return writeDiffText(w, s, d) }), nil)
}

func writeDiffText(w io.Writer, s Styles, d planner.DocumentDiff) error {
	var sb strings.Builder
	if d.Empty() {
		sb.WriteString(s.Success.Render("✓ plans are identical") + "\n")
	}
	for _, name := range d.AddedTargets {
		sb.WriteString(s.Success.Render("+ target "+name) + "\n")
	}
	for _, name := range d.RemovedTargets {
		sb.WriteString(s.Error.Render("- target "+name) + "\n")
	}
	for _, p := range d.Plans {
		if p.Empty() {
			continue
		}
		sb.WriteString(s.Title.Render(p.Target) + "\n")
		if p.SettingsChanged {
			sb.WriteString("  " + s.Warning.Render("~ settings changed") + "\n")
		}
		for _, name := range p.Added {
			sb.WriteString("  " + s.Success.Render("+ "+name) + "\n")
		}
		for _, name := range p.Removed {
			sb.WriteString("  " + s.Error.Render("- "+name) + "\n")
		}
		for _, m := range p.Moved {
			sb.WriteString("  " + s.Warning.Render(fmt.Sprintf("~ %s stage %d -> %d", m.Name, m.From, m.To)) + "\n")
		}
		for _, name := range p.Changed {
			sb.WriteString("  " + s.Warning.Render("~ "+name+" descriptor changed") + "\n")
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

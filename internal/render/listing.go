// SPDX-License-Identifier: MPL-2.0

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/modgraph/modgraph/pkg/descriptor"
)

type (
	moduleList struct {
		Modules []descriptor.ModuleDescriptor `json:"modules" yaml:"modules" toml:"modules"`
	}

	targetList struct {
		Targets []descriptor.TargetDescriptor `json:"targets" yaml:"targets" toml:"targets"`
	}
)

// Modules lists module descriptors in the given order.
func (r *Renderer) Modules(mods []descriptor.ModuleDescriptor) error {
	if mods == nil {
		mods = []descriptor.ModuleDescriptor{}
	}
	return r.emit(moduleList{Modules: mods},
		textFunc(func(w io.Writer, s Styles) error {
			var sb strings.Builder
			for _, m := range mods {
				fmt.Fprintf(&sb, "%s %s", s.Highlight.Render(m.Name), s.Muted.Render(m.Kind.String()))
				if m.Plugin != "" {
					sb.WriteString(" " + s.Subtitle.Render("plugin "+m.Plugin))
				}
				if a := m.Availability.OrDefault(); a != descriptor.AvailabilityAny {
					sb.WriteString(" " + s.Warning.Render(a.String()))
				}
				if m.Description != "" {
					sb.WriteString(" - " + m.Description.Summary())
				}
				sb.WriteString("\n")
			}
			_, err := io.WriteString(w, sb.String())
			return err
		}),
		tableFunc(func(w io.Writer) error {
			t := newTable(w, "Module", "Kind", "Availability", "Plugin", "Version", "Source")
			for _, m := range mods {
				t.AppendRow(table.Row{m.Name, m.Kind, m.Availability.OrDefault(), m.Plugin, m.Version, m.Source})
			}
			t.Render()
			return nil
		}))
}

// Targets lists target descriptors in the given order.
func (r *Renderer) Targets(targets []descriptor.TargetDescriptor) error {
	if targets == nil {
		targets = []descriptor.TargetDescriptor{}
	}
	return r.emit(targetList{Targets: targets},
		textFunc(func(w io.Writer, s Styles) error {
			var sb strings.Builder
			for _, t := range targets {
				fmt.Fprintf(&sb, "%s %s roots: %s\n", s.Highlight.Render(t.Name), s.Muted.Render(t.Type.String()), strings.Join(t.Roots, ", "))
			}
			_, err := io.WriteString(w, sb.String())
			return err
		}),
		tableFunc(func(w io.Writer) error {
			t := newTable(w, "Target", "Type", "Roots", "Settings", "Source")
			for _, tg := range targets {
				t.AppendRow(table.Row{tg.Name, tg.Type, strings.Join(tg.Roots, ", "), tg.Settings.String(), tg.Source})
			}
			t.Render()
			return nil
		}))
}

func newTable(w io.Writer, headers ...any) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row(headers))
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	return t
}

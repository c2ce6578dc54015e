// SPDX-License-Identifier: MPL-2.0

// Package render writes command results to the terminal. Every result type
// can be written as styled text, a table, or JSON, YAML or TOML. Structured
// formats always encode a top-level object so that TOML can represent them.
package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/modgraph/modgraph/internal/config"
)

type (
	// Renderer writes results to one writer in one format.
	Renderer struct {
		w      io.Writer
		format config.OutputFormat
		styles Styles
	}

	textWriter interface {
		writeText(w io.Writer, s Styles) error
	}

	tableWriter interface {
		writeTable(w io.Writer) error
	}

	textFunc  func(w io.Writer, s Styles) error
	tableFunc func(w io.Writer) error
)

func (f textFunc) writeText(w io.Writer, s Styles) error {
	return f(w, s)
}

func (f tableFunc) writeTable(w io.Writer) error {
	return f(w)
}

// New creates a Renderer. Color "auto" follows the terminal behind w.
func New(w io.Writer, format config.OutputFormat, color config.ColorMode) *Renderer {
	lr := lipgloss.NewRenderer(w)
	switch color {
	case config.ColorNever:
		lr.SetColorProfile(termenv.Ascii)
	case config.ColorAlways:
		lr.SetColorProfile(termenv.ANSI256)
	}
	if format == "" {
		format = config.OutputText
	}
	return &Renderer{w: w, format: format, styles: NewStyles(lr)}
}

// Format returns the output format.
func (r *Renderer) Format() config.OutputFormat { return r.format }

// Styles returns the styles bound to the output's color profile.
func (r *Renderer) Styles() Styles { return r.styles }

// Structured reports whether the format is machine-readable.
func (r *Renderer) Structured() bool {
	switch r.format {
	case config.OutputJSON, config.OutputYAML, config.OutputTOML:
		return true
	}
	return false
}

// emit writes data in a structured format, or hands text and table output
// to the given writers. A nil table falls back to text.
func (r *Renderer) emit(data any, text textWriter, table tableWriter) error {
	switch r.format {
	case config.OutputJSON:
		enc := json.NewEncoder(r.w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case config.OutputYAML:
		enc := yaml.NewEncoder(r.w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	case config.OutputTOML:
		enc := toml.NewEncoder(r.w)
		enc.SetIndentTables(true)
		return enc.Encode(data)
	case config.OutputTable:
		if table != nil {
			return table.writeTable(r.w)
		}
		return text.writeText(r.w, r.styles)
	case config.OutputText:
		return text.writeText(r.w, r.styles)
	default:
		return fmt.Errorf("unknown output format: %q", r.format)
	}
}

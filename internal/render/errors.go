// SPDX-License-Identifier: MPL-2.0

package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/modgraph/modgraph/internal/issue"
	"github.com/modgraph/modgraph/internal/planerr"
)

// ErrorDoc is the structured form of a failed run, written to stderr when
// the output format is json, yaml or toml.
type ErrorDoc struct {
	Kind        string   `json:"kind" yaml:"kind" toml:"kind"`
	Message     string   `json:"message" yaml:"message" toml:"message"`
	Names       []string `json:"names,omitempty" yaml:"names,omitempty" toml:"names,omitempty"`
	Path        []string `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`
	Operation   string   `json:"operation,omitempty" yaml:"operation,omitempty" toml:"operation,omitempty"`
	Resource    string   `json:"resource,omitempty" yaml:"resource,omitempty" toml:"resource,omitempty"`
	Suggestions []string `json:"suggestions,omitempty" yaml:"suggestions,omitempty" toml:"suggestions,omitempty"`
}

// NewErrorDoc describes err. Planning errors report their kind and names,
// and cycles their path. Other errors use the catalog id matched by
// issue.ForError, or "error".
func NewErrorDoc(err error, matches ...issue.Match) ErrorDoc {
	doc := ErrorDoc{Kind: "error", Message: err.Error()}

	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		doc.Operation = ae.Operation
		doc.Resource = ae.Resource
		doc.Suggestions = ae.Suggestions
		if ae.Cause != nil {
			doc.Message = ae.Cause.Error()
		}
	}

	if pe, ok := planerr.As(err); ok {
		doc.Kind = pe.Kind().String()
		doc.Names = pe.Names()
		var cycle *planerr.CycleError
		if errors.As(err, &cycle) {
			doc.Path = cycle.Path
		}
		return doc
	}
	if i := issue.ForError(err, matches...); i != nil {
		doc.Kind = i.Id().String()
	}
	return doc
}

// Error writes doc in the renderer's structured format. Callers print
// ErrorCard for text and table output.
func (r *Renderer) Error(doc ErrorDoc) error {
	if !r.Structured() {
		return fmt.Errorf("render: %s is not a structured format", r.format)
	}
	return r.emit(doc, nil, nil)
}

// ErrorCard renders err for stderr. Actionable errors show their
// suggestions; planning errors add their kind and a pointer to
// "modgraph explain".
func ErrorCard(s Styles, err error, verbose bool) string {
	var sb strings.Builder
	sb.WriteString(s.Error.Render("✗ Error"))
	sb.WriteString("\n\n")

	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		sb.WriteString(ae.Format(verbose))
	} else {
		sb.WriteString(err.Error())
	}
	sb.WriteString("\n")

	if pe, ok := planerr.As(err); ok {
		kind := pe.Kind().String()
		sb.WriteString("\n")
		sb.WriteString(s.Label.Render("kind:") + " " + kind)
		if names := pe.Names(); len(names) > 0 {
			sb.WriteString("  " + s.Label.Render("involves:") + " " + strings.Join(names, ", "))
		}
		sb.WriteString("\n")
		sb.WriteString(s.Muted.Render(fmt.Sprintf("Run 'modgraph explain %s' for details.", kind)))
		sb.WriteString("\n")
	}
	return sb.String()
}

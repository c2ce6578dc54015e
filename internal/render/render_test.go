// SPDX-License-Identifier: MPL-2.0

package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/modgraph/modgraph/internal/check"
	"github.com/modgraph/modgraph/internal/config"
	"github.com/modgraph/modgraph/internal/depgraph"
	"github.com/modgraph/modgraph/internal/issue"
	"github.com/modgraph/modgraph/internal/planerr"
	"github.com/modgraph/modgraph/internal/planner"
	dt "github.com/modgraph/modgraph/internal/testutil/descriptortest"
	"github.com/modgraph/modgraph/pkg/descriptor"
)

func samplePlan(t *testing.T) (*depgraph.BuildGraph, *planner.BuildPlan) {
	t.Helper()
	s := dt.SealedStore(t,
		dt.Module("Core"),
		dt.Module("CoreUObject", dt.Public("Core")),
		dt.Module("Engine", dt.Public("CoreUObject"), dt.Private("RenderCore")),
		dt.Module("RenderCore", dt.Public("Core")),
	)
	g, err := depgraph.Build(context.Background(), s, []string{"Engine"})
	if err != nil {
		t.Fatal(err)
	}
	v, err := check.Validate(g)
	if err != nil {
		t.Fatal(err)
	}
	p, err := planner.Plan(v, planner.WithTarget("Game", descriptor.TargetGame), planner.WithSettings(descriptor.DefaultBuildSettings()))
	if err != nil {
		t.Fatal(err)
	}
	return g, p
}

func TestPlansText(t *testing.T) {
	t.Parallel()

	_, p := samplePlan(t)
	var buf bytes.Buffer
	if err := New(&buf, config.OutputText, config.ColorNever).Plans(planner.NewDocument(p)); err != nil {
		t.Fatalf("Plans() error = %v", err)
	}

	want := "Game (game)  fingerprint " + p.ShortFingerprint() + "\n" +
		"settings: build_settings_version=latest include_order=latest optimization_level=development\n" +
		"  stage 0: Core\n" +
		"  stage 1: CoreUObject RenderCore\n" +
		"  stage 2: Engine\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("Plans() text mismatch (-want +got):\n%s", diff)
	}
}

func TestPlansJSONReadsBack(t *testing.T) {
	t.Parallel()

	_, p := samplePlan(t)
	var buf bytes.Buffer
	if err := New(&buf, config.OutputJSON, config.ColorNever).Plans(planner.NewDocument(p)); err != nil {
		t.Fatalf("Plans() error = %v", err)
	}
	doc, err := planner.ReadDocument(&buf)
	if err != nil {
		t.Fatalf("ReadDocument() error = %v", err)
	}
	if doc.Plans[0].Fingerprint != p.Fingerprint {
		t.Errorf("fingerprint = %s, want %s", doc.Plans[0].Fingerprint, p.Fingerprint)
	}
}

func TestPlansStructuredFormats(t *testing.T) {
	t.Parallel()

	_, p := samplePlan(t)
	tests := []struct {
		format    config.OutputFormat
		unmarshal func([]byte, any) error
	}{
		{config.OutputYAML, yaml.Unmarshal},
		{config.OutputTOML, toml.Unmarshal},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			r := New(&buf, tt.format, config.ColorNever)
			if !r.Structured() {
				t.Fatal("Structured() = false")
			}
			if err := r.Plans(planner.NewDocument(p)); err != nil {
				t.Fatalf("Plans() error = %v", err)
			}
			var doc planner.Document
			if err := tt.unmarshal(buf.Bytes(), &doc); err != nil {
				t.Fatalf("unmarshal error = %v\n%s", err, buf.String())
			}
			if len(doc.Plans) != 1 || doc.Plans[0].Fingerprint != p.Fingerprint {
				t.Errorf("decoded = %+v", doc.Plans)
			}
			if diff := cmp.Diff(p.Stages, doc.Plans[0].Stages); diff != "" {
				t.Errorf("stages mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPlansTable(t *testing.T) {
	t.Parallel()

	_, p := samplePlan(t)
	var buf bytes.Buffer
	if err := New(&buf, config.OutputTable, config.ColorNever).Plans(planner.NewDocument(p)); err != nil {
		t.Fatalf("Plans() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"TARGET", "STAGE", "MODULE", "RenderCore", "Core, CoreUObject, RenderCore"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestGraphView(t *testing.T) {
	t.Parallel()

	g, _ := samplePlan(t)
	view := NewGraphView("Game", g)

	var engine GraphModule
	for _, m := range view.Modules {
		if m.Name == "Engine" {
			engine = m
		}
	}
	want := GraphModule{
		Name:     "Engine",
		Kind:     descriptor.KindRuntime,
		Public:   []string{"CoreUObject"},
		Private:  []string{"RenderCore"},
		Implicit: []string{"Core"},
	}
	if diff := cmp.Diff(want, engine); diff != "" {
		t.Errorf("Engine mismatch (-want +got):\n%s", diff)
	}

	var buf bytes.Buffer
	if err := New(&buf, config.OutputText, config.ColorNever).Graph(view); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "    implicit: Core\n") {
		t.Errorf("Graph() text:\n%s", buf.String())
	}
}

func TestModulesAndTargets(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := New(&buf, config.OutputJSON, config.ColorNever)
	if err := r.Modules(nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != `{
  "modules": []
}` {
		t.Errorf("Modules(nil) = %s", buf.String())
	}

	buf.Reset()
	r = New(&buf, config.OutputText, config.ColorNever)
	mods := []descriptor.ModuleDescriptor{
		dt.Module("UnrealMCP", dt.Plugin("UnrealMCP"), dt.Availability(descriptor.AvailabilityEditorOnly)),
	}
	if err := r.Modules(mods); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "UnrealMCP plugin plugin UnrealMCP editor_only\n" {
		t.Errorf("Modules() text = %q", got)
	}

	buf.Reset()
	r = New(&buf, config.OutputTable, config.ColorNever)
	if err := r.Targets([]descriptor.TargetDescriptor{dt.Target("Game", descriptor.TargetGame, "Engine")}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Game") || !strings.Contains(buf.String(), "ROOTS") {
		t.Errorf("Targets() table:\n%s", buf.String())
	}
}

func TestDiffText(t *testing.T) {
	t.Parallel()

	d := planner.DocumentDiff{
		AddedTargets: []string{"Client"},
		Plans: []planner.PlanDiff{{
			Target:             "Game",
			FingerprintChanged: true,
			Added:              []string{"Json"},
			Moved:              []planner.Move{{Name: "Engine", From: 1, To: 2}},
		}},
	}
	var buf bytes.Buffer
	if err := New(&buf, config.OutputText, config.ColorNever).Diff(d); err != nil {
		t.Fatal(err)
	}
	want := "+ target Client\nGame\n  + Json\n  ~ Engine stage 1 -> 2\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("Diff() mismatch (-want +got):\n%s", diff)
	}

	buf.Reset()
	if err := New(&buf, config.OutputText, config.ColorNever).Diff(planner.DocumentDiff{}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "✓ plans are identical\n" {
		t.Errorf("Diff(empty) = %q", buf.String())
	}
}

func TestSummaryJSON(t *testing.T) {
	t.Parallel()

	_, p := samplePlan(t)
	var buf bytes.Buffer
	if err := New(&buf, config.OutputJSON, config.ColorNever).Summary(NewSummary(3, 4, []*planner.BuildPlan{p})); err != nil {
		t.Fatal(err)
	}
	var got Summary
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	want := Summary{Files: 3, Modules: 4, Targets: []TargetSummary{{
		Name: "Game", Type: descriptor.TargetGame, Modules: 4, Stages: 3, Fingerprint: p.ShortFingerprint(),
	}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Summary mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownFormat(t *testing.T) {
	t.Parallel()

	err := New(&bytes.Buffer{}, "xml", config.ColorNever).Modules(nil)
	if err == nil || !strings.Contains(err.Error(), "unknown output format") {
		t.Errorf("error = %v", err)
	}
}

func TestErrorCard(t *testing.T) {
	t.Parallel()

	s := New(&bytes.Buffer{}, config.OutputText, config.ColorNever).Styles()

	cycle := issue.WrapWithContext(&planerr.CycleError{Path: []string{"A", "B", "A"}}, "plan target", "Game")
	cycle.Suggestions = []string{"Break the cycle"}
	out := ErrorCard(s, cycle, false)
	for _, want := range []string{
		"✗ Error",
		"failed to plan target: Game: dependency cycle detected: A -> B -> A",
		"• Break the cycle",
		"kind: cycle  involves: A, B, A",
		"modgraph explain cycle",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("ErrorCard() missing %q:\n%s", want, out)
		}
	}

	plain := ErrorCard(s, errors.New("boom"), false)
	if strings.Contains(plain, "kind:") || !strings.Contains(plain, "boom") {
		t.Errorf("ErrorCard(plain) = %q", plain)
	}
}

func TestErrorDoc(t *testing.T) {
	t.Parallel()

	cycle := issue.WrapWithContext(&planerr.CycleError{Path: []string{"A", "B", "A"}}, "plan target", "Game")
	cycle.Suggestions = []string{"Break the cycle"}

	tests := []struct {
		name string
		err  error
		want ErrorDoc
	}{
		{
			name: "cycle",
			err:  cycle,
			want: ErrorDoc{
				Kind:        "cycle",
				Message:     "dependency cycle detected: A -> B -> A",
				Names:       []string{"A", "B", "A"},
				Path:        []string{"A", "B", "A"},
				Operation:   "plan target",
				Resource:    "Game",
				Suggestions: []string{"Break the cycle"},
			},
		},
		{
			name: "plain",
			err:  errors.New("boom"),
			want: ErrorDoc{Kind: "error", Message: "boom"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.want, NewErrorDoc(tt.err)); diff != "" {
				t.Errorf("NewErrorDoc() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRendererError(t *testing.T) {
	t.Parallel()

	doc := NewErrorDoc(&planerr.CycleError{Path: []string{"A", "B", "A"}})

	var buf bytes.Buffer
	if err := New(&buf, config.OutputJSON, config.ColorNever).Error(doc); err != nil {
		t.Fatalf("Error() = %v", err)
	}
	var got ErrorDoc
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if diff := cmp.Diff(doc, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	if err := New(&bytes.Buffer{}, config.OutputText, config.ColorNever).Error(doc); err == nil {
		t.Error("Error() on text output succeeded, want error")
	}
}

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/modgraph/modgraph/internal/planerr"
	"github.com/modgraph/modgraph/internal/planner"
	"github.com/modgraph/modgraph/internal/render"
	"github.com/modgraph/modgraph/internal/testutil"
	"github.com/modgraph/modgraph/pkg/types"
)

func readPlans(t *testing.T, out string) *planner.Document {
	t.Helper()
	doc, err := planner.ReadDocument(strings.NewReader(out))
	if err != nil {
		t.Fatalf("ReadDocument() error = %v\noutput:\n%s", err, out)
	}
	return doc
}

func TestPlan_LinearChain(t *testing.T) {
	t.Parallel()

	dir := writeDescriptors(t, linearChain)
	res := execute(t, "", "plan", "-d", dir, "-o", "json")
	if res.err != nil {
		t.Fatalf("plan error = %v", res.err)
	}

	doc := readPlans(t, res.stdout)
	p := doc.Plan("T")
	if p == nil {
		t.Fatalf("no plan for T in %s", res.stdout)
	}
	want := [][]string{{"A"}, {"B"}, {"C"}}
	if diff := cmp.Diff(want, p.Stages); diff != "" {
		t.Errorf("stages mismatch (-want +got):\n%s", diff)
	}
}

func TestPlan_Text(t *testing.T) {
	t.Parallel()

	dir := writeDescriptors(t, linearChain)
	res := execute(t, "", "plan", "T", "-d", dir, "--color", "never")
	if res.err != nil {
		t.Fatalf("plan error = %v", res.err)
	}
	for _, want := range []string{"T (game)", "stage 0: A", "stage 1: B", "stage 2: C"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("output missing %q:\n%s", want, res.stdout)
		}
	}
}

func TestGraph_PublicPropagation(t *testing.T) {
	t.Parallel()

	dir := writeDescriptors(t, privateOverPublic)
	res := execute(t, "", "graph", "T", "-d", dir, "-o", "json")
	if res.err != nil {
		t.Fatalf("graph error = %v", res.err)
	}

	var view render.GraphView
	if err := json.Unmarshal([]byte(res.stdout), &view); err != nil {
		t.Fatal(err)
	}
	var c *render.GraphModule
	for i := range view.Modules {
		if view.Modules[i].Name == "C" {
			c = &view.Modules[i]
		}
	}
	if c == nil {
		t.Fatalf("module C missing from %s", res.stdout)
	}
	if diff := cmp.Diff([]string{"B"}, c.Private); diff != "" {
		t.Errorf("C private deps (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"A"}, c.Implicit); diff != "" {
		t.Errorf("C implicit deps (-want +got):\n%s", diff)
	}

	plan := execute(t, "", "plan", "-d", dir, "-o", "json")
	if plan.err != nil {
		t.Fatal(plan.err)
	}
	p := readPlans(t, plan.stdout).Plan("T")
	a, _ := p.Position("A")
	cs, _ := p.Position("C")
	if a >= cs {
		t.Errorf("A at stage %d, C at stage %d; A must come first", a, cs)
	}
}

func TestPlan_Cycle(t *testing.T) {
	t.Parallel()

	dir := writeDescriptors(t, twoModuleCycle)
	res := execute(t, "", "plan", "-d", dir)

	var cycle *planerr.CycleError
	if !errors.As(res.err, &cycle) {
		t.Fatalf("plan error = %v, want CycleError", res.err)
	}
	if diff := cmp.Diff([]string{"A", "B", "A"}, cycle.Path); diff != "" {
		t.Errorf("cycle path (-want +got):\n%s", diff)
	}
	if got := exitCodeFor(res.err); got != types.ExitPlanningFailed {
		t.Errorf("exit code = %d, want %d", got, types.ExitPlanningFailed)
	}
	if res.stdout != "" {
		t.Errorf("no plan expected on failure, got:\n%s", res.stdout)
	}
}

func TestPlan_TargetModuleMismatch(t *testing.T) {
	t.Parallel()

	dir := writeDescriptors(t, gameOnlyInEditor)

	res := execute(t, "", "plan", "GameEditor", "-d", dir)
	var mismatch *planerr.TargetModuleMismatchError
	if !errors.As(res.err, &mismatch) {
		t.Fatalf("plan error = %v, want TargetModuleMismatchError", res.err)
	}
	if mismatch.Module != "GameplayOnly" || mismatch.Target != "GameEditor" {
		t.Errorf("mismatch = %+v", mismatch)
	}

	// The same module is fine in a client target.
	if res := execute(t, "", "plan", "GameClient", "-d", dir); res.err != nil {
		t.Errorf("plan GameClient error = %v", res.err)
	}
}

func TestPlan_UnknownTarget(t *testing.T) {
	t.Parallel()

	dir := writeDescriptors(t, linearChain)
	res := execute(t, "", "plan", "Ghost", "-d", dir)
	if !errors.Is(res.err, planerr.ErrUnknownTarget) {
		t.Errorf("plan error = %v, want ErrUnknownTarget", res.err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	dir := writeDescriptors(t, linearChain)
	res := execute(t, "", "validate", "-d", dir, "-o", "json")
	if res.err != nil {
		t.Fatalf("validate error = %v", res.err)
	}
	var sum render.Summary
	if err := json.Unmarshal([]byte(res.stdout), &sum); err != nil {
		t.Fatal(err)
	}
	if sum.Files != 1 || sum.Modules != 3 || len(sum.Targets) != 1 || sum.Targets[0].Stages != 3 {
		t.Errorf("summary = %+v", sum)
	}

	bad := execute(t, "", "validate", "-d", writeDescriptors(t, twoModuleCycle))
	if !errors.Is(bad.err, planerr.ErrCycle) {
		t.Errorf("validate error = %v, want ErrCycle", bad.err)
	}
}

// Not parallel: the default descriptor path "." depends on the working
// directory.
func TestPlan_DefaultDescriptorPath(t *testing.T) {
	testutil.MustChdir(t, writeDescriptors(t, linearChain))

	res := execute(t, "", "plan", "-o", "json")
	if res.err != nil {
		t.Fatalf("plan: %v\n%s", res.err, res.stderr)
	}
	if !strings.Contains(res.stdout, `"target": "T"`) {
		t.Errorf("plan output does not contain target T:\n%s", res.stdout)
	}
}

func TestGraph_ErrorNamesTarget(t *testing.T) {
	t.Parallel()

	dir := writeDescriptors(t, twoModuleCycle)
	res := execute(t, "", "graph", "T", "-d", dir)

	var cycle *planerr.CycleError
	if !errors.As(res.err, &cycle) {
		t.Fatalf("graph error = %v, want CycleError", res.err)
	}
	if want := "failed to resolve dependency graph: T: dependency cycle detected"; !strings.HasPrefix(res.err.Error(), want) {
		t.Errorf("graph error = %q, want prefix %q", res.err, want)
	}
}

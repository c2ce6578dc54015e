// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/modgraph/modgraph/internal/assembler"
	"github.com/modgraph/modgraph/internal/issue"
	"github.com/modgraph/modgraph/internal/loader"
	"github.com/modgraph/modgraph/internal/planerr"
)

func TestLoadError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		actionable bool
		resource   string
	}{
		{"parse error", &loader.ParseError{Path: "x.yaml", Format: loader.FormatYAML, Err: errors.New("bad")}, true, "x.yaml"},
		{"no descriptors", loader.ErrNoDescriptors, true, ""},
		{"unsupported", fmt.Errorf("a.txt: %w", loader.ErrUnsupportedFormat), true, ""},
		{"missing path", fmt.Errorf("descriptor path x: %w", fs.ErrNotExist), true, ""},
		{"planning error", &planerr.DuplicateNameError{Name: "Core"}, false, ""},
		{"canceled", context.Canceled, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := loadError(tt.err)
			if !errors.Is(got, tt.err) {
				t.Errorf("loadError() = %v, lost the cause", got)
			}
			var ae *issue.ActionableError
			if errors.As(got, &ae) != tt.actionable {
				t.Fatalf("loadError() = %T, actionable = %v", got, tt.actionable)
			}
			if tt.actionable && ae.Resource != tt.resource {
				t.Errorf("resource = %q, want %q", ae.Resource, tt.resource)
			}
		})
	}
}

func TestSession_RunStates(t *testing.T) {
	t.Parallel()

	newSession := func(t *testing.T, dir string) *session {
		t.Helper()
		app := NewApp(Dependencies{Config: staticProvider{}, Stdout: io.Discard, Stderr: io.Discard})
		app.flags.descriptors = []string{dir}
		root := NewRootCommand(app)
		root.SetContext(context.Background())
		sess, err := app.newSession(root)
		if err != nil {
			t.Fatal(err)
		}
		return sess
	}

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		sess := newSession(t, writeDescriptors(t, linearChain))
		if _, err := sess.plan(context.Background(), nil); err != nil {
			t.Fatal(err)
		}
		want := []assembler.State{
			assembler.StateIdle, assembler.StateLoading, assembler.StateSealed, assembler.StateGraphBuilt,
			assembler.StateValidated, assembler.StatePlanned, assembler.StateDone,
		}
		if diff := cmp.Diff(want, sess.run.History()); diff != "" {
			t.Errorf("history (-want +got):\n%s", diff)
		}
	})

	t.Run("load failure", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("modules: [{name: A, kind: runtime, colour: red}]"), 0o644); err != nil {
			t.Fatal(err)
		}
		sess := newSession(t, dir)
		err := sess.load(context.Background())
		if !errors.Is(err, loader.ErrParse) {
			t.Fatalf("load() error = %v, want ErrParse", err)
		}
		want := []assembler.State{assembler.StateIdle, assembler.StateLoading, assembler.StateFailed}
		if diff := cmp.Diff(want, sess.run.History()); diff != "" {
			t.Errorf("history (-want +got):\n%s", diff)
		}
		if sess.run.Err() != err {
			t.Errorf("run error = %v, want %v", sess.run.Err(), err)
		}
	})
}

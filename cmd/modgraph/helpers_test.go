// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/modgraph/modgraph/internal/config"
	"github.com/modgraph/modgraph/internal/testutil"
)

type (
	// staticProvider serves the default configuration without touching the
	// user's configuration directory.
	staticProvider struct {
		mutate func(*config.Config)
	}

	result struct {
		stdout string
		stderr string
		err    error
	}
)

func (p staticProvider) Load(_ context.Context, _ config.LoadOptions) (*config.Loaded, error) {
	cfg := config.DefaultConfig()
	if p.mutate != nil {
		p.mutate(cfg)
	}
	return &config.Loaded{Config: cfg}, nil
}

// execute runs the command tree with args and the given stdin.
func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := NewApp(Dependencies{Config: staticProvider{}, Stdout: &stdout, Stderr: &stderr})
	root := NewRootCommand(app)
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	err := root.ExecuteContext(context.Background())
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// writeDescriptors writes a YAML descriptor file into a new directory and
// returns the directory.
func writeDescriptors(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	testutil.MustWriteFile(t, content, dir, "descriptors.yaml")
	return dir
}

const linearChain = `
modules:
  - {name: A, kind: runtime}
  - {name: B, kind: runtime, public_deps: [A]}
  - {name: C, kind: runtime, public_deps: [B]}
targets:
  - {name: T, type: game, roots: [C]}
`

const privateOverPublic = `
modules:
  - {name: A, kind: runtime}
  - {name: B, kind: runtime, public_deps: [A]}
  - {name: C, kind: runtime, private_deps: [B]}
targets:
  - {name: T, type: game, roots: [C]}
`

const twoModuleCycle = `
modules:
  - {name: A, kind: runtime, public_deps: [B]}
  - {name: B, kind: runtime, public_deps: [A]}
targets:
  - {name: T, type: game, roots: [A]}
`

const gameOnlyInEditor = `
modules:
  - {name: Core, kind: runtime}
  - {name: GameplayOnly, kind: runtime, availability: game_only, public_deps: [Core]}
  - {name: Game, kind: runtime, private_deps: [GameplayOnly]}
targets:
  - {name: GameEditor, type: editor, roots: [Game]}
  - {name: GameClient, type: client, roots: [Game]}
`

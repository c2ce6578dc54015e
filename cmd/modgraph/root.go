// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/modgraph/modgraph/internal/config"
	"github.com/modgraph/modgraph/internal/issue"
	"github.com/modgraph/modgraph/internal/loader"
	"github.com/modgraph/modgraph/internal/planerr"
	"github.com/modgraph/modgraph/internal/render"
	"github.com/modgraph/modgraph/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the modgraph command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "modgraph",
		Short: "Resolve module dependencies and plan builds",
		Long: TitleStyle.Render("modgraph") + SubtitleStyle.Render(" - Resolve module dependencies and plan builds") + `

modgraph reads module and target descriptors written in CUE, TOML, YAML
or HCL, resolves every target's dependency graph with public dependency
propagation, rejects cycles and invalid edges, and prints a staged build
plan in which every module follows its dependencies.

` + SubtitleStyle.Render("Examples:") + `
  modgraph plan                       Plan every target
  modgraph plan MyGame -o json        Plan one target as JSON
  modgraph graph MyEditor             Show the resolved dependencies
  modgraph validate                   Check all descriptors
  modgraph explain cycle              Describe an error kind`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(app.stdout)
	root.SetErr(app.stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	f := root.PersistentFlags()
	f.StringVar(&app.flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/modgraph/config.cue)")
	f.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable debug logging and full error chains")
	f.StringVar(&app.flags.logLevel, "log-level", "", "minimum log level (debug, info, warn, error)")
	f.StringVarP(&app.flags.output, "output", "o", "", "output format ("+joinFormats()+")")
	f.StringVar(&app.flags.color, "color", "", "color mode (auto, always, never)")
	f.StringArrayVarP(&app.flags.descriptors, "descriptors", "d", nil,
		"descriptor file or directory, repeatable (extensions: "+strings.Join(loader.Extensions(), ", ")+")")

	root.AddCommand(
		newPlanCommand(app),
		newGraphCommand(app),
		newValidateCommand(app),
		newModulesCommand(app),
		newTargetsCommand(app),
		newDiffCommand(app),
		newExplainCommand(app),
		newConfigCommand(app),
	)
	return root
}

// Run executes the CLI with os.Args and returns the process exit code.
func Run() int {
	app := NewApp(Dependencies{})
	err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(app.handleError),
	)
	return int(exitCodeFor(err))
}

func versionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// handleError writes the error card for err, or the error document when the
// output format is structured. Usage errors also point at --help. A bare
// ExitError only sets the exit status.
func (a *App) handleError(w io.Writer, _ fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	r := render.New(w, a.errorFormat(), config.ColorMode(a.flags.color))
	if r.Structured() {
		if encErr := r.Error(render.NewErrorDoc(err, errorMatches...)); encErr == nil {
			return
		}
	}
	styles := r.Styles()
	fmt.Fprint(w, render.ErrorCard(styles, err, a.flags.verbose))

	if exitCodeFor(err) == types.ExitUsage {
		fmt.Fprintln(w, styles.Muted.Render("Run 'modgraph --help' for usage."))
		return
	}
	if _, ok := planerr.As(err); ok {
		return
	}
	if i := issue.ForError(err, errorMatches...); i != nil {
		fmt.Fprintln(w, styles.Muted.Render(fmt.Sprintf("Run 'modgraph explain %s' for details.", i.Id())))
	}
}

func joinFormats() string {
	formats := config.OutputFormats()
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = f.String()
	}
	return strings.Join(out, ", ")
}

// errorMatches maps non-planning sentinels to catalog entries.
var errorMatches = []issue.Match{
	{Err: loader.ErrParse, Id: issue.DescriptorParseFailedId},
	{Err: loader.ErrUnsupportedFormat, Id: issue.DescriptorParseFailedId},
	{Err: loader.ErrNoDescriptors, Id: issue.NoDescriptorsId},
	{Err: config.ErrInvalidConfigValue, Id: issue.ConfigLoadFailedId},
}

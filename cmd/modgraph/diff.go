// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/modgraph/modgraph/internal/issue"
	"github.com/modgraph/modgraph/internal/planner"
	"github.com/modgraph/modgraph/pkg/types"
)

func newDiffCommand(app *App) *cobra.Command {
	var exitCode bool
	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Compare two plan documents",
		Long: `Compare two plan documents written by 'modgraph plan -o json'. Targets
are matched by name; for each, the command reports added and removed
modules, modules that moved to another stage, modules whose descriptor
changed and changed build settings. Use "-" to read one document from
standard input.

Every plan's fingerprint is verified before comparing.`,
		Example: `  modgraph plan -o json > before.json
  modgraph plan -o json | modgraph diff before.json -`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.newSession(cmd)
			if err != nil {
				return err
			}
			old, err := readDocument(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			cur, err := readDocument(cmd.InOrStdin(), args[1])
			if err != nil {
				return err
			}

			d := planner.DiffDocuments(old, cur)
			if err := sess.renderer.Diff(d); err != nil {
				return err
			}
			if exitCode && !d.Empty() {
				return &ExitError{Code: types.ExitPlanningFailed}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "exit with status 1 when the documents differ")
	return cmd
}

// readDocument reads a plan document from path, or from stdin for "-".
func readDocument(stdin io.Reader, path string) (*planner.Document, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("read plan document").
				WithResource(path).
				WithSuggestion("Write a plan document with 'modgraph plan -o json > " + path + "'").
				Wrap(err).
				BuildError()
		}
		defer f.Close()
		r = f
	}

	doc, err := planner.ReadDocument(r)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("read plan document").
			WithResource(path).
			WithSuggestions(
				"Only JSON documents written by 'modgraph plan -o json' can be compared",
				"Regenerate the document if it was edited by hand",
			).
			Wrap(err).
			BuildError()
	}
	return doc, nil
}

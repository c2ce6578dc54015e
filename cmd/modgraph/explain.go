// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/modgraph/modgraph/internal/config"
	"github.com/modgraph/modgraph/internal/issue"
	"github.com/modgraph/modgraph/internal/render"
)

func newExplainCommand(app *App) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "explain [error-kind]",
		Short: "Describe an error kind and how to fix it",
		Long: `Print the catalog entry for an error kind. Without an argument, list
every entry. Kinds are accepted in snake_case or kebab-case.`,
		Example: `  modgraph explain
  modgraph explain cycle
  modgraph explain target-module-mismatch --raw`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			color := loaded.Config.Output.Color
			if len(args) == 0 {
				return listIssues(w, render.New(w, config.OutputText, color).Styles())
			}

			i := issue.Lookup(args[0])
			if i == nil {
				return usageError(fmt.Errorf("unknown error kind %q; run 'modgraph explain' to list them", args[0]))
			}
			if raw {
				_, err := io.WriteString(w, i.Markdown()+"\n")
				return err
			}
			out, err := i.Render(glamourStyle(w, color))
			if err != nil {
				return err
			}
			_, err = io.WriteString(w, out)
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the entry as markdown")
	return cmd
}

func listIssues(w io.Writer, s render.Styles) error {
	var sb strings.Builder
	for _, i := range issue.Values() {
		fmt.Fprintf(&sb, "%s  %s\n", s.Highlight.Render(fmt.Sprintf("%-26s", i.Id())), i.Title())
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// glamourStyle picks the markdown style for w. Plain output is used
// whenever colors are off.
func glamourStyle(w io.Writer, color config.ColorMode) string {
	out := termenv.NewOutput(w)
	switch {
	case color == config.ColorNever:
		return "notty"
	case color == config.ColorAuto && out.Profile == termenv.Ascii:
		return "notty"
	case out.HasDarkBackground():
		return "dark"
	default:
		return "light"
	}
}

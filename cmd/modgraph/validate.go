// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/modgraph/modgraph/internal/render"
)

func newValidateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check every descriptor and target",
		Long: `Load every descriptor, then build, check and plan every target. The
command fails with the first problem found and prints a summary
otherwise.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := app.newSession(cmd)
			if err != nil {
				return err
			}
			plans, err := sess.plan(cmd.Context(), nil)
			if err != nil {
				return err
			}
			modules, _ := sess.store.Len()
			return sess.renderer.Summary(render.NewSummary(len(sess.loaded.Files), modules, plans))
		},
	}
}

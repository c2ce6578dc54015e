// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/modgraph/modgraph/internal/issue"
	"github.com/modgraph/modgraph/internal/render"
)

func newGraphCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "graph <target>",
		Short: "Show the resolved dependencies of a target",
		Long: `Build and validate the dependency graph of one target and list, for
every module in its closure, the explicit public and private dependencies
and the implicit ones propagated through public dependencies.`,
		Example: `  modgraph graph MyEditor
  modgraph graph MyGame -o table`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.newSession(cmd)
			if err != nil {
				return err
			}
			if err := sess.load(cmd.Context()); err != nil {
				return err
			}
			v, err := sess.assembler().Resolve(cmd.Context(), sess.run, args[0])
			if err != nil {
				return issue.WrapWithContext(err, "resolve dependency graph", args[0])
			}
			return sess.renderer.Graph(render.NewGraphView(args[0], v.Graph()))
		},
	}
}

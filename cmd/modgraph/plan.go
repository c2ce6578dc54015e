// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/modgraph/modgraph/internal/loader"
	"github.com/modgraph/modgraph/internal/planner"
	"github.com/modgraph/modgraph/internal/watch"
	"github.com/modgraph/modgraph/pkg/fspath"
)

func newPlanCommand(app *App) *cobra.Command {
	var (
		watchMode bool
		debounce  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "plan [target...]",
		Short: "Compute build plans for targets",
		Long: `Compute the staged build plan of each named target, or of every target
when none is named. Modules in one stage have no dependencies on each
other; every module comes after all of its resolved dependencies.

The JSON output is the plan document read by 'modgraph diff'.

With --watch, the plans are recomputed from scratch whenever a descriptor
under the configured paths changes. Errors are reported and watching
continues until interrupted.`,
		Example: `  modgraph plan
  modgraph plan MyGame MyEditor
  modgraph plan -o json > plans.json
  modgraph plan --watch -d ./descriptors`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if watchMode {
				return app.watchPlans(cmd, args, debounce)
			}
			return app.planOnce(cmd, args)
		},
	}

	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "re-plan when descriptor files change")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before re-planning in watch mode")

	return cmd
}

func (a *App) planOnce(cmd *cobra.Command, targets []string) error {
	sess, err := a.newSession(cmd)
	if err != nil {
		return err
	}
	plans, err := sess.plan(cmd.Context(), targets)
	if err != nil {
		return err
	}
	return sess.renderer.Plans(planner.NewDocument(plans...))
}

// watchPlans plans once, then again after every batch of descriptor
// changes. Only configuration and watcher setup errors end the command.
func (a *App) watchPlans(cmd *cobra.Command, targets []string, debounce time.Duration) error {
	sess, err := a.newSession(cmd)
	if err != nil {
		return err
	}
	roots := fspath.Strings(sess.cfg.DescriptorPaths)

	replan := func() {
		if err := a.planOnce(cmd, targets); err != nil {
			a.handleError(cmd.ErrOrStderr(), fang.Styles{}, err)
		}
	}

	w, err := watch.New(watch.Config{
		Roots:    roots,
		Patterns: watch.PatternsForExtensions(loader.Extensions()),
		Debounce: debounce,
		Logger:   sess.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintln(cmd.ErrOrStderr(), SubtitleStyle.Render(fmt.Sprintf("%d descriptor file(s) changed, re-planning", len(changed))))
			replan()
			return ctx.Err()
		},
	})
	if err != nil {
		return loadError(err)
	}

	replan()
	fmt.Fprintln(cmd.ErrOrStderr(), SubtitleStyle.Render("Watching for descriptor changes. Press Ctrl+C to stop."))
	return w.Run(cmd.Context())
}

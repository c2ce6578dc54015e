// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"slices"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"

	"github.com/modgraph/modgraph/pkg/descriptor"
)

// moduleFilter selects modules for listing. Zero fields match everything.
type moduleFilter struct {
	plugin  string
	kind    string
	version string
}

func newModulesCommand(app *App) *cobra.Command {
	var filter moduleFilter
	cmd := &cobra.Command{
		Use:   "modules",
		Short: "List module descriptors",
		Example: `  modgraph modules
  modgraph modules --plugin UnrealMCP
  modgraph modules --version ">= 5.0, < 6"`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			match, err := filter.compile()
			if err != nil {
				return usageError(err)
			}
			sess, err := app.newSession(cmd)
			if err != nil {
				return err
			}
			if err := sess.load(cmd.Context()); err != nil {
				return err
			}
			var mods []descriptor.ModuleDescriptor
			for _, m := range sess.store.Modules() {
				if match(m) {
					mods = append(mods, m)
				}
			}
			return sess.renderer.Modules(mods)
		},
	}
	cmd.Flags().StringVar(&filter.plugin, "plugin", "", "only modules owned by this plugin")
	cmd.Flags().StringVar(&filter.kind, "kind", "", "only modules of this kind (library, plugin, runtime)")
	cmd.Flags().StringVar(&filter.version, "version", "", "only versioned modules satisfying this semver constraint")
	return cmd
}

// compile validates the filter and returns its predicate. Modules without
// a version never satisfy a version constraint.
func (f moduleFilter) compile() (func(descriptor.ModuleDescriptor) bool, error) {
	kind := descriptor.ModuleKind(f.kind)
	if kind != "" && !slices.Contains(descriptor.ModuleKinds(), kind) {
		return nil, fmt.Errorf("invalid --kind %q (valid: %v)", f.kind, descriptor.ModuleKinds())
	}
	var constraint *semver.Constraints
	if f.version != "" {
		c, err := semver.NewConstraint(f.version)
		if err != nil {
			return nil, fmt.Errorf("invalid --version constraint %q: %w", f.version, err)
		}
		constraint = c
	}

	return func(m descriptor.ModuleDescriptor) bool {
		if f.plugin != "" && m.Plugin != f.plugin {
			return false
		}
		if kind != "" && m.Kind != kind {
			return false
		}
		if constraint != nil {
			v, err := m.SemVer()
			if err != nil || v == nil {
				return false
			}
			return constraint.Check(v)
		}
		return true
	}, nil
}

func newTargetsCommand(app *App) *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "targets",
		Short: "List target descriptors",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			tt := descriptor.TargetType(typ)
			if tt != "" && !slices.Contains(descriptor.TargetTypes(), tt) {
				return usageError(fmt.Errorf("invalid --type %q (valid: %v)", typ, descriptor.TargetTypes()))
			}
			sess, err := app.newSession(cmd)
			if err != nil {
				return err
			}
			if err := sess.load(cmd.Context()); err != nil {
				return err
			}
			var targets []descriptor.TargetDescriptor
			for _, t := range sess.store.Targets() {
				if tt == "" || t.Type == tt {
					targets = append(targets, t)
				}
			}
			return sess.renderer.Targets(targets)
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "only targets of this type")
	return cmd
}

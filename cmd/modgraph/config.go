// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/modgraph/modgraph/internal/config"
	"github.com/modgraph/modgraph/internal/issue"
	"github.com/modgraph/modgraph/internal/render"
	"github.com/modgraph/modgraph/pkg/types"
)

// newConfigCommand creates the `modgraph config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage modgraph configuration",
		Long: `Manage modgraph configuration.

Configuration is read from the first file found of:
  - the file named by --config
  - config.cue in the user configuration directory
    (Linux: ~/.config/modgraph, macOS: ~/Library/Application Support/modgraph,
    Windows: %APPDATA%\modgraph)
  - modgraph.cue in the working directory

MODGRAPH_* environment variables override file values, for example
MODGRAPH_OUTPUT_FORMAT=json.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			r := render.New(cmd.OutOrStdout(), loaded.Config.Output.Format, loaded.Config.Output.Color)
			return r.Config(render.ConfigView{Path: loaded.Path, Config: loaded.Config})
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file locations",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfigPath(cmd, app)
		},
	})

	var local bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default configuration file",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.LocalConfigFileName
			if !local {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				path = p
			}
			return initConfig(cmd.OutOrStdout(), path, config.ColorMode(app.flags.color))
		},
	}
	initCmd.Flags().BoolVar(&local, "local", false, "write "+config.LocalConfigFileName+" in the working directory")
	cfgCmd.AddCommand(initCmd)

	var schema bool
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if schema {
				_, err := io.WriteString(cmd.OutOrStdout(), config.Schema())
				return err
			}
			loaded, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			content, err := config.GenerateCUE(loaded.Config)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), content)
			return err
		},
	}
	dumpCmd.Flags().BoolVar(&schema, "schema", false, "print the CUE schema instead")
	cfgCmd.AddCommand(dumpCmd)

	return cfgCmd
}

func showConfigPath(cmd *cobra.Command, app *App) error {
	w := cmd.OutOrStdout()
	userPath, err := config.DefaultPath()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "User config file: %s\n", userPath)
	fmt.Fprintf(w, "Local config file: %s\n", config.LocalConfigFileName)

	loaded, err := app.loadConfig(cmd.Context())
	if err != nil {
		return err
	}
	active := loaded.Path
	if active == "" {
		active = "(none, using defaults)"
	}
	fmt.Fprintf(w, "Active: %s\n", active)
	return nil
}

// initConfig writes the default configuration to path unless a file is
// already there.
func initConfig(w io.Writer, path string, color config.ColorMode) error {
	created, err := config.CreateDefaultConfig(types.FilesystemPath(path))
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("create configuration").
			WithResource(path).
			WithSuggestion("Check that the directory " + filepath.Dir(path) + " is writable").
			Wrap(err).
			BuildError()
	}

	styles := render.New(w, config.OutputText, color).Styles()
	if !created {
		fmt.Fprintf(w, "%s Configuration already exists at %s\n", styles.Warning.Render("!"), path)
		return nil
	}
	fmt.Fprintf(w, "%s Created default configuration at %s\n", styles.Success.Render("✓"), path)
	return nil
}

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/modgraph/modgraph/internal/config"
	"github.com/modgraph/modgraph/internal/issue"
	"github.com/modgraph/modgraph/pkg/types"
)

type (
	// App wires CLI services and shared dependencies. Every Cobra command
	// handler receives an App reference.
	App struct {
		Config config.Provider
		stdout io.Writer
		stderr io.Writer
		flags  globalFlags
		// output is the format of the last loaded configuration, used to
		// pick the error format.
		output config.OutputFormat
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Stdout io.Writer
		Stderr io.Writer
	}

	// globalFlags holds the persistent flag values of one invocation.
	globalFlags struct {
		configPath  string
		verbose     bool
		logLevel    string
		output      string
		color       string
		descriptors []string
	}
)

// errorFormat returns the format errors are written in: the configured one
// once configuration has loaded, the --output value before that.
func (a *App) errorFormat() config.OutputFormat {
	if a.output != "" {
		return a.output
	}
	return config.OutputFormat(a.flags.output)
}

// NewApp creates an App, filling unset dependencies with defaults.
func NewApp(deps Dependencies) *App {
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	return &App{Config: deps.Config, stdout: deps.Stdout, stderr: deps.Stderr}
}

// loadConfig loads the configuration and applies the flag overrides. The
// result is validated after the overrides so a bad --output value is
// reported like a bad config value.
func (a *App) loadConfig(ctx context.Context) (*config.Loaded, error) {
	loaded, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: types.FilesystemPath(a.flags.configPath)})
	if err != nil {
		return nil, usageError(err)
	}

	cfg := loaded.Config
	if a.flags.logLevel != "" {
		cfg.Log.Level = config.LogLevel(a.flags.logLevel)
	} else if a.flags.verbose {
		cfg.Log.Level = config.LogLevelDebug
	}
	if a.flags.output != "" {
		cfg.Output.Format = config.OutputFormat(a.flags.output)
	}
	if a.flags.color != "" {
		cfg.Output.Color = config.ColorMode(a.flags.color)
	}
	if len(a.flags.descriptors) > 0 {
		cfg.DescriptorPaths = nil
		for _, p := range a.flags.descriptors {
			cfg.DescriptorPaths = append(cfg.DescriptorPaths, types.FilesystemPath(p))
		}
	}

	if ok, errs := cfg.IsValid(); !ok {
		return nil, usageError(issue.NewErrorContext().
			WithOperation("apply command-line flags").
			WithSuggestions(
				"Check the values passed to --output, --color and --log-level",
				"Run 'modgraph --help' to see the accepted values",
			).
			Wrap(errs[0]).
			Build())
	}
	a.output = cfg.Output.Format
	return loaded, nil
}

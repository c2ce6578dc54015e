// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/modgraph/modgraph/internal/assembler"
	"github.com/modgraph/modgraph/internal/config"
	"github.com/modgraph/modgraph/internal/issue"
	"github.com/modgraph/modgraph/internal/loader"
	"github.com/modgraph/modgraph/internal/logging"
	"github.com/modgraph/modgraph/internal/planerr"
	"github.com/modgraph/modgraph/internal/planner"
	"github.com/modgraph/modgraph/internal/render"
	"github.com/modgraph/modgraph/internal/store"
)

type (
	// session is the per-invocation state shared by the planning commands.
	session struct {
		cfg      *config.Config
		logger   *slog.Logger
		renderer *render.Renderer
		store    *store.Store
		run      *assembler.Run
		loaded   loader.Summary
	}
)

// newSession loads the configuration and sets up logging and output.
func (a *App) newSession(cmd *cobra.Command) (*session, error) {
	loaded, err := a.loadConfig(cmd.Context())
	if err != nil {
		return nil, err
	}
	cfg := loaded.Config
	logger := logging.Setup(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if loaded.Path != "" {
		logger.Debug("loaded configuration", "path", loaded.Path)
	}
	return &session{
		cfg:      cfg,
		logger:   logger,
		renderer: render.New(cmd.OutOrStdout(), cfg.Output.Format, cfg.Output.Color),
		store:    store.New(),
		run:      assembler.NewRun(),
	}, nil
}

// load registers every descriptor found under the configured paths and
// seals the store, moving the run from Idle to Sealed.
func (s *session) load(ctx context.Context) error {
	if err := s.run.Transition(assembler.StateLoading); err != nil {
		return s.run.Fail(err)
	}

	l := loader.New(loader.WithLogger(s.logger))
	sum, err := l.LoadInto(ctx, s.store, s.cfg.DescriptorPaths...)
	if err != nil {
		return s.run.Fail(loadError(err))
	}
	s.loaded = sum

	if err := s.store.Seal(); err != nil {
		return s.run.Fail(err)
	}
	if err := s.run.Transition(assembler.StateSealed); err != nil {
		return s.run.Fail(err)
	}
	return nil
}

func (s *session) assembler() *assembler.Assembler {
	return assembler.New(s.store,
		assembler.WithDefaults(s.cfg.Defaults),
		assembler.WithParallelism(s.cfg.Planning.Parallelism),
		assembler.WithLogger(s.logger),
	)
}

// plan loads the descriptors and plans the named targets, or all of them.
func (s *session) plan(ctx context.Context, targets []string) ([]*planner.BuildPlan, error) {
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	plans, err := s.assembler().AssembleAll(ctx, s.run, targets)
	if err != nil {
		return nil, err
	}
	s.logger.Info("planned targets", "targets", len(plans), "state", s.run.State())
	return plans, nil
}

// loadError adds suggestions to loader failures. Planning errors raised
// while registering descriptors and cancellation are returned as is.
func loadError(err error) error {
	if _, ok := planerr.As(err); ok || errors.Is(err, context.Canceled) {
		return err
	}
	ec := issue.NewErrorContext().WithOperation("load descriptors").Wrap(err)

	var parseErr *loader.ParseError
	switch {
	case errors.As(err, &parseErr):
		ec.WithResource(parseErr.Path).WithSuggestions(
			"Fix the reported location in the descriptor file",
			"Run 'modgraph explain descriptor_parse_failed' for the accepted formats",
		)
	case errors.Is(err, loader.ErrNoDescriptors):
		ec.WithSuggestions(
			"Pass --descriptors with a file or directory",
			"Set descriptor_paths in the modgraph configuration",
		)
	case errors.Is(err, loader.ErrUnsupportedFormat):
		ec.WithSuggestion("Rename the file or point --descriptors at its directory")
	case errors.Is(err, fs.ErrNotExist):
		ec.WithSuggestion("Check the paths passed to --descriptors or set in descriptor_paths")
	}
	return ec.BuildError()
}

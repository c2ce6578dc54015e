// SPDX-License-Identifier: MPL-2.0

// Package logging builds the process logger: a charmbracelet/log logger
// exposed through log/slog so library packages only depend on slog.
package logging

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"

	"github.com/modgraph/modgraph/internal/config"
)

// New creates an isolated logger writing to w. Unknown levels fall back to
// warn and unknown formats to text. It does not set the global logger.
func New(w io.Writer, level config.LogLevel, format config.LogFormat) *slog.Logger {
	lvl, err := log.ParseLevel(level.String())
	if err != nil {
		lvl = log.WarnLevel
	}

	var formatter log.Formatter
	switch format {
	case config.LogFormatJSON:
		formatter = log.JSONFormatter
	case config.LogFormatLogfmt:
		formatter = log.LogfmtFormatter
	default:
		formatter = log.TextFormatter
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Formatter:       formatter,
		Prefix:          config.AppName,
		ReportTimestamp: format != config.LogFormatText,
	})
	return slog.New(logger)
}

// Setup creates a logger with New and installs it as the slog default.
func Setup(w io.Writer, level config.LogLevel, format config.LogFormat) *slog.Logger {
	logger := New(w, level, format)
	slog.SetDefault(logger)
	return logger
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

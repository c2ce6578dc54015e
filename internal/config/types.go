// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"

	"github.com/modgraph/modgraph/pkg/descriptor"
	"github.com/modgraph/modgraph/pkg/types"
)

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"

	LogFormatText   LogFormat = "text"
	LogFormatJSON   LogFormat = "json"
	LogFormatLogfmt LogFormat = "logfmt"

	OutputText  OutputFormat = "text"
	OutputTable OutputFormat = "table"
	OutputJSON  OutputFormat = "json"
	OutputYAML  OutputFormat = "yaml"
	OutputTOML  OutputFormat = "toml"

	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"

	// MaxParallelism bounds planning.parallelism.
	MaxParallelism = 256
)

var (
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrInvalidConfigValue is the sentinel error wrapped by InvalidValueError.
	ErrInvalidConfigValue = errors.New("invalid config value")
)

type (
	// LogLevel is the minimum level written to stderr.
	LogLevel string
	// LogFormat selects the log line formatter.
	LogFormat string
	// OutputFormat selects how results are written to stdout.
	OutputFormat string
	// ColorMode controls ANSI styling of text output.
	ColorMode string

	// Config is the modgraph configuration.
	Config struct {
		// DescriptorPaths are files or directories searched for descriptors
		// when --descriptors is not given.
		DescriptorPaths []types.FilesystemPath `json:"descriptor_paths" yaml:"descriptor_paths" toml:"descriptor_paths" mapstructure:"descriptor_paths"`
		Log             LogConfig              `json:"log" yaml:"log" toml:"log" mapstructure:"log"`
		Output          OutputConfig           `json:"output" yaml:"output" toml:"output" mapstructure:"output"`
		Planning        PlanningConfig         `json:"planning" yaml:"planning" toml:"planning" mapstructure:"planning"`
		// Defaults fill any build setting a target leaves unset.
		Defaults descriptor.BuildSettings `json:"defaults" yaml:"defaults" toml:"defaults" mapstructure:"defaults"`
	}

	// LogConfig configures the logger.
	LogConfig struct {
		Level  LogLevel  `json:"level" yaml:"level" toml:"level" mapstructure:"level"`
		Format LogFormat `json:"format" yaml:"format" toml:"format" mapstructure:"format"`
	}

	// OutputConfig configures result rendering.
	OutputConfig struct {
		Format OutputFormat `json:"format" yaml:"format" toml:"format" mapstructure:"format"`
		Color  ColorMode    `json:"color" yaml:"color" toml:"color" mapstructure:"color"`
	}

	// PlanningConfig configures the assembler.
	PlanningConfig struct {
		// Parallelism is the number of targets processed concurrently.
		Parallelism int `json:"parallelism" yaml:"parallelism" toml:"parallelism" mapstructure:"parallelism"`
	}

	// InvalidValueError is returned when a config field holds a value outside
	// its allowed set.
	InvalidValueError struct {
		Field string
		Value string
		Valid []string
	}

	// InvalidConfigError collects field-level validation errors.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		DescriptorPaths: []types.FilesystemPath{"."},
		Log:             LogConfig{Level: LogLevelWarn, Format: LogFormatText},
		Output:          OutputConfig{Format: OutputText, Color: ColorAuto},
		Planning:        PlanningConfig{Parallelism: 4},
		Defaults:        descriptor.DefaultBuildSettings(),
	}
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid %s %q (valid: %v)", e.Field, e.Value, e.Valid)
}

// Unwrap returns ErrInvalidConfigValue for errors.Is() compatibility.
func (e *InvalidValueError) Unwrap() error { return ErrInvalidConfigValue }

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig and the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

func oneOf[T ~string](field string, v T, valid ...T) []error {
	for _, ok := range valid {
		if v == ok {
			return nil
		}
	}
	names := make([]string, len(valid))
	for i, ok := range valid {
		names[i] = string(ok)
	}
	return []error{&InvalidValueError{Field: field, Value: string(v), Valid: names}}
}

func (l LogLevel) String() string { return string(l) }

// IsValid reports whether l is a known level.
func (l LogLevel) IsValid() (bool, []error) {
	errs := oneOf("log.level", l, LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError)
	return errs == nil, errs
}

func (f LogFormat) String() string { return string(f) }

// IsValid reports whether f is a known log format.
func (f LogFormat) IsValid() (bool, []error) {
	errs := oneOf("log.format", f, LogFormatText, LogFormatJSON, LogFormatLogfmt)
	return errs == nil, errs
}

func (f OutputFormat) String() string { return string(f) }

// IsValid reports whether f is a known output format.
func (f OutputFormat) IsValid() (bool, []error) {
	errs := oneOf("output.format", f, OutputFormats()...)
	return errs == nil, errs
}

// OutputFormats lists the accepted output formats.
func OutputFormats() []OutputFormat {
	return []OutputFormat{OutputText, OutputTable, OutputJSON, OutputYAML, OutputTOML}
}

func (c ColorMode) String() string { return string(c) }

// IsValid reports whether c is a known color mode.
func (c ColorMode) IsValid() (bool, []error) {
	errs := oneOf("output.color", c, ColorAuto, ColorAlways, ColorNever)
	return errs == nil, errs
}

// IsValid validates every field and wraps the failures in InvalidConfigError.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	for _, p := range c.DescriptorPaths {
		if ok, pathErrs := p.IsValid(); !ok {
			errs = append(errs, pathErrs...)
		}
	}
	for _, check := range []func() (bool, []error){
		c.Log.Level.IsValid, c.Log.Format.IsValid, c.Output.Format.IsValid, c.Output.Color.IsValid, c.Defaults.IsValid,
	} {
		if ok, fieldErrs := check(); !ok {
			errs = append(errs, fieldErrs...)
		}
	}
	if c.Planning.Parallelism < 1 || c.Planning.Parallelism > MaxParallelism {
		errs = append(errs, fmt.Errorf("%w: planning.parallelism must be between 1 and %d, got %d",
			ErrInvalidConfigValue, MaxParallelism, c.Planning.Parallelism))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"

	"github.com/modgraph/modgraph/internal/issue"
	"github.com/modgraph/modgraph/pkg/cueutil"
	"github.com/modgraph/modgraph/pkg/descriptor"
	"github.com/modgraph/modgraph/pkg/fspath"
	"github.com/modgraph/modgraph/pkg/types"
)

const (
	// AppName is the application name.
	AppName = "modgraph"
	// ConfigFileName is the name of the config file inside ConfigDir.
	ConfigFileName = "config.cue"
	// LocalConfigFileName is looked up in the working directory.
	LocalConfigFileName = "modgraph.cue"
	// EnvPrefix prefixes environment overrides.
	EnvPrefix = "MODGRAPH"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the modgraph configuration directory: %APPDATA% on
// Windows, ~/Library/Application Support on macOS and $XDG_CONFIG_HOME
// (defaulting to ~/.config) elsewhere.
//
//nolint:revive // ConfigDir reads better than Dir at call sites
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// newViper returns a Viper instance holding the defaults and wired for
// MODGRAPH_ environment overrides.
func newViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	paths := make([]string, len(defaults.DescriptorPaths))
	for i, p := range defaults.DescriptorPaths {
		paths[i] = p.String()
	}
	v.SetDefault("descriptor_paths", paths)
	v.SetDefault("log.level", string(defaults.Log.Level))
	v.SetDefault("log.format", string(defaults.Log.Format))
	v.SetDefault("output.format", string(defaults.Output.Format))
	v.SetDefault("output.color", string(defaults.Output.Color))
	v.SetDefault("planning.parallelism", defaults.Planning.Parallelism)
	v.SetDefault("defaults."+descriptor.SettingOptimizationLevel, string(defaults.Defaults.OptimizationLevel))
	v.SetDefault("defaults."+descriptor.SettingIncludeOrder, string(defaults.Defaults.IncludeOrder))
	v.SetDefault("defaults."+descriptor.SettingBuildSettingsVersion, string(defaults.Defaults.BuildSettingsVersion))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// loadWithOptions performs option-driven config loading. It returns the
// config and the path of the file it came from, empty when only defaults
// and environment applied.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := newViper()

	resolvedPath, explicit, err := resolvePath(opts)
	if err != nil {
		return nil, "", err
	}
	if explicit && !fileExists(resolvedPath) {
		return nil, "", issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(resolvedPath).
			WithSuggestion("Verify the file path is correct").
			WithSuggestion("Use 'modgraph config init' to write a default configuration").
			Wrap(fmt.Errorf("config file not found: %s", resolvedPath)).
			BuildError()
	}
	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("See 'modgraph explain config_load_failed'").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	// Environment overrides bypass the CUE schema, so validate again.
	if ok, errs := cfg.IsValid(); !ok {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Check MODGRAPH_* environment variables for typos").
			Wrap(errs[0]).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// resolvePath picks the config file. explicit is true when the caller named
// the file and it must therefore exist. An empty path means no file was
// found and defaults apply.
func resolvePath(opts LoadOptions) (path string, explicit bool, err error) {
	if opts.ConfigFilePath != "" {
		return opts.ConfigFilePath.String(), true, nil
	}

	cfgDir := opts.ConfigDirPath.String()
	if cfgDir == "" {
		if cfgDir, err = ConfigDir(); err != nil {
			return "", false, err
		}
	}
	if p := filepath.Join(cfgDir, ConfigFileName); fileExists(p) {
		return p, false, nil
	}

	local := fspath.JoinStr(opts.BaseDir, LocalConfigFileName).String()
	if fileExists(local) {
		return local, false, nil
	}
	return "", false, nil
}

// loadCUEIntoViper validates a CUE file against #Config and merges it into
// Viper. Config decodes to a map rather than a struct so that Viper keeps
// precedence over defaults and environment.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	ctx := cuecontext.New()
	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return cueutil.FormatError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return cueutil.FormatError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return cueutil.FormatError(err, path)
	}
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// GenerateCUE renders cfg as a CUE config file.
func GenerateCUE(cfg *Config) (string, error) {
	body, err := cueutil.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return "// modgraph configuration\n// Run 'modgraph config dump' to see every key.\n\n" + string(body), nil
}

// CreateDefaultConfig writes the default configuration to path, creating
// parent directories. An existing file is left untouched and reported with
// created false.
func CreateDefaultConfig(path types.FilesystemPath) (created bool, err error) {
	p := path.String()
	if fileExists(p) {
		return false, nil
	}
	if err := os.MkdirAll(fspath.Dir(path).String(), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	content, err := GenerateCUE(DefaultConfig())
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}
	return true, nil
}

// DefaultPath returns the config file path inside ConfigDir.
func DefaultPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// Schema returns the embedded CUE schema.
func Schema() string { return configSchema }

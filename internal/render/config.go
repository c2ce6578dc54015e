// SPDX-License-Identifier: MPL-2.0

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/modgraph/modgraph/internal/config"
)

// ConfigView is the effective configuration and the file it came from.
type ConfigView struct {
	// Path is empty when only defaults and environment applied.
	Path   string         `json:"path" yaml:"path" toml:"path"`
	Config *config.Config `json:"config" yaml:"config" toml:"config"`
}

// Config writes the effective configuration.
func (r *Renderer) Config(view ConfigView) error {
	return r.emit(view, textFunc(func(w io.Writer, s Styles) error { return writeConfigText(w, s, view) }), nil)
}

func writeConfigText(w io.Writer, s Styles, view ConfigView) error {
	var sb strings.Builder
	kv := func(indent, key string, value any) {
		fmt.Fprintf(&sb, "%s%s %s\n", indent, s.Label.Render(key+":"), s.Success.Render(fmt.Sprint(value)))
	}

	sb.WriteString(s.Title.Render("Current Configuration") + "\n\n")
	if view.Path == "" {
		fmt.Fprintf(&sb, "%s %s\n\n", s.Label.Render("Config file:"), s.Muted.Render("(using defaults)"))
	} else {
		fmt.Fprintf(&sb, "%s %s\n\n", s.Label.Render("Config file:"), view.Path)
	}

	cfg := view.Config
	sb.WriteString(s.Label.Render("descriptor_paths:") + "\n")
	for _, p := range cfg.DescriptorPaths {
		sb.WriteString("  - " + s.Success.Render(p.String()) + "\n")
	}
	sb.WriteString(s.Label.Render("log:") + "\n")
	kv("  ", "level", cfg.Log.Level)
	kv("  ", "format", cfg.Log.Format)
	sb.WriteString(s.Label.Render("output:") + "\n")
	kv("  ", "format", cfg.Output.Format)
	kv("  ", "color", cfg.Output.Color)
	sb.WriteString(s.Label.Render("planning:") + "\n")
	kv("  ", "parallelism", cfg.Planning.Parallelism)
	sb.WriteString(s.Label.Render("defaults:") + "\n")
	kv("  ", "optimization_level", cfg.Defaults.OptimizationLevel)
	kv("  ", "include_order", cfg.Defaults.IncludeOrder)
	kv("  ", "build_settings_version", cfg.Defaults.BuildSettingsVersion)

	_, err := io.WriteString(w, sb.String())
	return err
}

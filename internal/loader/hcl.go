// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/modgraph/modgraph/pkg/descriptor"
	"github.com/modgraph/modgraph/pkg/types"
)

type (
	// hclFile is the top-level structure of an HCL descriptor file:
	//
	//	module "Engine" {
	//	  kind        = "runtime"
	//	  public_deps = ["Core"]
	//	}
	//
	//	target "Game" {
	//	  type     = "game"
	//	  roots    = ["Engine"]
	//	  settings = { optimization_level = "shipping" }
	//	}
	hclFile struct {
		Modules []hclModule `hcl:"module,block"`
		Targets []hclTarget `hcl:"target,block"`
	}

	hclModule struct {
		Name         string   `hcl:"name,label"`
		Kind         string   `hcl:"kind"`
		Availability string   `hcl:"availability,optional"`
		Plugin       string   `hcl:"plugin,optional"`
		PCHUsage     string   `hcl:"pch_usage,optional"`
		Version      string   `hcl:"version,optional"`
		Description  string   `hcl:"description,optional"`
		PublicDeps   []string `hcl:"public_deps,optional"`
		PrivateDeps  []string `hcl:"private_deps,optional"`
	}

	hclTarget struct {
		Name  string   `hcl:"name,label"`
		Type  string   `hcl:"type"`
		Roots []string `hcl:"roots"`
		// Settings stays an expression so the map can be checked key by key.
		Settings hcl.Expression `hcl:"settings,optional"`
	}
)

func decodeHCL(path string, data []byte) (*Document, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, diags
	}

	var raw hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, diags
	}

	doc := &Document{}
	for _, m := range raw.Modules {
		doc.Modules = append(doc.Modules, descriptor.ModuleDescriptor{
			Name:         m.Name,
			Kind:         descriptor.ModuleKind(m.Kind),
			Availability: descriptor.Availability(m.Availability),
			Plugin:       m.Plugin,
			PCHUsage:     descriptor.PCHUsage(m.PCHUsage),
			Version:      m.Version,
			Description:  types.DescriptionText(m.Description),
			PublicDeps:   m.PublicDeps,
			PrivateDeps:  m.PrivateDeps,
		})
	}
	for _, t := range raw.Targets {
		settings, err := decodeHCLSettings(t.Settings)
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", t.Name, err)
		}
		doc.Targets = append(doc.Targets, descriptor.TargetDescriptor{
			Name:     t.Name,
			Type:     descriptor.TargetType(t.Type),
			Roots:    t.Roots,
			Settings: settings,
		})
	}
	return doc, nil
}

// decodeHCLSettings evaluates the settings expression and converts the
// resulting object or map of strings into BuildSettings.
func decodeHCLSettings(expr hcl.Expression) (descriptor.BuildSettings, error) {
	if expr == nil {
		return descriptor.BuildSettings{}, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return descriptor.BuildSettings{}, diags
	}
	if val.IsNull() {
		return descriptor.BuildSettings{}, nil
	}
	ty := val.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return descriptor.BuildSettings{}, fmt.Errorf("settings must be an object, got %s", ty.FriendlyName())
	}

	raw := make(map[string]string, val.LengthInt())
	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		key := k.AsString()
		if v.IsNull() || !v.IsKnown() || v.Type() != cty.String {
			return descriptor.BuildSettings{}, fmt.Errorf("setting %q must be a string, got %s", key, v.Type().FriendlyName())
		}
		raw[key] = v.AsString()
	}
	return descriptor.SettingsFromMap(raw)
}

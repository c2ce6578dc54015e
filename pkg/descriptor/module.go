// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Masterminds/semver/v3"

	"github.com/modgraph/modgraph/pkg/types"
)

// ErrInvalidVersion is the sentinel wrapped by InvalidVersionError.
var ErrInvalidVersion = errors.New("invalid module version")

type (
	// Descriptor is implemented by ModuleDescriptor and TargetDescriptor so a
	// store can register either through one entry point.
	Descriptor interface {
		Identity() string
		Origin() string
	}

	// ModuleDescriptor declares a named compilation unit and the modules it
	// depends on. Public dependencies are re-exported to consumers, private
	// ones are not.
	ModuleDescriptor struct {
		Name         string                `json:"name" yaml:"name" toml:"name"`
		Kind         ModuleKind            `json:"kind" yaml:"kind" toml:"kind"`
		Availability Availability          `json:"availability,omitempty" yaml:"availability,omitempty" toml:"availability,omitempty"`
		Plugin       string                `json:"plugin,omitempty" yaml:"plugin,omitempty" toml:"plugin,omitempty"`
		PCHUsage     PCHUsage              `json:"pch_usage,omitempty" yaml:"pch_usage,omitempty" toml:"pch_usage,omitempty"`
		Version      string                `json:"version,omitempty" yaml:"version,omitempty" toml:"version,omitempty"`
		Description  types.DescriptionText `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
		PublicDeps   []string              `json:"public_deps,omitempty" yaml:"public_deps,omitempty" toml:"public_deps,omitempty"`
		PrivateDeps  []string              `json:"private_deps,omitempty" yaml:"private_deps,omitempty" toml:"private_deps,omitempty"`

		// Source is the file the descriptor was loaded from, if any.
		Source string `json:"-" yaml:"-" toml:"-"`
	}

	// InvalidVersionError is returned when Version is set but is not a
	// strict semantic version.
	InvalidVersionError struct {
		Module  string
		Version string
		Err     error
	}
)

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("module %q: invalid version %q: %v", e.Module, e.Version, e.Err)
}

// Unwrap returns ErrInvalidVersion for errors.Is() compatibility.
func (e *InvalidVersionError) Unwrap() error { return ErrInvalidVersion }

// Identity returns the module name.
func (m ModuleDescriptor) Identity() string { return m.Name }

// Origin returns the file the module was loaded from.
func (m ModuleDescriptor) Origin() string { return m.Source }

// IsValid checks names, enums and the optional version. Self references and
// conflicting visibility are graph-level problems and are left to the checker.
func (m ModuleDescriptor) IsValid() (bool, []error) {
	var errs []error
	if err := ValidateName("module name", m.Name); err != nil {
		errs = append(errs, err)
	}
	if err := m.Kind.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := m.Availability.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := m.PCHUsage.Validate(); err != nil {
		errs = append(errs, err)
	}
	if m.Plugin != "" {
		if err := ValidateName("plugin name", m.Plugin); err != nil {
			errs = append(errs, err)
		}
	}
	if m.Version != "" {
		if _, err := semver.StrictNewVersion(m.Version); err != nil {
			errs = append(errs, &InvalidVersionError{Module: m.Name, Version: m.Version, Err: err})
		}
	}
	if ok, descErrs := m.Description.IsValid(); !ok {
		errs = append(errs, descErrs...)
	}
	for _, dep := range m.PublicDeps {
		if err := ValidateName("public dependency", dep); err != nil {
			errs = append(errs, err)
		}
	}
	for _, dep := range m.PrivateDeps {
		if err := ValidateName("private dependency", dep); err != nil {
			errs = append(errs, err)
		}
	}
	return len(errs) == 0, errs
}

// SemVer parses Version. It returns nil when no version is declared.
func (m ModuleDescriptor) SemVer() (*semver.Version, error) {
	if m.Version == "" {
		return nil, nil
	}
	v, err := semver.StrictNewVersion(m.Version)
	if err != nil {
		return nil, &InvalidVersionError{Module: m.Name, Version: m.Version, Err: err}
	}
	return v, nil
}

// Clone returns a deep copy of m.
func (m ModuleDescriptor) Clone() ModuleDescriptor {
	m.PublicDeps = slices.Clone(m.PublicDeps)
	m.PrivateDeps = slices.Clone(m.PrivateDeps)
	return m
}

// Declared returns every declared dependency as an edge, public ones first,
// each group in declaration order.
func (m ModuleDescriptor) Declared() []DependencyEdge {
	edges := make([]DependencyEdge, 0, len(m.PublicDeps)+len(m.PrivateDeps))
	for _, dep := range m.PublicDeps {
		edges = append(edges, DependencyEdge{Consumer: m.Name, Dependency: dep, Visibility: VisibilityPublic})
	}
	for _, dep := range m.PrivateDeps {
		edges = append(edges, DependencyEdge{Consumer: m.Name, Dependency: dep, Visibility: VisibilityPrivate})
	}
	return edges
}

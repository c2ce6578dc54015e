// SPDX-License-Identifier: MPL-2.0

package descriptortest

import (
	"testing"

	"github.com/modgraph/modgraph/internal/store"
	"github.com/modgraph/modgraph/pkg/descriptor"
)

type (
	// ModuleOption configures a test module.
	ModuleOption func(*descriptor.ModuleDescriptor)

	// TargetOption configures a test target.
	TargetOption func(*descriptor.TargetDescriptor)
)

// Module returns a runtime module with no dependencies unless options add them.
func Module(name string, opts ...ModuleOption) descriptor.ModuleDescriptor {
	m := descriptor.ModuleDescriptor{Name: name, Kind: descriptor.KindRuntime}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Public appends public dependencies.
func Public(deps ...string) ModuleOption {
	return func(m *descriptor.ModuleDescriptor) { m.PublicDeps = append(m.PublicDeps, deps...) }
}

// Private appends private dependencies.
func Private(deps ...string) ModuleOption {
	return func(m *descriptor.ModuleDescriptor) { m.PrivateDeps = append(m.PrivateDeps, deps...) }
}

// Availability sets the module availability.
func Availability(a descriptor.Availability) ModuleOption {
	return func(m *descriptor.ModuleDescriptor) { m.Availability = a }
}

// Plugin marks the module as owned by plugin and sets KindPlugin.
func Plugin(plugin string) ModuleOption {
	return func(m *descriptor.ModuleDescriptor) {
		m.Kind = descriptor.KindPlugin
		m.Plugin = plugin
	}
}

// PCH sets the precompiled header mode.
func PCH(p descriptor.PCHUsage) ModuleOption {
	return func(m *descriptor.ModuleDescriptor) { m.PCHUsage = p }
}

// Source records the file the module claims to come from.
func Source(path string) ModuleOption {
	return func(m *descriptor.ModuleDescriptor) { m.Source = path }
}

// Target returns a target of the given type and roots.
func Target(name string, typ descriptor.TargetType, roots ...string) descriptor.TargetDescriptor {
	return TargetWith(name, typ, roots)
}

// TargetWith is Target with options.
func TargetWith(name string, typ descriptor.TargetType, roots []string, opts ...TargetOption) descriptor.TargetDescriptor {
	t := descriptor.TargetDescriptor{Name: name, Type: typ, Roots: roots}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// Settings sets the target build settings.
func Settings(s descriptor.BuildSettings) TargetOption {
	return func(t *descriptor.TargetDescriptor) { t.Settings = s }
}

// SealedStore registers every descriptor and seals the store. The test fails
// immediately on any registration error.
func SealedStore(t testing.TB, descs ...descriptor.Descriptor) *store.Store {
	t.Helper()
	s := OpenStore(t, descs...)
	if err := s.Seal(); err != nil {
		t.Fatalf("failed to seal store: %v", err)
	}
	return s
}

// OpenStore registers every descriptor and leaves the store open.
func OpenStore(t testing.TB, descs ...descriptor.Descriptor) *store.Store {
	t.Helper()
	s := store.New()
	for _, d := range descs {
		if err := s.Register(d); err != nil {
			t.Fatalf("failed to register %s: %v", d.Identity(), err)
		}
	}
	return s
}

// SPDX-License-Identifier: MPL-2.0

// Package store holds the module and target descriptors of a planning run.
//
// A Store starts open: descriptors are registered, typically by the loader.
// Seal turns it read-only for the rest of the run. Modules and targets share
// a single namespace so that a dependency naming a target can be told apart
// from an unresolved one.
package store

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/modgraph/modgraph/internal/planerr"
	"github.com/modgraph/modgraph/pkg/descriptor"
)

var (
	// ErrStoreSealed is returned when registering into a sealed store or
	// sealing it twice.
	ErrStoreSealed = errors.New("descriptor store is sealed")

	// ErrInvalidDescriptor is the sentinel wrapped by InvalidDescriptorError.
	ErrInvalidDescriptor = errors.New("invalid descriptor")
)

type (
	// Store is the descriptor registry. The zero value is not usable; call New.
	Store struct {
		// mu serializes writers and the seal transition. Once sealed is set,
		// the maps are never written again and readers skip the lock.
		mu     sync.Mutex
		sealed atomic.Bool

		modules map[string]descriptor.ModuleDescriptor
		targets map[string]descriptor.TargetDescriptor
	}

	// InvalidDescriptorError wraps the validation errors of a rejected descriptor.
	InvalidDescriptorError struct {
		Name   string
		Source string
		Errs   []error
	}
)

func (e *InvalidDescriptorError) Error() string {
	where := e.Name
	if e.Source != "" {
		where = fmt.Sprintf("%s (%s)", e.Name, e.Source)
	}
	return fmt.Sprintf("invalid descriptor %s: %v", where, errors.Join(e.Errs...))
}

// Unwrap exposes both the sentinel and the individual validation errors.
func (e *InvalidDescriptorError) Unwrap() []error {
	return append([]error{ErrInvalidDescriptor}, e.Errs...)
}

// New returns an empty, open Store.
func New() *Store {
	return &Store{
		modules: make(map[string]descriptor.ModuleDescriptor),
		targets: make(map[string]descriptor.TargetDescriptor),
	}
}

// Register adds a module or target descriptor.
func (s *Store) Register(d descriptor.Descriptor) error {
	switch v := d.(type) {
	case descriptor.ModuleDescriptor:
		return s.RegisterModule(v)
	case *descriptor.ModuleDescriptor:
		return s.RegisterModule(*v)
	case descriptor.TargetDescriptor:
		return s.RegisterTarget(v)
	case *descriptor.TargetDescriptor:
		return s.RegisterTarget(*v)
	default:
		return fmt.Errorf("unsupported descriptor type %T", d)
	}
}

// RegisterModule validates and stores a copy of m.
func (s *Store) RegisterModule(m descriptor.ModuleDescriptor) error {
	if ok, errs := m.IsValid(); !ok {
		return &InvalidDescriptorError{Name: m.Name, Source: m.Source, Errs: errs}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkWritable(m.Name, m.Source); err != nil {
		return err
	}
	s.modules[m.Name] = m.Clone()
	return nil
}

// RegisterTarget validates and stores a copy of t.
func (s *Store) RegisterTarget(t descriptor.TargetDescriptor) error {
	if ok, errs := t.IsValid(); !ok {
		return &InvalidDescriptorError{Name: t.Name, Source: t.Source, Errs: errs}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkWritable(t.Name, t.Source); err != nil {
		return err
	}
	s.targets[t.Name] = t.Clone()
	return nil
}

// checkWritable must be called with mu held.
func (s *Store) checkWritable(name, source string) error {
	if s.sealed.Load() {
		return ErrStoreSealed
	}
	if existing, ok := s.modules[name]; ok {
		return &planerr.DuplicateNameError{Name: name, ExistingSource: existing.Source, IncomingSource: source}
	}
	if existing, ok := s.targets[name]; ok {
		return &planerr.DuplicateNameError{Name: name, ExistingSource: existing.Source, IncomingSource: source}
	}
	return nil
}

// Seal makes the store read-only. It can happen only once.
func (s *Store) Seal() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sealed.Load() {
		return ErrStoreSealed
	}
	s.sealed.Store(true)
	return nil
}

// Sealed reports whether Seal has been called.
func (s *Store) Sealed() bool { return s.sealed.Load() }

// read runs fn without locking once the store is sealed.
func (s *Store) read(fn func()) {
	if s.sealed.Load() {
		fn()
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// Module returns a copy of the named module descriptor.
func (s *Store) Module(name string) (descriptor.ModuleDescriptor, error) {
	var (
		m  descriptor.ModuleDescriptor
		ok bool
	)
	s.read(func() { m, ok = s.modules[name] })
	if !ok {
		return descriptor.ModuleDescriptor{}, &planerr.UnknownModuleError{Name: name}
	}
	return m.Clone(), nil
}

// Target returns a copy of the named target descriptor.
func (s *Store) Target(name string) (descriptor.TargetDescriptor, error) {
	var (
		t  descriptor.TargetDescriptor
		ok bool
	)
	s.read(func() { t, ok = s.targets[name] })
	if !ok {
		return descriptor.TargetDescriptor{}, &planerr.UnknownTargetError{Name: name}
	}
	return t.Clone(), nil
}

// IsModule reports whether name is a registered module.
func (s *Store) IsModule(name string) bool {
	var ok bool
	s.read(func() { _, ok = s.modules[name] })
	return ok
}

// IsTarget reports whether name is a registered target.
func (s *Store) IsTarget(name string) bool {
	var ok bool
	s.read(func() { _, ok = s.targets[name] })
	return ok
}

// ModuleNames returns all module names, sorted.
func (s *Store) ModuleNames() []string {
	var names []string
	s.read(func() {
		names = make([]string, 0, len(s.modules))
		for name := range s.modules {
			names = append(names, name)
		}
	})
	slices.Sort(names)
	return names
}

// TargetNames returns all target names, sorted.
func (s *Store) TargetNames() []string {
	var names []string
	s.read(func() {
		names = make([]string, 0, len(s.targets))
		for name := range s.targets {
			names = append(names, name)
		}
	})
	slices.Sort(names)
	return names
}

// Modules returns copies of all module descriptors sorted by name.
func (s *Store) Modules() []descriptor.ModuleDescriptor {
	names := s.ModuleNames()
	out := make([]descriptor.ModuleDescriptor, 0, len(names))
	for _, name := range names {
		m, err := s.Module(name)
		if err == nil {
			out = append(out, m)
		}
	}
	return out
}

// Targets returns copies of all target descriptors sorted by name.
func (s *Store) Targets() []descriptor.TargetDescriptor {
	names := s.TargetNames()
	out := make([]descriptor.TargetDescriptor, 0, len(names))
	for _, name := range names {
		t, err := s.Target(name)
		if err == nil {
			out = append(out, t)
		}
	}
	return out
}

// Len returns the number of registered modules and targets.
func (s *Store) Len() (modules, targets int) {
	s.read(func() { modules, targets = len(s.modules), len(s.targets) })
	return modules, targets
}

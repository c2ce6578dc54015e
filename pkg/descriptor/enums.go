// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	KindLibrary ModuleKind = "library"
	KindPlugin  ModuleKind = "plugin"
	KindRuntime ModuleKind = "runtime"

	// AvailabilityAny modules may be linked into every target type.
	AvailabilityAny Availability = "any"
	// AvailabilityGameOnly modules must not end up in editor targets.
	AvailabilityGameOnly Availability = "game_only"
	// AvailabilityEditorOnly modules must not end up in game, client or server targets.
	AvailabilityEditorOnly Availability = "editor_only"

	PCHDefault          PCHUsage = "default"
	PCHExplicitOrShared PCHUsage = "explicit_or_shared"
	PCHNone             PCHUsage = "no_pch"

	TargetGame    TargetType = "game"
	TargetEditor  TargetType = "editor"
	TargetClient  TargetType = "client"
	TargetServer  TargetType = "server"
	TargetProgram TargetType = "program"

	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// ErrInvalidValue is the sentinel wrapped by InvalidValueError.
var ErrInvalidValue = errors.New("invalid descriptor value")

type (
	// ModuleKind classifies a module. It does not affect planning.
	ModuleKind string

	// Availability restricts which target types may contain a module.
	Availability string

	// PCHUsage is the precompiled header mode a module is built with.
	PCHUsage string

	// TargetType is the kind of binary a target produces.
	TargetType string

	// Visibility of a declared dependency. Public dependencies propagate to
	// consumers of the declaring module; private ones do not.
	Visibility string

	// InvalidValueError reports a field holding a value outside its allowed set.
	InvalidValueError struct {
		Field   string
		Value   string
		Allowed []string
	}
)

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid %s %q (expected one of: %s)", e.Field, e.Value, strings.Join(e.Allowed, ", "))
}

// Unwrap returns ErrInvalidValue for errors.Is() compatibility.
func (e *InvalidValueError) Unwrap() error { return ErrInvalidValue }

func validateEnum[T ~string](field string, v T, allowed []T) error {
	if slices.Contains(allowed, v) {
		return nil
	}
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	return &InvalidValueError{Field: field, Value: string(v), Allowed: names}
}

// ModuleKinds returns every recognized module kind.
func ModuleKinds() []ModuleKind { return []ModuleKind{KindLibrary, KindPlugin, KindRuntime} }

func (k ModuleKind) String() string { return string(k) }

// Validate returns an error if k is not a recognized module kind.
func (k ModuleKind) Validate() error { return validateEnum("module kind", k, ModuleKinds()) }

// Availabilities returns every recognized availability.
func Availabilities() []Availability {
	return []Availability{AvailabilityAny, AvailabilityGameOnly, AvailabilityEditorOnly}
}

func (a Availability) String() string { return string(a) }

// Validate returns an error if a is not a recognized availability.
// The empty value is accepted and means AvailabilityAny.
func (a Availability) Validate() error {
	if a == "" {
		return nil
	}
	return validateEnum("availability", a, Availabilities())
}

// OrDefault returns a, or AvailabilityAny when a is empty.
func (a Availability) OrDefault() Availability {
	if a == "" {
		return AvailabilityAny
	}
	return a
}

// AllowedIn reports whether a module with this availability may be part of
// a target of type t.
func (a Availability) AllowedIn(t TargetType) bool {
	switch a.OrDefault() {
	case AvailabilityGameOnly:
		return t != TargetEditor
	case AvailabilityEditorOnly:
		return t != TargetGame && t != TargetClient && t != TargetServer
	default:
		return true
	}
}

// PCHUsages returns every recognized precompiled header mode.
func PCHUsages() []PCHUsage { return []PCHUsage{PCHDefault, PCHExplicitOrShared, PCHNone} }

func (p PCHUsage) String() string { return string(p) }

// Validate returns an error if p is not recognized. Empty means PCHDefault.
func (p PCHUsage) Validate() error {
	if p == "" {
		return nil
	}
	return validateEnum("pch_usage", p, PCHUsages())
}

// OrDefault returns p, or PCHDefault when p is empty.
func (p PCHUsage) OrDefault() PCHUsage {
	if p == "" {
		return PCHDefault
	}
	return p
}

// TargetTypes returns every recognized target type.
func TargetTypes() []TargetType {
	return []TargetType{TargetGame, TargetEditor, TargetClient, TargetServer, TargetProgram}
}

func (t TargetType) String() string { return string(t) }

// Validate returns an error if t is not a recognized target type.
func (t TargetType) Validate() error { return validateEnum("target type", t, TargetTypes()) }

func (v Visibility) String() string { return string(v) }

// Validate returns an error if v is neither public nor private.
func (v Visibility) Validate() error {
	return validateEnum("visibility", v, []Visibility{VisibilityPublic, VisibilityPrivate})
}

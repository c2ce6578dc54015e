// SPDX-License-Identifier: MPL-2.0

// Package planerr defines the error taxonomy shared by the store, graph
// builder, checker, planner and assembler.
//
// Every error is a typed struct that unwraps to a package sentinel, so callers
// can branch with errors.Is on the sentinel or errors.As on the struct. All
// of them are terminal for a planning run.
package planerr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/modgraph/modgraph/pkg/descriptor"
)

const (
	KindDuplicateName        Kind = "duplicate_name"
	KindUnknownModule        Kind = "unknown_module"
	KindUnknownTarget        Kind = "unknown_target"
	KindUnresolvedDependency Kind = "unresolved_dependency"
	KindCycle                Kind = "cycle"
	KindInvalidEdge          Kind = "invalid_edge"
	KindTargetModuleMismatch Kind = "target_module_mismatch"

	// EdgeSelf is a module listing itself as a dependency.
	EdgeSelf EdgeProblem = "self dependency"
	// EdgeIntoTarget is a dependency naming a target instead of a module.
	EdgeIntoTarget EdgeProblem = "dependency names a target"
	// EdgeRootIsTarget is a target root naming another target.
	EdgeRootIsTarget EdgeProblem = "root names a target"
	// EdgeConflictingVisibility is a dependency declared both public and private.
	EdgeConflictingVisibility EdgeProblem = "declared both public and private"
)

var (
	ErrDuplicateName        = errors.New("duplicate descriptor name")
	ErrUnknownModule        = errors.New("unknown module")
	ErrUnknownTarget        = errors.New("unknown target")
	ErrUnresolvedDependency = errors.New("unresolved dependency")
	ErrCycle                = errors.New("dependency cycle")
	ErrInvalidEdge          = errors.New("invalid dependency edge")
	ErrTargetModuleMismatch = errors.New("module not allowed in target")
)

type (
	// Kind identifies an error category in structured output and in the
	// explain catalog.
	Kind string

	// EdgeProblem says why an edge was rejected.
	EdgeProblem string

	// PlanningError is implemented by every error in this package.
	PlanningError interface {
		error
		Kind() Kind
		// Names returns the module, target or file names the error is about,
		// in the order a reader should see them.
		Names() []string
	}

	// DuplicateNameError is returned when a module or target name is
	// registered twice. Modules and targets share one namespace.
	DuplicateNameError struct {
		Name           string
		ExistingSource string
		IncomingSource string
	}

	// UnknownModuleError is returned when a module lookup fails.
	UnknownModuleError struct {
		Name string
		// ReferencedBy names the target whose roots mention Name, if any.
		ReferencedBy string
	}

	// UnknownTargetError is returned when a target lookup fails.
	UnknownTargetError struct {
		Name string
	}

	// UnresolvedDependencyError is returned when a module declares a
	// dependency that names neither a module nor a target.
	UnresolvedDependencyError struct {
		Module     string
		Dependency string
	}

	// CycleError carries the full cycle, first and last element equal.
	CycleError struct {
		Path []string
	}

	// InvalidEdgeError rejects an edge that cannot exist in a build graph.
	InvalidEdgeError struct {
		Consumer   string
		Dependency string
		Problem    EdgeProblem
	}

	// TargetModuleMismatchError is returned when a target's closure contains a
	// module whose availability excludes the target type. Chain is the
	// dependency path from a root to the module.
	TargetModuleMismatchError struct {
		Target       string
		TargetType   descriptor.TargetType
		Module       string
		Availability descriptor.Availability
		Chain        []string
	}
)

// Kinds returns every error kind in catalog order.
func Kinds() []Kind {
	return []Kind{
		KindDuplicateName,
		KindUnknownModule,
		KindUnknownTarget,
		KindUnresolvedDependency,
		KindCycle,
		KindInvalidEdge,
		KindTargetModuleMismatch,
	}
}

// ParseKind accepts a kind in snake_case or kebab-case.
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	for _, known := range Kinds() {
		if k == known {
			return k, true
		}
	}
	return "", false
}

func (k Kind) String() string { return string(k) }

// As returns the first PlanningError in err's chain.
func As(err error) (PlanningError, bool) {
	var pe PlanningError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

func (e *DuplicateNameError) Error() string {
	switch {
	case e.ExistingSource != "" && e.IncomingSource != "":
		return fmt.Sprintf("duplicate name %q: declared in %s and %s", e.Name, e.ExistingSource, e.IncomingSource)
	case e.IncomingSource != "":
		return fmt.Sprintf("duplicate name %q in %s", e.Name, e.IncomingSource)
	default:
		return fmt.Sprintf("duplicate name %q", e.Name)
	}
}

func (e *DuplicateNameError) Unwrap() error { return ErrDuplicateName }
func (e *DuplicateNameError) Kind() Kind    { return KindDuplicateName }

func (e *DuplicateNameError) Names() []string {
	names := []string{e.Name}
	for _, src := range []string{e.ExistingSource, e.IncomingSource} {
		if src != "" {
			names = append(names, src)
		}
	}
	return names
}

func (e *UnknownModuleError) Error() string {
	if e.ReferencedBy != "" {
		return fmt.Sprintf("unknown module %q (root of target %q)", e.Name, e.ReferencedBy)
	}
	return fmt.Sprintf("unknown module %q", e.Name)
}

func (e *UnknownModuleError) Unwrap() error { return ErrUnknownModule }
func (e *UnknownModuleError) Kind() Kind    { return KindUnknownModule }

func (e *UnknownModuleError) Names() []string {
	if e.ReferencedBy != "" {
		return []string{e.Name, e.ReferencedBy}
	}
	return []string{e.Name}
}

func (e *UnknownTargetError) Error() string   { return fmt.Sprintf("unknown target %q", e.Name) }
func (e *UnknownTargetError) Unwrap() error   { return ErrUnknownTarget }
func (e *UnknownTargetError) Kind() Kind      { return KindUnknownTarget }
func (e *UnknownTargetError) Names() []string { return []string{e.Name} }

func (e *UnresolvedDependencyError) Error() string {
	return fmt.Sprintf("module %q depends on %q, which is not a known module", e.Module, e.Dependency)
}

func (e *UnresolvedDependencyError) Unwrap() error   { return ErrUnresolvedDependency }
func (e *UnresolvedDependencyError) Kind() Kind      { return KindUnresolvedDependency }
func (e *UnresolvedDependencyError) Names() []string { return []string{e.Module, e.Dependency} }

func (e *CycleError) Error() string {
	return "dependency cycle detected: " + strings.Join(e.Path, " -> ")
}

func (e *CycleError) Unwrap() error   { return ErrCycle }
func (e *CycleError) Kind() Kind      { return KindCycle }
func (e *CycleError) Names() []string { return e.Path }

func (e *InvalidEdgeError) Error() string {
	return fmt.Sprintf("invalid edge %s -> %s: %s", e.Consumer, e.Dependency, e.Problem)
}

func (e *InvalidEdgeError) Unwrap() error   { return ErrInvalidEdge }
func (e *InvalidEdgeError) Kind() Kind      { return KindInvalidEdge }
func (e *InvalidEdgeError) Names() []string { return []string{e.Consumer, e.Dependency} }

func (e *TargetModuleMismatchError) Error() string {
	msg := fmt.Sprintf("%s target %q cannot contain %s module %q", e.TargetType, e.Target, e.Availability, e.Module)
	if len(e.Chain) > 1 {
		msg += " (via " + strings.Join(e.Chain, " -> ") + ")"
	}
	return msg
}

func (e *TargetModuleMismatchError) Unwrap() error { return ErrTargetModuleMismatch }
func (e *TargetModuleMismatchError) Kind() Kind    { return KindTargetModuleMismatch }

func (e *TargetModuleMismatchError) Names() []string {
	return append([]string{e.Target}, e.Chain...)
}

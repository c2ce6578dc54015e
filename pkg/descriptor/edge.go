// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"cmp"
	"fmt"
)

// DependencyEdge is one consumer → dependency relation. Implicit edges are
// produced by public propagation rather than declared.
type DependencyEdge struct {
	Consumer   string     `json:"consumer" yaml:"consumer" toml:"consumer"`
	Dependency string     `json:"dependency" yaml:"dependency" toml:"dependency"`
	Visibility Visibility `json:"visibility" yaml:"visibility" toml:"visibility"`
	Implicit   bool       `json:"implicit,omitempty" yaml:"implicit,omitempty" toml:"implicit,omitempty"`
}

func (e DependencyEdge) String() string {
	if e.Implicit {
		return fmt.Sprintf("%s -> %s (%s, implicit)", e.Consumer, e.Dependency, e.Visibility)
	}
	return fmt.Sprintf("%s -> %s (%s)", e.Consumer, e.Dependency, e.Visibility)
}

// CompareEdges orders edges by consumer, dependency, then visibility.
// Use with slices.SortFunc.
func CompareEdges(a, b DependencyEdge) int {
	return cmp.Or(
		cmp.Compare(a.Consumer, b.Consumer),
		cmp.Compare(a.Dependency, b.Dependency),
		cmp.Compare(a.Visibility, b.Visibility),
	)
}

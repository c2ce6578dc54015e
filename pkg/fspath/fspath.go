// SPDX-License-Identifier: MPL-2.0

// Package fspath wraps the path/filepath functions modgraph needs so they
// take and return types.FilesystemPath.
package fspath

import (
	"path/filepath"

	"github.com/modgraph/modgraph/pkg/types"
)

// JoinStr joins a typed base path with raw segments such as file names.
func JoinStr(base types.FilesystemPath, elem ...string) types.FilesystemPath {
	parts := make([]string, 1, 1+len(elem))
	parts[0] = base.String()
	parts = append(parts, elem...)
	return types.FilesystemPath(filepath.Join(parts...))
}

func Dir(p types.FilesystemPath) types.FilesystemPath {
	return types.FilesystemPath(filepath.Dir(p.String()))
}

func Clean(p types.FilesystemPath) types.FilesystemPath {
	return types.FilesystemPath(filepath.Clean(p.String()))
}

// Strings converts paths for APIs that take plain strings.
func Strings(paths []types.FilesystemPath) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = p.String()
	}
	return out
}

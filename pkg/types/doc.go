// SPDX-License-Identifier: MPL-2.0

// Package types holds small value types shared by the planner packages and the
// CLI: process exit codes, free-form descriptions and filesystem paths.
//
// It imports only the standard library and never imports planner packages.
package types

// SPDX-License-Identifier: MPL-2.0

// Package testutil provides filesystem helpers for tests that fail the test
// on error instead of returning it.
//
// Descriptor and store builders live in the descriptortest subpackage.
package testutil

// SPDX-License-Identifier: MPL-2.0

// Package descriptor defines the declarative build metadata modgraph plans
// from: module descriptors, target descriptors, build settings and the
// dependency edges derived from them.
//
// Values in this package are plain data. They are validated with IsValid and
// never mutated once registered in a store.
package descriptor

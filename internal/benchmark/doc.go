// SPDX-License-Identifier: MPL-2.0

// Package benchmark holds the planning benchmarks used to collect PGO
// profiles. They cover the hot paths of a planning run:
//   - descriptor decoding in every supported format
//   - graph construction with public dependency propagation
//   - validation and stage layering
//   - the end-to-end pipeline from descriptor files to plans
//
// To generate a profile:
//
//	go test -run='^$' -bench=. -cpuprofile=default.pgo ./internal/benchmark
package benchmark

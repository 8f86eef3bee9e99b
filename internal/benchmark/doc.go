// SPDX-License-Identifier: MPL-2.0

// Package benchmark provides benchmarks for PGO profile generation.
// They cover the hot paths of runcfg:
//   - config file decoding (CUE, YAML, JSON)
//   - command-line overrides
//   - hashing and comparison of config trees
//   - snapshot serialization
//
// To generate a profile, run:
//
//	go test -run '^$' -bench . -cpuprofile default.pgo ./internal/benchmark
package benchmark

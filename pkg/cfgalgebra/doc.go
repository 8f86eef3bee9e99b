// SPDX-License-Identifier: MPL-2.0

// Package cfgalgebra compares configuration trees.
//
// All operations work on flattened leaves and compare values through their
// canonical hashable projection, so formatting never affects equality. None
// of them mutate their inputs.
package cfgalgebra

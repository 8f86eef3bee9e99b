// SPDX-License-Identifier: MPL-2.0

package cfgtree

import (
	"cmp"
	"maps"
	"slices"
	"strings"
)

// ReplaceSharedDirPaths returns a copy of c in which every occurrence of a
// source prefix in a string leaf (including strings inside sequences and
// mappings) is replaced by its target. Longer sources are applied first so a
// nested shared directory wins over its parent.
func ReplaceSharedDirPaths(c *Config, mapping map[string]string) *Config {
	sources := slices.SortedFunc(maps.Keys(mapping), func(a, b string) int {
		return cmp.Or(cmp.Compare(len(b), len(a)), strings.Compare(a, b))
	})
	rewrite := func(s string) string {
		for _, src := range sources {
			if src == "" {
				continue
			}
			s = strings.ReplaceAll(s, src, mapping[src])
		}
		return s
	}
	return c.MapLeaves(func(_ Path, v Value) Value {
		return MapStrings(v, rewrite)
	})
}

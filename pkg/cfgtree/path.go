// SPDX-License-Identifier: MPL-2.0

package cfgtree

import (
	"slices"
	"strconv"
	"strings"
)

// Path is an explicit sequence of keys from the root of a Config to a value.
// Path segments are taken literally, dots included.
type Path []string

// Dotted splits a dotted key into a Path without consulting any Config.
func Dotted(key string) Path {
	if key == "" {
		return nil
	}
	return Path(strings.Split(key, "."))
}

// String joins the segments with dots.
func (p Path) String() string {
	return strings.Join(p, ".")
}

// Tuple renders the path as a parenthesized tuple of quoted segments, the
// form accepted by override entries.
func (p Path) Tuple() string {
	parts := make([]string, len(p))
	for i, seg := range p {
		parts[i] = strconv.Quote(seg)
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Append returns a new Path with segs appended. The receiver is not modified.
func (p Path) Append(segs ...string) Path {
	out := make(Path, 0, len(p)+len(segs))
	out = append(out, p...)
	return append(out, segs...)
}

// Equal reports whether both paths have the same segments.
func (p Path) Equal(o Path) bool {
	return slices.Equal(p, o)
}

// resolve maps a string key onto a Path against the current contents of c.
// A key stored literally wins. Otherwise the dotted segments are matched
// greedily, preferring the longest prefix that names an existing key at each
// level. Segments that match nothing are split on every dot.
func (c *Config) resolve(key string) Path {
	if _, ok := c.values[key]; ok {
		return Path{key}
	}
	segs := strings.Split(key, ".")
	if len(segs) == 1 {
		return Path{key}
	}

	path := make(Path, 0, len(segs))
	cur := c
	i := 0
	for i < len(segs) {
		if cur == nil {
			return append(path, segs[i:]...)
		}
		matched := false
		for j := len(segs); j > i; j-- {
			cand := strings.Join(segs[i:j], ".")
			v, ok := cur.values[cand]
			if !ok {
				continue
			}
			path = append(path, cand)
			i = j
			matched = true
			cur, _ = v.(*Config)
			break
		}
		if !matched {
			return append(path, segs[i:]...)
		}
	}
	return path
}

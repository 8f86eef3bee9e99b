// SPDX-License-Identifier: MPL-2.0

package cfgtree

import "github.com/runcfg/runcfg/pkg/hashable"

// Leaf is one terminal entry of a flattened Config. An empty subtree is a
// leaf whose Value is an empty *Config.
type Leaf struct {
	Path  Path
	Value Value
}

// Hash returns the canonical projection of the leaf's value.
func (l Leaf) Hash() hashable.Value {
	return hashable.Make(l.Value)
}

// IsEmptySubtree reports whether the leaf marks an empty subtree.
func (l Leaf) IsEmptySubtree() bool {
	sub, ok := l.Value.(*Config)
	return ok && sub.Len() == 0
}

// Flatten returns the leaves of c in depth-first insertion order.
func (c *Config) Flatten() []Leaf {
	var out []Leaf
	c.flatten(nil, &out)
	return out
}

func (c *Config) flatten(prefix Path, out *[]Leaf) {
	for k, v := range c.All() {
		p := prefix.Append(k)
		if sub, ok := v.(*Config); ok && sub.Len() > 0 {
			sub.flatten(p, out)
			continue
		}
		*out = append(*out, Leaf{Path: p, Value: v})
	}
}

// Build assembles a Config from leaves. Leaves are applied in order with
// overwrite semantics; the resulting tree then takes the given options.
func Build(leaves []Leaf, opts ...Option) *Config {
	c := New(opts...)
	for _, l := range leaves {
		c.placeLeaf(l)
	}
	return c
}

// placeLeaf stores l without consulting the update or clobber modes.
func (c *Config) placeLeaf(l Leaf) {
	cur := c
	for _, seg := range l.Path[:len(l.Path)-1] {
		sub, ok := cur.values[seg].(*Config)
		if !ok {
			sub = cur.child()
			cur.put(seg, sub)
		}
		cur = sub
	}
	last := l.Path[len(l.Path)-1]
	if sub, ok := l.Value.(*Config); ok && sub.Len() == 0 {
		if _, exists := cur.values[last].(*Config); exists {
			return
		}
		cur.put(last, cur.child())
		return
	}
	cur.put(last, copyValue(l.Value))
}

// MapLeaves returns a copy of c with every non-subtree leaf replaced by
// fn(path, value). Empty subtrees are kept as they are.
func (c *Config) MapLeaves(fn func(Path, Value) Value) *Config {
	return c.mapLeavesAt(nil, fn)
}

func (c *Config) mapLeavesAt(prefix Path, fn func(Path, Value) Value) *Config {
	out := newWithModes(c.modes)
	for k, v := range c.All() {
		p := prefix.Append(k)
		if sub, ok := v.(*Config); ok {
			out.put(k, sub.mapLeavesAt(p, fn))
			continue
		}
		out.put(k, fn(p, copyValue(v)))
	}
	return out
}

// StringifyLeaves returns a copy of c in which every scalar is replaced by
// its rendered text. Sequences and mappings keep their shape with their
// elements stringified; null stays null.
func (c *Config) StringifyLeaves() *Config {
	return c.MapLeaves(func(_ Path, v Value) Value { return Stringify(v) })
}

// Stringify converts the scalars inside v to String values.
func Stringify(v Value) Value {
	switch t := v.(type) {
	case Null, String:
		return v
	case List:
		return List(stringifyAll(t))
	case Tuple:
		return Tuple(stringifyAll(t))
	case Set:
		return Set(stringifyAll(t))
	case Mapping:
		out := Mapping{entries: make([]MappingEntry, len(t.entries))}
		for i, e := range t.entries {
			out.entries[i] = MappingEntry{Key: e.Key, Value: Stringify(e.Value)}
		}
		return out
	case *Config:
		return t.StringifyLeaves()
	}
	return String(Display(v))
}

func stringifyAll(vs []Value) []Value {
	out := make([]Value, len(vs))
	for i, v := range vs {
		out[i] = Stringify(v)
	}
	return out
}

// MapStrings applies fn to every String in v, descending into sequences and
// mapping values.
func MapStrings(v Value, fn func(string) string) Value {
	switch t := v.(type) {
	case String:
		return String(fn(string(t)))
	case List:
		return List(mapStringsAll(t, fn))
	case Tuple:
		return Tuple(mapStringsAll(t, fn))
	case Set:
		return Set(mapStringsAll(t, fn))
	case Mapping:
		out := Mapping{entries: make([]MappingEntry, len(t.entries))}
		for i, e := range t.entries {
			out.entries[i] = MappingEntry{Key: e.Key, Value: MapStrings(e.Value, fn)}
		}
		return out
	}
	return v
}

func mapStringsAll(vs []Value, fn func(string) string) []Value {
	out := make([]Value, len(vs))
	for i, v := range vs {
		out[i] = MapStrings(v, fn)
	}
	return out
}

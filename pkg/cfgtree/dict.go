// SPDX-License-Identifier: MPL-2.0

package cfgtree

import (
	"maps"
	"slices"
)

type (
	// Item is one ordered key/value pair of a Dict.
	Item struct {
		Key   string
		Value any
	}

	// Dict is an ordered mapping literal. Nested Dicts become subtrees when
	// converted into a Config.
	Dict []Item
)

// FromDict builds a Config from an ordered mapping. Nested Dicts and Go maps
// become subtrees carrying the same options.
func FromDict(d Dict, opts ...Option) (*Config, error) {
	c := New(opts...)
	for _, it := range d {
		if err := c.SetPath(Path{it.Key}, it.Value); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// FromMap builds a Config from a Go map. Keys are inserted in sorted order at
// every level.
func FromMap(m map[string]any, opts ...Option) (*Config, error) {
	return FromDict(DictFromMap(m), opts...)
}

// DictFromMap converts a Go map into a Dict with sorted keys. Nested maps are
// converted as well.
func DictFromMap(m map[string]any) Dict {
	d := make(Dict, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		v := m[k]
		if nested, ok := v.(map[string]any); ok {
			v = DictFromMap(nested)
		}
		d = append(d, Item{Key: k, Value: v})
	}
	return d
}

// Get returns the value stored under key.
func (d Dict) Get(key string) (any, bool) {
	for _, it := range d {
		if it.Key == key {
			return it.Value, true
		}
	}
	return nil, false
}

func (d Dict) toConfig(m modes) *Config {
	c := newWithModes(m)
	for _, it := range d {
		c.put(it.Key, convert(it.Value, m, false))
	}
	return c
}

func (d Dict) toMapping(m modes) Mapping {
	out := Mapping{}
	for _, it := range d {
		out = out.With(String(it.Key), convert(it.Value, m, true))
	}
	return out
}

// ToDict converts c into a nested Dict of plain Go values. Subtrees become
// Dicts; see Native for leaves.
func (c *Config) ToDict() Dict {
	d := make(Dict, 0, len(c.keys))
	for k, v := range c.All() {
		if sub, ok := v.(*Config); ok {
			d = append(d, Item{Key: k, Value: sub.ToDict()})
			continue
		}
		d = append(d, Item{Key: k, Value: Native(v)})
	}
	return d
}

// ToMap converts c into nested Go maps. Key order is lost.
func (c *Config) ToMap() map[string]any {
	m := make(map[string]any, len(c.keys))
	for k, v := range c.All() {
		if sub, ok := v.(*Config); ok {
			m[k] = sub.ToMap()
			continue
		}
		m[k] = Native(v)
	}
	return m
}

// Native converts v into plain Go values: strings, int64, float64, bool,
// nil, []any for sequences and map[string]any for mappings and subtrees.
// Mapping keys that are not strings are rendered with Repr. Opaque payloads
// are returned as they are.
func Native(v Value) any {
	switch t := v.(type) {
	case Null, nil, missing:
		return nil
	case String:
		return string(t)
	case Int:
		return int64(t)
	case Float:
		return float64(t)
	case Bool:
		return bool(t)
	case List:
		return nativeSlice(t)
	case Tuple:
		return nativeSlice(t)
	case Set:
		return nativeSlice(t)
	case Mapping:
		m := make(map[string]any, t.Len())
		for _, e := range t.entries {
			key := Display(e.Key)
			m[key] = Native(e.Value)
		}
		return m
	case *Config:
		return t.ToMap()
	case Opaque:
		return t.V
	}
	return nil
}

func nativeSlice(vs []Value) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = Native(v)
	}
	return out
}

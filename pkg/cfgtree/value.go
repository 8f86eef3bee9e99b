// SPDX-License-Identifier: MPL-2.0

package cfgtree

import (
	"iter"
	"math"
	"reflect"
	"slices"
	"strings"

	"github.com/runcfg/runcfg/pkg/hashable"
)

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindList
	KindTuple
	KindSet
	KindMapping
	KindConfig
	KindOpaque
	KindMissing
)

// Missing is returned by lookups that find nothing and are not configured to
// fail. It is never stored in a Config.
var Missing Value = missing{}

type (
	// Kind identifies the variant of a Value.
	Kind uint8

	// Value is a config value: a scalar, a sequence, a non-subtree mapping,
	// a *Config subtree, or an Opaque payload.
	Value interface {
		Kind() Kind
		sealed()
	}

	// Null is the absent-but-present value.
	Null struct{}

	// String is a text leaf.
	String string

	// Int is an integer leaf.
	Int int64

	// Float is a floating point leaf.
	Float float64

	// Bool is a boolean leaf.
	Bool bool

	// List is an ordered, mutable-by-convention sequence.
	List []Value

	// Tuple is an ordered, fixed sequence.
	Tuple []Value

	// Set is a collection of distinct values kept in insertion order.
	Set []Value

	// Mapping is an ordered key/value container stored as a leaf. Mappings
	// appear inside sequences; top-level mappings become subtrees.
	Mapping struct {
		entries []MappingEntry
	}

	// MappingEntry is one key/value pair of a Mapping.
	MappingEntry struct {
		Key   Value
		Value Value
	}

	// Opaque wraps any Go value the tree has no dedicated variant for.
	Opaque struct {
		V any
	}

	missing struct{}
)

var kindNames = [...]string{
	KindNull:    "null",
	KindString:  "string",
	KindInt:     "int",
	KindFloat:   "float",
	KindBool:    "bool",
	KindList:    "list",
	KindTuple:   "tuple",
	KindSet:     "set",
	KindMapping: "mapping",
	KindConfig:  "config",
	KindOpaque:  "opaque",
	KindMissing: "missing",
}

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

func (Null) Kind() Kind    { return KindNull }
func (String) Kind() Kind  { return KindString }
func (Int) Kind() Kind     { return KindInt }
func (Float) Kind() Kind   { return KindFloat }
func (Bool) Kind() Kind    { return KindBool }
func (List) Kind() Kind    { return KindList }
func (Tuple) Kind() Kind   { return KindTuple }
func (Set) Kind() Kind     { return KindSet }
func (Mapping) Kind() Kind { return KindMapping }
func (Opaque) Kind() Kind  { return KindOpaque }
func (missing) Kind() Kind { return KindMissing }

func (Null) sealed()    {}
func (String) sealed()  {}
func (Int) sealed()     {}
func (Float) sealed()   {}
func (Bool) sealed()    {}
func (List) sealed()    {}
func (Tuple) sealed()   {}
func (Set) sealed()     {}
func (Mapping) sealed() {}
func (Opaque) sealed()  {}
func (missing) sealed() {}

func (Null) Hashable() hashable.Value     { return hashable.None }
func (s String) Hashable() hashable.Value { return hashable.Str(string(s)) }
func (i Int) Hashable() hashable.Value    { return hashable.Int(int64(i)) }
func (f Float) Hashable() hashable.Value  { return hashable.Float(float64(f)) }
func (b Bool) Hashable() hashable.Value   { return hashable.Make(bool(b)) }
func (o Opaque) Hashable() hashable.Value { return hashable.Make(o.V) }

func (missing) Hashable() hashable.Value { return hashable.Make(missingSentinel{}) }

type missingSentinel struct{}

func (missing) String() string { return "<missing>" }

// Items yields the list elements.
func (l List) Items() iter.Seq[any] { return valueItems(l) }

// Items yields the tuple elements.
func (t Tuple) Items() iter.Seq[any] { return valueItems(t) }

// Items yields the set members in insertion order.
func (s Set) Items() iter.Seq[any] { return valueItems(s) }

func valueItems(vs []Value) iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, v := range vs {
			if !yield(v) {
				return
			}
		}
	}
}

// NewMapping builds a Mapping from entries. Later duplicates replace earlier ones.
func NewMapping(entries ...MappingEntry) Mapping {
	m := Mapping{}
	for _, e := range entries {
		m = m.With(e.Key, e.Value)
	}
	return m
}

// With returns a copy of m with key set to v. An existing key keeps its position.
func (m Mapping) With(key, v Value) Mapping {
	h := hashable.Make(key)
	out := Mapping{entries: slices.Clone(m.entries)}
	for i, e := range out.entries {
		if hashable.Make(e.Key) == h {
			out.entries[i].Value = v
			return out
		}
	}
	out.entries = append(out.entries, MappingEntry{Key: key, Value: v})
	return out
}

// Get returns the value stored under key.
func (m Mapping) Get(key Value) (Value, bool) {
	h := hashable.Make(key)
	for _, e := range m.entries {
		if hashable.Make(e.Key) == h {
			return e.Value, true
		}
	}
	return nil, false
}

// Len returns the number of entries.
func (m Mapping) Len() int { return len(m.entries) }

// Entries returns a copy of the entries in insertion order.
func (m Mapping) Entries() []MappingEntry { return slices.Clone(m.entries) }

// Pairs yields the entries in insertion order.
func (m Mapping) Pairs() iter.Seq2[any, any] {
	return func(yield func(any, any) bool) {
		for _, e := range m.entries {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

// As reports whether v holds the concrete variant T and returns it.
func As[T Value](v Value) (T, bool) {
	t, ok := v.(T)
	return t, ok
}

// IsMissing reports whether v is the Missing sentinel or nil.
func IsMissing(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(missing)
	return ok
}

// Equal reports whether a and b have the same canonical content.
func Equal(a, b Value) bool {
	return hashable.Make(a) == hashable.Make(b)
}

// ValueOf converts a Go value into a Value. Top-level mappings become
// subtrees with the default policies; mappings nested inside sequences
// become Mapping leaves. Unsupported types are wrapped in Opaque.
func ValueOf(x any) Value {
	return convert(x, defaultModes(), false)
}

type modes struct {
	update  UpdateMode
	clobber ClobberMode
	report  ReportMode
}

func defaultModes() modes {
	return modes{update: DefaultUpdateMode, clobber: DefaultClobberMode, report: DefaultReportMode}
}

func convert(x any, m modes, nested bool) Value {
	switch v := x.(type) {
	case nil:
		return Null{}
	case *Config:
		if v == nil {
			return Null{}
		}
		if nested {
			return v.toMapping()
		}
		return v
	case Value:
		return v
	case string:
		return String(v)
	case bool:
		return Bool(v)
	case int:
		return Int(v)
	case int8:
		return Int(v)
	case int16:
		return Int(v)
	case int32:
		return Int(v)
	case int64:
		return Int(v)
	case uint:
		return uintValue(uint64(v))
	case uint8:
		return Int(v)
	case uint16:
		return Int(v)
	case uint32:
		return Int(v)
	case uint64:
		return uintValue(v)
	case float32:
		return Float(v)
	case float64:
		return Float(v)
	case Dict:
		if nested {
			return v.toMapping(m)
		}
		return v.toConfig(m)
	case []any:
		out := make(List, len(v))
		for i, item := range v {
			out[i] = convert(item, m, true)
		}
		return out
	case map[string]any:
		return convert(DictFromMap(v), m, nested)
	}
	return convertReflect(reflect.ValueOf(x), m, nested)
}

// uintValue keeps unsigned values that do not fit an Int as Opaque.
func uintValue(v uint64) Value {
	if v > math.MaxInt64 {
		return Opaque{V: v}
	}
	return Int(v)
}

func convertReflect(rv reflect.Value, m modes, nested bool) Value {
	switch rv.Kind() {
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Opaque{V: rv.Interface()}
		}
		out := make(List, rv.Len())
		for i := range rv.Len() {
			out[i] = convert(rv.Index(i).Interface(), m, true)
		}
		return out
	case reflect.Array:
		out := make(Tuple, rv.Len())
		for i := range rv.Len() {
			out[i] = convert(rv.Index(i).Interface(), m, true)
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			d := make(Dict, 0, rv.Len())
			keys := rv.MapKeys()
			slices.SortFunc(keys, func(a, b reflect.Value) int { return strings.Compare(a.String(), b.String()) })
			for _, k := range keys {
				d = append(d, Item{Key: k.String(), Value: rv.MapIndex(k).Interface()})
			}
			return convert(d, m, nested)
		}
	case reflect.Pointer:
		if rv.IsNil() {
			return Null{}
		}
	}
	return Opaque{V: rv.Interface()}
}

// copyValue returns a deep copy of v. Opaque payloads are shared.
func copyValue(v Value) Value {
	switch t := v.(type) {
	case *Config:
		return t.Copy()
	case List:
		return List(copyValues(t))
	case Tuple:
		return Tuple(copyValues(t))
	case Set:
		return Set(copyValues(t))
	case Mapping:
		out := Mapping{entries: make([]MappingEntry, len(t.entries))}
		for i, e := range t.entries {
			out.entries[i] = MappingEntry{Key: copyValue(e.Key), Value: copyValue(e.Value)}
		}
		return out
	default:
		return v
	}
}

func copyValues(vs []Value) []Value {
	if vs == nil {
		return nil
	}
	out := make([]Value, len(vs))
	for i, v := range vs {
		out[i] = copyValue(v)
	}
	return out
}

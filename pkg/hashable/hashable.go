// SPDX-License-Identifier: MPL-2.0

package hashable

import (
	"fmt"
	"iter"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

type (
	// Value is the canonical projection of an arbitrary value. It is
	// comparable and therefore usable as a map key. The zero Value is the
	// projection of nil.
	Value struct {
		repr  string
		plain string
		isStr bool
		set   bool
	}

	// Mapping is implemented by ordered key/value containers. Pairs must
	// yield entries in the container's iteration order.
	Mapping interface {
		Pairs() iter.Seq2[any, any]
	}

	// Sequence is implemented by ordered containers of items.
	Sequence interface {
		Items() iter.Seq[any]
	}

	// Hashabler lets a type supply its own canonical projection. It takes
	// precedence over Mapping and Sequence.
	Hashabler interface {
		Hashable() Value
	}
)

// None is the projection of nil.
var None = Value{repr: "None", set: true}

// Make returns the canonical projection of obj. It never mutates obj and
// Make(Make(x)) == Make(x) for every x.
func Make(obj any) Value {
	switch v := obj.(type) {
	case Value:
		if !v.set {
			return None
		}
		return v
	case nil:
		return None
	case Hashabler:
		return Make(v.Hashable())
	case string:
		return Str(v)
	case bool:
		if v {
			return scalar("True")
		}
		return scalar("False")
	case int:
		return Int(int64(v))
	case int8:
		return Int(int64(v))
	case int16:
		return Int(int64(v))
	case int32:
		return Int(int64(v))
	case int64:
		return Int(v)
	case uint:
		return scalar(strconv.FormatUint(uint64(v), 10))
	case uint8:
		return scalar(strconv.FormatUint(uint64(v), 10))
	case uint16:
		return scalar(strconv.FormatUint(uint64(v), 10))
	case uint32:
		return scalar(strconv.FormatUint(uint64(v), 10))
	case uint64:
		return scalar(strconv.FormatUint(v, 10))
	case float32:
		return Float(float64(v))
	case float64:
		return Float(v)
	case []byte:
		return scalar("b" + Quote(string(v)))
	case Mapping:
		return fromPairs(v.Pairs())
	case Sequence:
		return fromItems(v.Items())
	case []any:
		return fromItems(slices.Values(v))
	case map[string]any:
		return fromGoMap(reflect.ValueOf(v))
	}
	return fromReflect(reflect.ValueOf(obj))
}

// Tuple builds the projection of a tuple holding the given items.
func Tuple(items ...any) Value {
	return fromItems(slices.Values(items))
}

// Str returns the projection of a string. Nested inside a tuple it renders
// quoted; on its own String returns the bare text.
func Str(s string) Value {
	return Value{repr: Quote(s), plain: s, isStr: true, set: true}
}

// Int returns the projection of an integer.
func Int(i int64) Value {
	return scalar(strconv.FormatInt(i, 10))
}

// Float returns the projection of a floating point number, rendered the way
// Python's repr renders floats (1.0, 0.25, inf, nan).
func Float(f float64) Value {
	return scalar(FormatFloat(f))
}

// String renders the projection in tuple notation. A bare string renders
// without quotes.
func (v Value) String() string {
	if !v.set {
		return None.repr
	}
	if v.isStr {
		return v.plain
	}
	return v.repr
}

// Repr renders the projection as it appears when nested inside a tuple.
func (v Value) Repr() string {
	if !v.set {
		return None.repr
	}
	return v.repr
}

// Sum64 returns the xxhash digest of the canonical form.
func (v Value) Sum64() uint64 {
	return xxhash.Sum64String(v.Repr())
}

// Hashable lets a Value be passed anywhere a Hashabler is accepted.
func (v Value) Hashable() Value {
	return v
}

// Equal reports whether a and b have the same canonical projection.
func Equal(a, b any) bool {
	return Make(a) == Make(b)
}

// FormatFloat renders f the way Python's repr does for the common cases:
// integral values keep a trailing ".0" and non-finite values are spelled
// inf, -inf and nan.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// Quote renders s as a Python string literal: single quotes unless the text
// contains a single quote and no double quote.
func Quote(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(q)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r == rune(q) {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
	return b.String()
}

func scalar(repr string) Value {
	return Value{repr: repr, set: true}
}

func fromItems(seq iter.Seq[any]) Value {
	var parts []string
	for item := range seq {
		parts = append(parts, Make(item).Repr())
	}
	return joinTuple(parts)
}

func fromPairs(seq iter.Seq2[any, any]) Value {
	var parts []string
	for k, v := range seq {
		parts = append(parts, pair(Make(k), Make(v)))
	}
	return joinTuple(parts)
}

func pair(k, v Value) string {
	return "(" + k.Repr() + ", " + v.Repr() + ")"
}

func joinTuple(parts []string) Value {
	switch len(parts) {
	case 0:
		return scalar("()")
	case 1:
		return scalar("(" + parts[0] + ",)")
	}
	return scalar("(" + strings.Join(parts, ", ") + ")")
}

// fromGoMap projects a Go map. Entries are sorted by the canonical form of
// their keys; a map whose element type is struct{} is treated as a set.
func fromGoMap(rv reflect.Value) Value {
	type entry struct {
		key Value
		val reflect.Value
	}
	entries := make([]entry, 0, rv.Len())
	it := rv.MapRange()
	for it.Next() {
		entries = append(entries, entry{key: Make(it.Key().Interface()), val: it.Value()})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		return strings.Compare(a.key.Repr(), b.key.Repr())
	})

	isSet := rv.Type().Elem().Kind() == reflect.Struct && rv.Type().Elem().NumField() == 0
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		if isSet {
			parts = append(parts, e.key.Repr())
			continue
		}
		parts = append(parts, pair(e.key, Make(e.val.Interface())))
	}
	return joinTuple(parts)
}

func fromReflect(rv reflect.Value) Value {
	switch rv.Kind() {
	case reflect.Invalid:
		return None
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return None
		}
		return Make(rv.Elem().Interface())
	case reflect.Slice:
		if rv.IsNil() {
			return scalar("()")
		}
		fallthrough
	case reflect.Array:
		parts := make([]string, rv.Len())
		for i := range rv.Len() {
			parts[i] = Make(rv.Index(i).Interface()).Repr()
		}
		return joinTuple(parts)
	case reflect.Map:
		return fromGoMap(rv)
	case reflect.String:
		return Str(rv.String())
	case reflect.Bool:
		return Make(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return scalar(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float())
	}
	// Anything else is opaque: identify it by type and printed form.
	return scalar(fmt.Sprintf("<%s %v>", rv.Type(), rv.Interface()))
}

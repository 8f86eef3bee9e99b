// SPDX-License-Identifier: MPL-2.0

package cfgtree

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/runcfg/runcfg/pkg/hashable"
)

const indentUnit = "  "

// String renders c as indented "key: value" lines. Subtrees are indented by
// two spaces per level; empty subtrees and null leaves render as "key:".
func (c *Config) String() string {
	var b strings.Builder
	c.render(&b, 0)
	return strings.TrimSuffix(b.String(), "\n")
}

func (c *Config) render(b *strings.Builder, depth int) {
	indent := strings.Repeat(indentUnit, depth)
	for k, v := range c.All() {
		b.WriteString(indent)
		b.WriteString(k)
		b.WriteByte(':')
		switch t := v.(type) {
		case *Config:
			b.WriteByte('\n')
			t.render(b, depth+1)
			continue
		case Null:
			b.WriteByte('\n')
			continue
		}
		text := Display(v)
		if text == "" {
			b.WriteByte('\n')
			continue
		}
		b.WriteByte(' ')
		b.WriteString(strings.ReplaceAll(text, "\n", "\n"+indent+indentUnit))
		b.WriteByte('\n')
	}
}

// Display renders v as it appears on the right-hand side of a rendered
// leaf: strings are bare, everything else uses Repr.
func Display(v Value) string {
	switch t := v.(type) {
	case String:
		return string(t)
	case Opaque:
		return opaqueText(t.V)
	case missing:
		return t.String()
	}
	return Repr(v)
}

// Repr renders v in literal notation: quoted strings, [lists], (tuples),
// {sets} and {'key': value} mappings.
func Repr(v Value) string {
	switch t := v.(type) {
	case nil, Null:
		return "None"
	case missing:
		return t.String()
	case String:
		return hashable.Quote(string(t))
	case Int:
		return strconv.FormatInt(int64(t), 10)
	case Float:
		return FormatFloat(float64(t))
	case Bool:
		if t {
			return "True"
		}
		return "False"
	case List:
		return "[" + joinRepr(t) + "]"
	case Tuple:
		if len(t) == 1 {
			return "(" + Repr(t[0]) + ",)"
		}
		return "(" + joinRepr(t) + ")"
	case Set:
		if len(t) == 0 {
			return "set()"
		}
		return "{" + joinRepr(t) + "}"
	case Mapping:
		parts := make([]string, len(t.entries))
		for i, e := range t.entries {
			parts[i] = Repr(e.Key) + ": " + Repr(e.Value)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *Config:
		return Repr(t.toMapping())
	case Opaque:
		return opaqueText(t.V)
	}
	return fmt.Sprint(v)
}

// FormatFloat renders f with the shortest exact decimal expansion and a
// trailing ".0" for integral values.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	if math.Abs(f) >= 1e16 || (f != 0 && math.Abs(f) < 1e-4) {
		return hashable.FormatFloat(f)
	}
	s := decimal.NewFromFloat(f).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func joinRepr(vs []Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = Repr(v)
	}
	return strings.Join(parts, ", ")
}

func opaqueText(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", v)
}

// SPDX-License-Identifier: MPL-2.0

package cfgtree

import (
	"math"
	"testing"
	"time"

	"github.com/runcfg/runcfg/pkg/hashable"
)

func TestValueOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want Kind
	}{
		{"nil", nil, KindNull},
		{"string", "x", KindString},
		{"int", 3, KindInt},
		{"uint8", uint8(3), KindInt},
		{"uint64 in range", uint64(math.MaxInt64), KindInt},
		{"uint64 beyond int64", uint64(math.MaxUint64), KindOpaque},
		{"float", 1.5, KindFloat},
		{"bool", false, KindBool},
		{"slice", []any{1}, KindList},
		{"typed slice", []string{"a"}, KindList},
		{"array", [2]int{1, 2}, KindTuple},
		{"map becomes subtree", map[string]any{"a": 1}, KindConfig},
		{"dict becomes subtree", Dict{{"a", 1}}, KindConfig},
		{"duration is opaque", time.Second, KindOpaque},
		{"value passes through", Set{Int(1)}, KindSet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ValueOf(tt.in).Kind(); got != tt.want {
				t.Errorf("ValueOf(%v).Kind() = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestNestedMappingsStayLeaves(t *testing.T) {
	t.Parallel()

	v := ValueOf([]any{map[string]any{"a": 1}, Dict{{"b", 2}}})
	list, ok := As[List](v)
	if !ok {
		t.Fatalf("ValueOf() = %T, want List", v)
	}
	for i, item := range list {
		if item.Kind() != KindMapping {
			t.Errorf("item %d kind = %s, want mapping", i, item.Kind())
		}
	}
}

func TestConfigHashable(t *testing.T) {
	t.Parallel()

	c := mustFromDict(t, nestedDict())
	want := "(('key1', 'val1'), ('key2', (('key2.1', (('key3.1', 'val3'),)), ('key2.2', 2))))"
	if got := hashable.Make(c).String(); got != want {
		t.Errorf("hashable.Make(config) = %s, want %s", got, want)
	}

	empty := New()
	if hashable.Make(empty) != hashable.Make(NewMapping()) {
		t.Error("an empty subtree and an empty mapping should project alike")
	}
}

func TestMappingWith(t *testing.T) {
	t.Parallel()

	m := NewMapping(MappingEntry{String("a"), Int(1)})
	m2 := m.With(String("a"), Int(2)).With(Int(1), String("one"))

	if m.Len() != 1 {
		t.Errorf("With() modified the receiver")
	}
	if got := Repr(m2); got != "{'a': 2, 1: 'one'}" {
		t.Errorf("Repr() = %q", got)
	}
	if v, ok := m2.Get(Int(1)); !ok || v != String("one") {
		t.Errorf("Get(1) = %v, %v", v, ok)
	}
}

func TestNative(t *testing.T) {
	t.Parallel()

	c := mustFromDict(t, Dict{{"a", []any{1, "x"}}, {"b", Dict{{"c", 1.5}}}})
	m := c.ToMap()
	if list, ok := m["a"].([]any); !ok || list[0] != int64(1) || list[1] != "x" {
		t.Errorf(`ToMap()["a"] = %#v`, m["a"])
	}
	if sub, ok := m["b"].(map[string]any); !ok || sub["c"] != 1.5 {
		t.Errorf(`ToMap()["b"] = %#v`, m["b"])
	}

	d := c.ToDict()
	if len(d) != 2 || d[0].Key != "a" {
		t.Errorf("ToDict() = %#v", d)
	}
}

// SPDX-License-Identifier: MPL-2.0

package cfgtree

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigListRejectsDuplicates(t *testing.T) {
	t.Parallel()

	c1 := experimentConfig(t, "Crude Oil")
	c2 := experimentConfig(t, "Gold")
	dup := c1.Copy()

	l, err := NewConfigList(c1, c2)
	if err != nil {
		t.Fatalf("NewConfigList() error = %v", err)
	}

	err = l.SetConfigs([]*Config{c1, c2, dup})
	var de *DuplicateConfigError
	if !errors.As(err, &de) {
		t.Fatalf("SetConfigs() error = %v, want DuplicateConfigError", err)
	}
	if de.First != 0 || de.Second != 2 {
		t.Errorf("duplicate pair = (%d, %d), want (0, 2)", de.First, de.Second)
	}
	if l.Len() != 2 {
		t.Errorf("Len() after rejected SetConfigs = %d, want 2", l.Len())
	}
	if err := l.Append(Entry{Name: "again", Config: dup}); !errors.Is(err, ErrDuplicateConfig) {
		t.Errorf("Append() error = %v, want ErrDuplicateConfig", err)
	}
}

func TestConfigListEmptySubtreeAndEmptyList(t *testing.T) {
	t.Parallel()

	subtree := mustFromDict(t, Dict{{"a", Dict{}}})
	list := mustFromDict(t, Dict{{"a", List{}}})
	if subtree.String() == list.String() {
		t.Fatalf("renderings match: %q", subtree.String())
	}

	l, err := NewConfigList(subtree, list)
	if err != nil {
		t.Fatalf("NewConfigList() error = %v", err)
	}
	if l.Len() != 2 {
		t.Errorf("Len() = %d, want 2", l.Len())
	}
}

func TestConfigListValidateAfterMutation(t *testing.T) {
	t.Parallel()

	c1 := experimentConfig(t, "Crude Oil")
	c2 := experimentConfig(t, "Gold")
	l, err := NewConfigList(c1, c2)
	if err != nil {
		t.Fatalf("NewConfigList() error = %v", err)
	}
	if err := l.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	mustSet(t, c2, Path{"build_targets", "target_asset"}, "Crude Oil")
	if err := l.Validate(); !errors.Is(err, ErrDuplicateConfig) {
		t.Errorf("Validate() error = %v, want ErrDuplicateConfig", err)
	}
}

func TestConfigListOnly(t *testing.T) {
	t.Parallel()

	var empty ConfigList
	if _, err := empty.Only(); !errors.Is(err, ErrEmptyConfigList) {
		t.Errorf("Only() on empty error = %v", err)
	}

	c1 := experimentConfig(t, "Crude Oil")
	l, err := NewNamedConfigList(Entry{Name: "base", Config: c1})
	if err != nil {
		t.Fatalf("NewNamedConfigList() error = %v", err)
	}
	got, err := l.Only()
	if err != nil || got != c1 {
		t.Errorf("Only() = %v, %v", got, err)
	}
	if !strings.HasPrefix(l.String(), "# 0 base\nbuild_model:") {
		t.Errorf("String() = %q", l.String())
	}

	if err := l.Append(Entry{Config: experimentConfig(t, "Gold")}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if _, err := l.Only(); !errors.Is(err, ErrMultipleConfigs) {
		t.Errorf("Only() on two configs error = %v", err)
	}
}

// SPDX-License-Identifier: MPL-2.0

package cfgoverride

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/runcfg/runcfg/internal/testutil"
	"github.com/runcfg/runcfg/pkg/cfgtree"
)

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("experiment", func(t *testing.T) {
		t.Parallel()

		c := testutil.ExperimentConfig(t, "Crude Oil")
		err := Apply(c, []string{
			`("build_model","activation"),("tanh")`,
			`("build_targets","target_asset"),("Natural Gas")`,
		})
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		assertValue(t, c, cfgtree.Path{"build_model", "activation"}, cfgtree.String("tanh"))
		assertValue(t, c, cfgtree.Path{"build_targets", "target_asset"}, cfgtree.String("Natural Gas"))
	})

	t.Run("dotted keys and coercion", func(t *testing.T) {
		t.Parallel()

		c := testutil.NestedConfig(t)
		if err := c.SetUpdateMode(cfgtree.UpdateOverwrite); err != nil {
			t.Fatalf("SetUpdateMode() error = %v", err)
		}
		err := Apply(c, []string{
			`("key1"),("new_val1")`,
			`("key2","key2.2"),(int(22))`,
			`("key2", "key2.1", "key3.1"),("new_val3")`,
		})
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		assertValue(t, c, cfgtree.Path{"key1"}, cfgtree.String("new_val1"))
		assertValue(t, c, cfgtree.Path{"key2", "key2.2"}, cfgtree.Int(22))
		assertValue(t, c, cfgtree.Path{"key2", "key2.1", "key3.1"}, cfgtree.String("new_val3"))
	})

	t.Run("policy violation names the entry", func(t *testing.T) {
		t.Parallel()

		c := testutil.NestedConfig(t)
		err := Apply(c, []string{`("key1"),("other")`})
		if !errors.Is(err, cfgtree.ErrReadOnlyConfig) {
			t.Errorf("Apply() error = %v, want ErrReadOnlyConfig", err)
		}
	})

	t.Run("rejected entry leaves earlier entries unapplied", func(t *testing.T) {
		t.Parallel()

		c := testutil.NestedConfig(t)
		before := c.String()
		err := Apply(c, []string{`("extra"),("added")`, `("key1"),("other")`})
		if !errors.Is(err, cfgtree.ErrReadOnlyConfig) {
			t.Fatalf("Apply() error = %v, want ErrReadOnlyConfig", err)
		}
		if c.String() != before {
			t.Errorf("Apply() mutated the config:\n%s\nwant\n%s", c, before)
		}
	})

	t.Run("malformed entry leaves config untouched", func(t *testing.T) {
		t.Parallel()

		c := testutil.ExperimentConfig(t, "Gold")
		before := c.String()
		err := Apply(c, []string{`("meta","experiment_result_dir"),("out.pkl")`, `("broken"`})
		if !errors.Is(err, ErrParse) {
			t.Fatalf("Apply() error = %v, want ErrParse", err)
		}
		if c.String() != before {
			t.Error("Apply() mutated the config despite a parse error")
		}
	})
}

func TestParseValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		entry string
		want  cfgtree.Value
	}{
		{`("a"),("x")`, cfgtree.String("x")},
		{`('a'),('single')`, cfgtree.String("single")},
		{`("a"),(1.5)`, cfgtree.Float(1.5)},
		{`("a"),(-3)`, cfgtree.Int(-3)},
		{`("a"),(True)`, cfgtree.Bool(true)},
		{`("a"),(None)`, cfgtree.Null{}},
		{`("a"),(float(2))`, cfgtree.Float(2)},
		{`("a"),(str(22))`, cfgtree.String("22")},
		{`("a"),(bool("false"))`, cfgtree.Bool(false)},
		{`("a"),(int("7"))`, cfgtree.Int(7)},
		{`("a"),([1, "b"])`, cfgtree.List{cfgtree.Int(1), cfgtree.String("b")}},
		{`("a"),("has (parens), commas")`, cfgtree.String("has (parens), commas")},
	}
	for _, tt := range tests {
		t.Run(tt.entry, func(t *testing.T) {
			t.Parallel()

			o, err := Parse(tt.entry)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if !cfgtree.Equal(o.Value, tt.want) {
				t.Errorf("Parse().Value = %s, want %s", cfgtree.Repr(o.Value), cfgtree.Repr(tt.want))
			}
		})
	}
}

func TestParsePaths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		entry string
		want  cfgtree.Path
	}{
		{`("a"),(1)`, cfgtree.Path{"a"}},
		{`("a",),(1)`, cfgtree.Path{"a"}},
		{`( "a" , "b.c" ) , (1)`, cfgtree.Path{"a", "b.c"}},
	}
	for _, tt := range tests {
		o, err := Parse(tt.entry)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tt.entry, err)
		}
		if diff := cmp.Diff(tt.want, o.Path); diff != "" {
			t.Errorf("Parse(%q).Path mismatch (-want +got):\n%s", tt.entry, diff)
		}
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	entries := []string{
		``,
		`"a",(1)`,
		`("a")(1)`,
		`("a"),(1) extra`,
		`(),(1)`,
		`("a"),()`,
		`(1),(1)`,
		`("a"),(undefined_name)`,
		`("a"),("unterminated)`,
		`("a"),(1]`,
	}
	for _, entry := range entries {
		_, err := Parse(entry)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("Parse(%q) error = %v, want *ParseError", entry, err)
			continue
		}
		if pe.Entry != entry {
			t.Errorf("ParseError.Entry = %q, want %q", pe.Entry, entry)
		}
	}
}

func TestOverrideString(t *testing.T) {
	t.Parallel()

	o := Override{Path: cfgtree.Path{"a", "b"}, Value: cfgtree.Int(1)}
	if got := o.String(); got != `("a", "b"),(1)` {
		t.Errorf("String() = %q", got)
	}
	back, err := Parse(o.String())
	if err != nil {
		t.Fatalf("Parse(String()) error = %v", err)
	}
	if !back.Path.Equal(o.Path) || back.Value != o.Value {
		t.Errorf("Parse(String()) = %v, want %v", back, o)
	}
}

func assertValue(t *testing.T, c *cfgtree.Config, path cfgtree.Path, want cfgtree.Value) {
	t.Helper()
	got, err := c.GetPath(path)
	if err != nil {
		t.Fatalf("GetPath(%s) error = %v", path.Tuple(), err)
	}
	if !cfgtree.Equal(got, want) {
		t.Errorf("GetPath(%s) = %s, want %s", path.Tuple(), cfgtree.Repr(got), cfgtree.Repr(want))
	}
}

// SPDX-License-Identifier: MPL-2.0

package cfgtree

import "testing"

func mustFromDict(t *testing.T, d Dict, opts ...Option) *Config {
	t.Helper()
	c, err := FromDict(d, opts...)
	if err != nil {
		t.Fatalf("FromDict() error = %v", err)
	}
	return c
}

func mustSet(t *testing.T, c *Config, path Path, v any) {
	t.Helper()
	if err := c.SetPath(path, v); err != nil {
		t.Fatalf("SetPath(%s) error = %v", path.Tuple(), err)
	}
}

// experimentConfig builds a small experiment description with the given
// target asset.
func experimentConfig(t *testing.T, target string) *Config {
	t.Helper()
	c := New(WithUpdateMode(UpdateOverwrite))
	mustSet(t, c, Path{"build_model", "activation"}, "sigmoid")
	mustSet(t, c, Path{"build_targets", "target_asset"}, target)
	mustSet(t, c, Path{"build_targets", "preprocessing", "preprocessor"}, "tokenizer")
	mustSet(t, c, Path{"meta", "experiment_result_dir"}, "results.pkl")
	return c
}

func nestedDict() Dict {
	return Dict{
		{"key1", "val1"},
		{"key2", Dict{
			{"key2.1", Dict{{"key3.1", "val3"}}},
			{"key2.2", 2},
		}},
	}
}

// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"testing"

	"github.com/runcfg/runcfg/pkg/cfgtree"
)

// MustFromDict builds a Config from an ordered mapping.
// The test fails immediately if the mapping violates the config's policies.
func MustFromDict(t testing.TB, d cfgtree.Dict, opts ...cfgtree.Option) *cfgtree.Config {
	t.Helper()
	c, err := cfgtree.FromDict(d, opts...)
	if err != nil {
		t.Fatalf("failed to build config: %v", err)
	}
	return c
}

// MustSet assigns v at path.
// The test fails immediately if the assignment is rejected.
func MustSet(t testing.TB, c *cfgtree.Config, path cfgtree.Path, v any) {
	t.Helper()
	if err := c.SetPath(path, v); err != nil {
		t.Fatalf("failed to set %s: %v", path.Tuple(), err)
	}
}

// ExperimentConfig returns an overwritable experiment description:
//
//	build_model:
//	  activation: sigmoid
//	build_targets:
//	  target_asset: <target>
//	  preprocessing:
//	    preprocessor: tokenizer
//	meta:
//	  experiment_result_dir: results.pkl
func ExperimentConfig(t testing.TB, target string) *cfgtree.Config {
	t.Helper()
	c := cfgtree.New(cfgtree.WithUpdateMode(cfgtree.UpdateOverwrite))
	model, err := c.AddSubconfig("build_model")
	if err != nil {
		t.Fatalf("failed to add build_model: %v", err)
	}
	MustSet(t, model, cfgtree.Path{"activation"}, "sigmoid")
	MustSet(t, c, cfgtree.Path{"build_targets", "target_asset"}, target)
	MustSet(t, c, cfgtree.Path{"build_targets", "preprocessing", "preprocessor"}, "tokenizer")
	MustSet(t, c, cfgtree.Path{"meta", "experiment_result_dir"}, "results.pkl")
	return c
}

// NestedConfig returns a config with dotted literal keys at several levels:
//
//	key1: val1
//	key2:
//	  key2.1:
//	    key3.1: val3
//	  key2.2: 2
func NestedConfig(t testing.TB, opts ...cfgtree.Option) *cfgtree.Config {
	t.Helper()
	return MustFromDict(t, cfgtree.Dict{
		{Key: "key1", Value: "val1"},
		{Key: "key2", Value: cfgtree.Dict{
			{Key: "key2.1", Value: cfgtree.Dict{{Key: "key3.1", Value: "val3"}}},
			{Key: "key2.2", Value: 2},
		}},
	}, opts...)
}

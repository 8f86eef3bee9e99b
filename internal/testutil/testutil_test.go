// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"testing"
)

func TestMustWriteFile(t *testing.T) {
	t.Parallel()

	path := MustWriteFile(t, filepath.Join(t.TempDir(), "a", "b.txt"), "hello")
	if got := MustReadFile(t, path); got != "hello" {
		t.Errorf("MustReadFile() = %q, want hello", got)
	}
}

func TestExperimentConfig(t *testing.T) {
	t.Parallel()

	c := ExperimentConfig(t, "Gold")
	v, err := c.Get("build_targets.target_asset")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if v.Kind().String() != "string" {
		t.Errorf("target_asset kind = %s, want string", v.Kind())
	}
	if NestedConfig(t).Len() != 2 {
		t.Error("NestedConfig() should have two top-level keys")
	}
}

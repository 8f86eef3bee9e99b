// SPDX-License-Identifier: MPL-2.0

package cfgtree

import "testing"

func TestReplaceSharedDirPaths(t *testing.T) {
	t.Parallel()

	mapping := map[string]string{
		"/ecs_tokyo":    "/ecs",
		"/data/shared1": "/shared_folder1",
		"/data/shared2": "/shared_folder2",
	}
	c := mustFromDict(t, Dict{
		{"key1", "/data/shared1/asset1"},
		{"key2", "/data/shared2/asset1/item"},
		{"key3", 1},
		{"key4", `object("/data/shared2/asset1/item")`},
		{"key5", Dict{
			{"key5.1", "/data/shared1/asset1"},
			{"key5.2", "/data/shared2/asset2"},
		}},
		{"key6", "/data/shared1/ecs_tokyo/some_path"},
		{"key7", []any{"/data/shared2/x", 3}},
	})

	got := ReplaceSharedDirPaths(c, mapping)
	want := `key1: /shared_folder1/asset1
key2: /shared_folder2/asset1/item
key3: 1
key4: object("/shared_folder2/asset1/item")
key5:
  key5.1: /shared_folder1/asset1
  key5.2: /shared_folder2/asset2
key6: /shared_folder1/ecs/some_path
key7: ['/shared_folder2/x', 3]`
	if got.String() != want {
		t.Errorf("ReplaceSharedDirPaths() =\n%s\nwant\n%s", got, want)
	}
	if v, _ := c.Get("key1"); v != String("/data/shared1/asset1") {
		t.Error("ReplaceSharedDirPaths() modified its input")
	}
}

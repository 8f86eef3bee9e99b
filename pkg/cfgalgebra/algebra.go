// SPDX-License-Identifier: MPL-2.0

package cfgalgebra

import (
	"errors"
	"fmt"
	"strings"

	"github.com/runcfg/runcfg/pkg/cfgtree"
	"github.com/runcfg/runcfg/pkg/hashable"
)

// ErrNotEnoughConfigs is returned by operations that compare at least two configs.
var ErrNotEnoughConfigs = errors.New("at least two configs are required")

// signature identifies a leaf value for comparison. Empty subtree markers
// never compare equal to an empty sequence leaf.
type signature struct {
	hash   hashable.Value
	marker bool
}

func leafSignature(l cfgtree.Leaf) signature {
	return signature{hash: l.Hash(), marker: l.IsEmptySubtree()}
}

// pathKey joins path segments with a separator that cannot appear in
// rendered keys, so "a.b" and ("a", "b") stay distinct.
func pathKey(p cfgtree.Path) string {
	return strings.Join(p, "\x00")
}

func index(c *cfgtree.Config) map[string]signature {
	leaves := c.Flatten()
	idx := make(map[string]signature, len(leaves))
	for _, l := range leaves {
		idx[pathKey(l.Path)] = leafSignature(l)
	}
	return idx
}

func requireTwo(n int) error {
	if n < 2 {
		return fmt.Errorf("%w: got %d", ErrNotEnoughConfigs, n)
	}
	return nil
}

// IntersectConfigs returns the leaves present with an identical value in
// every config. A path that is a leaf in one config and a subtree in another
// is excluded. The result follows the key order and policies of the first
// config.
func IntersectConfigs(configs []*cfgtree.Config) (*cfgtree.Config, error) {
	if err := requireTwo(len(configs)); err != nil {
		return nil, err
	}

	others := make([]map[string]signature, 0, len(configs)-1)
	for _, c := range configs[1:] {
		others = append(others, index(c))
	}

	var kept []cfgtree.Leaf
	for _, l := range configs[0].Flatten() {
		key, sig := pathKey(l.Path), leafSignature(l)
		shared := true
		for _, idx := range others {
			if idx[key] != sig {
				shared = false
				break
			}
		}
		if shared {
			kept = append(kept, l)
		}
	}
	return cfgtree.Build(kept, configs[0].Options()...), nil
}

// SubtractConfig returns the leaves of a whose path is absent from b or
// holds a different value there. An empty subtree of a that b lacks counts
// as a difference. Empty subtrees present in both are kept as markers only
// when at least one leaf differs, so subtracting a config from itself always
// yields an empty config.
func SubtractConfig(a, b *cfgtree.Config) *cfgtree.Config {
	idx := index(b)

	var kept []cfgtree.Leaf
	differs := false
	for _, l := range a.Flatten() {
		sig, ok := idx[pathKey(l.Path)]
		same := ok && sig == leafSignature(l)
		if l.IsEmptySubtree() && same {
			kept = append(kept, l)
			continue
		}
		if same {
			continue
		}
		kept = append(kept, l)
		differs = true
	}
	if !differs {
		return cfgtree.New(a.Options()...)
	}
	return cfgtree.Build(kept, a.Options()...)
}

// DiffConfigs returns, for every config, the leaves that are not shared by
// all configs: each result is the config minus the intersection of all of
// them.
func DiffConfigs(configs []*cfgtree.Config) ([]*cfgtree.Config, error) {
	common, err := IntersectConfigs(configs)
	if err != nil {
		return nil, err
	}
	out := make([]*cfgtree.Config, len(configs))
	for i, c := range configs {
		out[i] = SubtractConfig(c, common)
	}
	return out, nil
}

// SPDX-License-Identifier: MPL-2.0

// Package cfgtree implements a hierarchical, order-preserving configuration
// tree.
//
// A Config maps string keys to either leaf values or nested Config subtrees.
// Keys keep their insertion order, which is the order used for rendering,
// flattening and serialization. Values are addressed by a single key, by a
// dotted key ("a.b.c") or by an explicit Path.
//
// Every Config carries three policies:
//
//   - UpdateMode decides what happens when an existing key is assigned again
//     (assign once, overwrite or merge).
//   - ClobberMode decides whether a leaf may be replaced by a subtree or the
//     other way around.
//   - ReportMode decides whether a missing key is silent, logged or an error.
//
// Subtrees created implicitly by an assignment inherit the policies of their
// parent. Configs are not safe for concurrent mutation.
//
// ConfigList holds an ordered collection of Configs that are pairwise
// distinct by content.
package cfgtree

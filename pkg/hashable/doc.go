// SPDX-License-Identifier: MPL-2.0

// Package hashable projects arbitrary nested values onto a canonical,
// comparable form.
//
// Mappings become tuples of (key, value) pairs, sequences and sets become
// tuples of their items, and scalars are kept as they are. The projection is
// a plain comparable Go value, so it can be used as a map key for
// deduplication, and it renders in the familiar tuple notation:
//
//	hashable.Make([]any{1, "2"}).String() // (1, '2')
//
// Ordered containers take part through the Mapping and Sequence interfaces.
// Go maps carry no insertion order, so their entries are ordered by the
// canonical form of their keys.
package hashable

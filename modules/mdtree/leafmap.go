// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package mdtree

import (
	"github.com/emirpasic/gods/maps/treemap"
)

// Leaf is the value side of a leaf-map entry.
type Leaf struct {
	Value string
	Shape Shape
}

// LeafMap maps a joined diff key to its leaf content, kept in sorted
// diff-key order (spec.md §5 ordering guarantee (1)). C5 still sorts the
// union of keys across branches before emitting rows.
type LeafMap struct {
	tree *treemap.Map
}

// NewLeafMap returns an empty, key-sorted leaf map.
func NewLeafMap() *LeafMap {
	return &LeafMap{tree: treemap.NewWithStringComparator()}
}

// Put inserts or overwrites the leaf at key.
func (m *LeafMap) Put(key string, leaf Leaf) {
	m.tree.Put(key, leaf)
}

// Get returns the leaf at key, if present.
func (m *LeafMap) Get(key string) (Leaf, bool) {
	v, ok := m.tree.Get(key)
	if !ok {
		return Leaf{}, false
	}
	return v.(Leaf), true
}

// Has reports whether key is present.
func (m *LeafMap) Has(key string) bool {
	_, ok := m.tree.Get(key)
	return ok
}

// Size returns the number of leaves.
func (m *LeafMap) Size() int {
	return m.tree.Size()
}

// Keys returns all keys in sorted order.
func (m *LeafMap) Keys() []string {
	raw := m.tree.Keys()
	out := make([]string, len(raw))
	for i, k := range raw {
		out[i] = k.(string)
	}
	return out
}

// Each iterates leaves in sorted key order.
func (m *LeafMap) Each(fn func(key string, leaf Leaf)) {
	m.tree.Each(func(key, value any) {
		fn(key.(string), value.(Leaf))
	})
}

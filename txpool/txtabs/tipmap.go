// Copyright 2024 The txtabs Authors
// This file is part of the txtabs library.
//
// The txtabs library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The txtabs library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the txtabs library. If not, see <http://www.gnu.org/licenses/>.

package txtabs

import "github.com/google/btree"

// tipNode is one key's worth of ByTipIndex/ByTipCapIndex: a tip (or tip
// cap) value and the nonce-ordered list of items sharing it.
type tipNode[K any] struct {
	key   K
	items *NonceList
}

// tipMultimap is a sorted multimap: a balanced tree keyed by an
// effective tip or tip cap, each key mapping to a NonceList. ByTipIndex
// (K=int64, since effective tip can be negative under EIP-1559) and
// ByTipCapIndex (K=uint64) are both instances of this one generic
// implementation.
type tipMultimap[K any] struct {
	tree  *btree.BTreeG[tipNode[K]]
	less  func(a, b K) bool
	count int
}

func newTipMultimap[K any](less func(a, b K) bool) *tipMultimap[K] {
	return &tipMultimap[K]{
		tree: btree.NewG(nonceBucketDegree, func(a, b tipNode[K]) bool { return less(a.key, b.key) }),
		less: less,
	}
}

// Insert adds item under key.
func (m *tipMultimap[K]) Insert(key K, item *ItemRef) {
	node, ok := m.tree.Get(tipNode[K]{key: key})
	if !ok {
		node = tipNode[K]{key: key, items: newNonceList()}
		m.tree.ReplaceOrInsert(node)
	}
	node.items.Add(item)
	m.count++
}

// Remove deletes item from key's bucket, pruning the bucket if it
// becomes empty.
func (m *tipMultimap[K]) Remove(key K, item *ItemRef) bool {
	node, ok := m.tree.Get(tipNode[K]{key: key})
	if !ok {
		return false
	}
	if !node.items.Remove(item) {
		return false
	}
	if node.items.Len() == 0 {
		m.tree.Delete(node)
	}
	m.count--
	return true
}

// Len returns the total number of items across every key.
func (m *tipMultimap[K]) Len() int { return m.count }

// Ascend visits every item ascending by (key, nonce, insertion order).
func (m *tipMultimap[K]) Ascend(fn func(key K, item *ItemRef) bool) {
	m.tree.Ascend(func(n tipNode[K]) bool {
		ok := true
		n.items.Ascend(func(it *ItemRef) bool {
			ok = fn(n.key, it)
			return ok
		})
		return ok
	})
}

// Descend visits every item descending by (key, nonce, insertion order)
// — the exact reverse of Ascend.
func (m *tipMultimap[K]) Descend(fn func(key K, item *ItemRef) bool) {
	m.tree.Descend(func(n tipNode[K]) bool {
		ok := true
		n.items.Descend(func(it *ItemRef) bool {
			ok = fn(n.key, it)
			return ok
		})
		return ok
	})
}

// AscendGE visits every item with key >= pivot, ascending.
func (m *tipMultimap[K]) AscendGE(pivot K, fn func(key K, item *ItemRef) bool) {
	m.tree.AscendGreaterOrEqual(tipNode[K]{key: pivot}, func(n tipNode[K]) bool {
		ok := true
		n.items.Ascend(func(it *ItemRef) bool {
			ok = fn(n.key, it)
			return ok
		})
		return ok
	})
}

// DescendLE visits every item with key <= pivot, descending.
func (m *tipMultimap[K]) DescendLE(pivot K, fn func(key K, item *ItemRef) bool) {
	m.tree.DescendLessOrEqual(tipNode[K]{key: pivot}, func(n tipNode[K]) bool {
		ok := true
		n.items.Descend(func(it *ItemRef) bool {
			ok = fn(n.key, it)
			return ok
		})
		return ok
	})
}

// Eq returns the items stored exactly at key, nonce-ordered.
func (m *tipMultimap[K]) Eq(key K) []*ItemRef {
	node, ok := m.tree.Get(tipNode[K]{key: key})
	if !ok {
		return nil
	}
	var out []*ItemRef
	node.items.Ascend(func(it *ItemRef) bool {
		out = append(out, it)
		return true
	})
	return out
}

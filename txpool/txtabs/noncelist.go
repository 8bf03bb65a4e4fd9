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

// nonceBucketDegree is the B-tree branching factor used by every ordered
// index in this package (NonceList, ByTipIndex, ByTipCapIndex). 32 is the
// degree google/btree itself benchmarks as a good default for in-memory
// workloads of this size.
const nonceBucketDegree = 32

// nonceBucket is one key's worth of items in a NonceList: all the
// ItemRefs sharing the same nonce, kept in insertion order — more than
// one item per (sender, nonce) is allowed.
type nonceBucket struct {
	nonce uint64
	items []*ItemRef
}

// NonceList is an ordered map nonce -> ItemList: a balanced tree keyed
// by nonce, each key holding an insertion-ordered list of items. It
// backs the per-sender nonce views in BySenderIndex, and ByTipIndex/
// ByTipCapIndex hold one NonceList per tip key (see tipmap.go).
type NonceList struct {
	tree  *btree.BTreeG[nonceBucket]
	count int
}

func newNonceList() *NonceList {
	return &NonceList{
		tree: btree.NewG(nonceBucketDegree, func(a, b nonceBucket) bool { return a.nonce < b.nonce }),
	}
}

// Add inserts item under its transaction's nonce.
func (n *NonceList) Add(item *ItemRef) {
	nonce := item.tx.Nonce()
	bucket, ok := n.tree.Get(nonceBucket{nonce: nonce})
	if !ok {
		bucket = nonceBucket{nonce: nonce}
	}
	bucket.items = append(bucket.items, item)
	n.tree.ReplaceOrInsert(bucket)
	n.count++
}

// Remove deletes item from its nonce bucket, reporting whether it was
// found.
func (n *NonceList) Remove(item *ItemRef) bool {
	nonce := item.tx.Nonce()
	bucket, ok := n.tree.Get(nonceBucket{nonce: nonce})
	if !ok {
		return false
	}
	idx := -1
	for i, it := range bucket.items {
		if it == item {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	bucket.items = append(bucket.items[:idx:idx], bucket.items[idx+1:]...)
	if len(bucket.items) == 0 {
		n.tree.Delete(bucket)
	} else {
		n.tree.ReplaceOrInsert(bucket)
	}
	n.count--
	return true
}

// Len returns the total number of items across every nonce bucket.
func (n *NonceList) Len() int { return n.count }

// Get returns the items sharing nonce, in insertion order.
func (n *NonceList) Get(nonce uint64) []*ItemRef {
	bucket, ok := n.tree.Get(nonceBucket{nonce: nonce})
	if !ok {
		return nil
	}
	return bucket.items
}

// Ascend visits every item in (nonce, insertion-order) order, ascending,
// until fn returns false.
func (n *NonceList) Ascend(fn func(*ItemRef) bool) {
	n.tree.Ascend(func(b nonceBucket) bool {
		for _, it := range b.items {
			if !fn(it) {
				return false
			}
		}
		return true
	})
}

// Descend visits every item in (nonce, insertion-order) order, descending
// — the exact reverse of Ascend.
func (n *NonceList) Descend(fn func(*ItemRef) bool) {
	n.tree.Descend(func(b nonceBucket) bool {
		for i := len(b.items) - 1; i >= 0; i-- {
			if !fn(b.items[i]) {
				return false
			}
		}
		return true
	})
}

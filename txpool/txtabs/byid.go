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

import (
	"container/list"

	"github.com/go-txpool/txtabs/common"
)

// idPartition is an insertion-ordered hash table: a Go map for O(1)
// lookup paired with a doubly linked list that preserves arrival order,
// kept in lock-step on every mutation.
type idPartition struct {
	order *list.List // of *ItemRef, oldest at Front
	elems map[common.Hash]*list.Element
}

func newIdPartition() *idPartition {
	return &idPartition{order: list.New(), elems: make(map[common.Hash]*list.Element)}
}

func (p *idPartition) insert(item *ItemRef) {
	p.elems[item.id] = p.order.PushBack(item)
}

func (p *idPartition) delete(hash common.Hash) *ItemRef {
	elem, ok := p.elems[hash]
	if !ok {
		return nil
	}
	p.order.Remove(elem)
	delete(p.elems, hash)
	return elem.Value.(*ItemRef)
}

func (p *idPartition) get(hash common.Hash) (*ItemRef, bool) {
	elem, ok := p.elems[hash]
	if !ok {
		return nil, false
	}
	return elem.Value.(*ItemRef), true
}

func (p *idPartition) len() int { return len(p.elems) }

func (p *idPartition) first() (*ItemRef, bool) {
	if e := p.order.Front(); e != nil {
		return e.Value.(*ItemRef), true
	}
	return nil, false
}

func (p *idPartition) last() (*ItemRef, bool) {
	if e := p.order.Back(); e != nil {
		return e.Value.(*ItemRef), true
	}
	return nil, false
}

// ascend calls fn for every item in arrival order, oldest first, until fn
// returns false.
func (p *idPartition) ascend(fn func(*ItemRef) bool) {
	for e := p.order.Front(); e != nil; e = e.Next() {
		if !fn(e.Value.(*ItemRef)) {
			return
		}
	}
}

// ByIdIndex is the primary table: hash -> ItemRef, split into a local and
// a remote partition. Every hash lives in exactly one partition.
type ByIdIndex struct {
	local  *idPartition
	remote *idPartition
}

func newByIdIndex() *ByIdIndex {
	return &ByIdIndex{local: newIdPartition(), remote: newIdPartition()}
}

func (idx *ByIdIndex) partition(local bool) *idPartition {
	if local {
		return idx.local
	}
	return idx.remote
}

// Contains reports whether hash is present in either partition.
func (idx *ByIdIndex) Contains(hash common.Hash) bool {
	_, ok := idx.Get(hash)
	return ok
}

// Get returns the item for hash, searching both partitions.
func (idx *ByIdIndex) Get(hash common.Hash) (*ItemRef, bool) {
	if item, ok := idx.local.get(hash); ok {
		return item, true
	}
	return idx.remote.get(hash)
}

// Insert appends item to its locality partition. Fails with
// ErrAlreadyKnown if the hash already exists in either partition.
func (idx *ByIdIndex) Insert(item *ItemRef) error {
	if idx.Contains(item.id) {
		return ErrAlreadyKnown
	}
	idx.partition(item.local).insert(item)
	return nil
}

// Delete removes hash from whichever partition holds it.
func (idx *ByIdIndex) Delete(hash common.Hash) *ItemRef {
	if item := idx.local.delete(hash); item != nil {
		return item
	}
	return idx.remote.delete(hash)
}

// ReassignLocality moves item from its old partition to the new one in
// O(1); the item becomes the newest arrival in the destination
// partition.
func (idx *ByIdIndex) ReassignLocality(item *ItemRef, oldLocal, newLocal bool) {
	if oldLocal == newLocal {
		return
	}
	idx.partition(oldLocal).delete(item.id)
	idx.partition(newLocal).insert(item)
}

// LocalLen and RemoteLen report partition sizes in O(1).
func (idx *ByIdIndex) LocalLen() int  { return idx.local.len() }
func (idx *ByIdIndex) RemoteLen() int { return idx.remote.len() }

// AscendLocal and AscendRemote iterate one partition in arrival order.
func (idx *ByIdIndex) AscendLocal(fn func(*ItemRef) bool)  { idx.local.ascend(fn) }
func (idx *ByIdIndex) AscendRemote(fn func(*ItemRef) bool) { idx.remote.ascend(fn) }

// AscendAll iterates every item in the index, local partition first.
func (idx *ByIdIndex) AscendAll(fn func(*ItemRef) bool) {
	done := false
	idx.local.ascend(func(it *ItemRef) bool {
		if !fn(it) {
			done = true
			return false
		}
		return true
	})
	if done {
		return
	}
	idx.remote.ascend(fn)
}

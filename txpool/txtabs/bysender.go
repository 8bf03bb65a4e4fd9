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

import "github.com/go-txpool/txtabs/common"

// SchedList is the per-sender view: every item belonging to one sender,
// exposed through three orthogonal sub-views over the
// same underlying ItemRefs — by locality, by status, and an "any" view
// over all of them — each itself a nonce-ordered NonceList.
//
// A given ItemRef is always present in exactly: any, byLocality[item's
// local flag] and byStatus[item's status]. Add/Remove keep all three in
// lock-step.
type SchedList struct {
	any        *NonceList
	byLocality [2]*NonceList // [0]=remote, [1]=local
	byStatus   [3]*NonceList // indexed by Status
}

func newSchedList() *SchedList {
	return &SchedList{
		any:        newNonceList(),
		byLocality: [2]*NonceList{newNonceList(), newNonceList()},
		byStatus:   [3]*NonceList{newNonceList(), newNonceList(), newNonceList()},
	}
}

func localityIndex(local bool) int {
	if local {
		return 1
	}
	return 0
}

func (s *SchedList) add(item *ItemRef) {
	s.any.Add(item)
	s.byLocality[localityIndex(item.Local())].Add(item)
	s.byStatus[item.Status()].Add(item)
}

func (s *SchedList) remove(item *ItemRef) {
	s.any.Remove(item)
	s.byLocality[localityIndex(item.Local())].Remove(item)
	s.byStatus[item.Status()].Remove(item)
}

// moveLocality relocates item from oldLocal's sub-view to newLocal's,
// leaving any and byStatus untouched.
func (s *SchedList) moveLocality(item *ItemRef, oldLocal, newLocal bool) {
	if oldLocal == newLocal {
		return
	}
	s.byLocality[localityIndex(oldLocal)].Remove(item)
	s.byLocality[localityIndex(newLocal)].Add(item)
}

// moveStatus relocates item from oldStatus's sub-view to newStatus's,
// leaving any and byLocality untouched.
func (s *SchedList) moveStatus(item *ItemRef, oldStatus, newStatus Status) {
	if oldStatus == newStatus {
		return
	}
	s.byStatus[oldStatus].Remove(item)
	s.byStatus[newStatus].Add(item)
}

// Len returns the number of items this sender has in the pool.
func (s *SchedList) Len() int { return s.any.Len() }

// Any returns this sender's full NonceList, independent of locality or
// status.
func (s *SchedList) Any() *NonceList { return s.any }

// ByLocality returns this sender's local or remote NonceList sub-view.
func (s *SchedList) ByLocality(local bool) *NonceList { return s.byLocality[localityIndex(local)] }

// ByStatus returns this sender's NonceList sub-view for one status.
func (s *SchedList) ByStatus(status Status) *NonceList { return s.byStatus[status] }

// BySenderIndex is the per-account view: sender address -> SchedList.
// A sender with no items does not appear in the map;
// Remove prunes empty SchedLists eagerly so LenSenders() reflects only
// senders with at least one staged item.
type BySenderIndex struct {
	senders map[common.Address]*SchedList
	count   int
}

func newBySenderIndex() *BySenderIndex {
	return &BySenderIndex{senders: make(map[common.Address]*SchedList)}
}

// Insert adds item under its sender, creating the SchedList on first
// use.
func (idx *BySenderIndex) Insert(item *ItemRef) {
	sched, ok := idx.senders[item.Sender()]
	if !ok {
		sched = newSchedList()
		idx.senders[item.Sender()] = sched
	}
	sched.add(item)
	idx.count++
}

// Remove deletes item from its sender's SchedList, pruning the SchedList
// entirely once it becomes empty.
func (idx *BySenderIndex) Remove(item *ItemRef) {
	sched, ok := idx.senders[item.Sender()]
	if !ok {
		return
	}
	sched.remove(item)
	idx.count--
	if sched.Len() == 0 {
		delete(idx.senders, item.Sender())
	}
}

// Get returns the SchedList for sender, or nil if it has no items.
func (idx *BySenderIndex) Get(sender common.Address) *SchedList {
	return idx.senders[sender]
}

// Contains reports whether sender currently has any staged items.
func (idx *BySenderIndex) Contains(sender common.Address) bool {
	_, ok := idx.senders[sender]
	return ok
}

// LenSenders returns the number of distinct senders with staged items.
func (idx *BySenderIndex) LenSenders() int { return len(idx.senders) }

// Len returns the total number of items across every sender.
func (idx *BySenderIndex) Len() int { return idx.count }

// MoveLocality updates the index after item's local flag changes from
// oldLocal to newLocal. Callers must also reassign item's own flag and
// move it within ByIdIndex; this only updates the per-sender sub-view.
func (idx *BySenderIndex) MoveLocality(item *ItemRef, oldLocal, newLocal bool) {
	if sched, ok := idx.senders[item.Sender()]; ok {
		sched.moveLocality(item, oldLocal, newLocal)
	}
}

// MoveStatus updates the index after item's status changes from
// oldStatus to newStatus.
func (idx *BySenderIndex) MoveStatus(item *ItemRef, oldStatus, newStatus Status) {
	if sched, ok := idx.senders[item.Sender()]; ok {
		sched.moveStatus(item, oldStatus, newStatus)
	}
}

// AscendSenders visits every sender with at least one item, in map
// iteration order (callers needing a deterministic order should sort the
// addresses themselves; sender enumeration order is not guaranteed
// stable).
func (idx *BySenderIndex) AscendSenders(fn func(common.Address, *SchedList) bool) {
	for addr, sched := range idx.senders {
		if !fn(addr, sched) {
			return
		}
	}
}

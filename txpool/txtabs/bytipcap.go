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

// ByTipCapIndex is a sorted multimap of items ordered by their raw,
// unadjusted gas tip cap. Unlike ByTipIndex, a transaction's
// key here never moves once inserted — base-fee changes leave it
// untouched, which is exactly why the pool keeps both indices: ByTipCap
// gives a base-fee-independent ranking useful for admission/eviction
// decisions that should not shuffle every time the chain's base fee
// moves.
type ByTipCapIndex struct {
	m *tipMultimap[uint64]
}

func newByTipCapIndex() *ByTipCapIndex {
	return &ByTipCapIndex{
		m: newTipMultimap[uint64](func(a, b uint64) bool { return a < b }),
	}
}

func (idx *ByTipCapIndex) keyOf(item *ItemRef) uint64 {
	return item.tx.GasTipCapUint64()
}

// Insert adds item, keyed by its raw gas tip cap.
func (idx *ByTipCapIndex) Insert(item *ItemRef) {
	idx.m.Insert(idx.keyOf(item), item)
}

// Remove deletes item, keyed by its raw gas tip cap.
func (idx *ByTipCapIndex) Remove(item *ItemRef) bool {
	return idx.m.Remove(idx.keyOf(item), item)
}

// Len returns the total number of items in the index.
func (idx *ByTipCapIndex) Len() int { return idx.m.Len() }

// AscendTipCap visits every item ascending by raw tip cap.
func (idx *ByTipCapIndex) AscendTipCap(fn func(tipCap uint64, item *ItemRef) bool) {
	idx.m.Ascend(fn)
}

// DescendTipCap visits every item descending by raw tip cap.
func (idx *ByTipCapIndex) DescendTipCap(fn func(tipCap uint64, item *ItemRef) bool) {
	idx.m.Descend(fn)
}

// AscendGE visits every item with tip cap >= pivot, ascending.
func (idx *ByTipCapIndex) AscendGE(pivot uint64, fn func(tipCap uint64, item *ItemRef) bool) {
	idx.m.AscendGE(pivot, fn)
}

// DescendLE visits every item with tip cap <= pivot, descending.
func (idx *ByTipCapIndex) DescendLE(pivot uint64, fn func(tipCap uint64, item *ItemRef) bool) {
	idx.m.DescendLE(pivot, fn)
}

// Eq returns every item whose raw tip cap equals exactly tipCap.
func (idx *ByTipCapIndex) Eq(tipCap uint64) []*ItemRef { return idx.m.Eq(tipCap) }

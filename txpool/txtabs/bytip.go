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

// ByTipIndex is a sorted multimap of items ordered by their *effective*
// gas tip under the index's current base fee. Unlike
// ByTipCapIndex, every item's key here shifts whenever SetBaseFee moves
// the base fee, because effective tip depends on it (types.Transaction's
// EffectiveGasTip formula).
//
// baseFee is nil until the first SetBaseFee call, matching
// types.TxNoBaseFee semantics: before a base fee is known, every item's
// effective tip equals its raw tip cap.
type ByTipIndex struct {
	m       *tipMultimap[int64]
	baseFee *int64
}

func newByTipIndex() *ByTipIndex {
	return &ByTipIndex{
		m: newTipMultimap[int64](func(a, b int64) bool { return a < b }),
	}
}

func (idx *ByTipIndex) tipOf(item *ItemRef) int64 {
	return item.tx.EffectiveGasTip(idx.baseFee)
}

// Insert adds item, keyed by its effective tip under the current base
// fee.
func (idx *ByTipIndex) Insert(item *ItemRef) {
	idx.m.Insert(idx.tipOf(item), item)
}

// Remove deletes item, keyed by its effective tip under the current base
// fee. Callers must not call Remove after SetBaseFee has changed the
// base fee without first having re-derived item's current key — in
// practice this means Remove must run before SetBaseFee for any item
// being dropped in the same logical step, or after, never straddling it.
func (idx *ByTipIndex) Remove(item *ItemRef) bool {
	return idx.m.Remove(idx.tipOf(item), item)
}

// Len returns the total number of items in the index.
func (idx *ByTipIndex) Len() int { return idx.m.Len() }

// BaseFee returns the index's current base fee, or nil if none has been
// set yet.
func (idx *ByTipIndex) BaseFee() *int64 { return idx.baseFee }

// SetBaseFee rebases the index against a new base fee: every item is
// drained from the tree, its effective tip recomputed against the new
// base fee, and reinserted under the new key. The whole operation is
// atomic from the caller's perspective — no partial-rebase state is ever
// observable outside this call.
func (idx *ByTipIndex) SetBaseFee(baseFee int64) {
	items := make([]*ItemRef, 0, idx.m.Len())
	idx.m.Ascend(func(_ int64, item *ItemRef) bool {
		items = append(items, item)
		return true
	})
	fresh := newTipMultimap[int64](func(a, b int64) bool { return a < b })
	idx.baseFee = &baseFee
	for _, item := range items {
		fresh.Insert(idx.tipOf(item), item)
	}
	idx.m = fresh
}

// ClearBaseFee restores the index to the pre-base-fee state, in which
// effective tip equals raw tip cap for every item (types.TxNoBaseFee).
func (idx *ByTipIndex) ClearBaseFee() {
	items := make([]*ItemRef, 0, idx.m.Len())
	idx.m.Ascend(func(_ int64, item *ItemRef) bool {
		items = append(items, item)
		return true
	})
	idx.baseFee = nil
	fresh := newTipMultimap[int64](func(a, b int64) bool { return a < b })
	for _, item := range items {
		fresh.Insert(idx.tipOf(item), item)
	}
	idx.m = fresh
}

// AscendTip visits every item ascending by effective tip.
func (idx *ByTipIndex) AscendTip(fn func(tip int64, item *ItemRef) bool) { idx.m.Ascend(fn) }

// DescendTip visits every item descending by effective tip — the highest
// bidders first, the order a block builder would drain the index in.
func (idx *ByTipIndex) DescendTip(fn func(tip int64, item *ItemRef) bool) { idx.m.Descend(fn) }

// AscendGE visits every item with effective tip >= pivot, ascending.
func (idx *ByTipIndex) AscendGE(pivot int64, fn func(tip int64, item *ItemRef) bool) {
	idx.m.AscendGE(pivot, fn)
}

// DescendLE visits every item with effective tip <= pivot, descending.
func (idx *ByTipIndex) DescendLE(pivot int64, fn func(tip int64, item *ItemRef) bool) {
	idx.m.DescendLE(pivot, fn)
}

// Eq returns every item whose effective tip equals exactly tip.
func (idx *ByTipIndex) Eq(tip int64) []*ItemRef { return idx.m.Eq(tip) }

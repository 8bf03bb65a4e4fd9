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
	"fmt"
	"time"

	"github.com/go-txpool/txtabs/common"
	"github.com/go-txpool/txtabs/types"
)

// Counts is the occupancy tuple (total, local, remote, queued, pending,
// staged, rejected), returned by Count() for stats reporting. Every
// field is maintained incrementally by Insert/Delete/Reject/
// ReassignStatus — Count() never scans an index to produce one.
type Counts struct {
	Total    int
	Local    int
	Remote   int
	Queued   int
	Pending  int
	Staged   int
	Rejected int
}

// TxTabs is the multi-index transaction store: one authoritative table
// (ByIdIndex) plus three derived indices (BySenderIndex, ByTipIndex,
// ByTipCapIndex) and a bounded reject log (wastebasket), kept mutually
// consistent by routing every mutation through this facade. Nothing
// outside this file ever touches the indices directly.
//
// TxTabs itself is not safe for concurrent use; that responsibility
// belongs to the single-threaded driver in package txpool, which
// serializes every call through its JobQueue.
type TxTabs struct {
	byId     *ByIdIndex
	bySender *BySenderIndex
	byTip    *ByTipIndex
	byTipCap *ByTipCapIndex
	waste    *wastebasket

	// statusCounts and rejected back Count()'s tuple. They are updated
	// incrementally by Insert/Delete/Reject/ReassignStatus; Count() never
	// recomputes them by scanning an index.
	statusCounts [numStatuses]int
	rejected     int
}

// New constructs an empty TxTabs with a wastebasket of the given
// capacity (a capacity of 0 disables reject retention entirely).
func New(wastebasketCap int) *TxTabs {
	return &TxTabs{
		byId:     newByIdIndex(),
		bySender: newBySenderIndex(),
		byTip:    newByTipIndex(),
		byTipCap: newByTipCapIndex(),
		waste:    newWastebasket(wastebasketCap),
	}
}

// Insert recovers tx's sender via signer, constructs an ItemRef, and
// stages it into all four indices atomically. It fails with
// ErrAlreadyKnown if tx's hash is already present, or ErrInvalidSender
// if the signature does not recover.
func (t *TxTabs) Insert(signer types.Signer, tx *types.Transaction, local bool, status Status, info string, now time.Time) (*ItemRef, error) {
	item, err := NewItemRef(signer, tx, local, status, info, now)
	if err != nil {
		return nil, err
	}
	if err := t.byId.Insert(item); err != nil {
		return nil, err
	}
	t.bySender.Insert(item)
	t.byTip.Insert(item)
	t.byTipCap.Insert(item)
	t.statusCounts[item.Status()]++
	return item, nil
}

// Get returns the item for hash, if present.
func (t *TxTabs) Get(hash common.Hash) (*ItemRef, bool) { return t.byId.Get(hash) }

// Contains reports whether hash is currently staged.
func (t *TxTabs) Contains(hash common.Hash) bool { return t.byId.Contains(hash) }

// Delete removes hash from every index and returns the removed item, or
// nil if it was not present. Unlike Reject, Delete does not record the
// item in the wastebasket — use it for normal inclusion/consumption, not
// for rejection bookkeeping.
func (t *TxTabs) Delete(hash common.Hash) *ItemRef {
	item := t.byId.Delete(hash)
	if item == nil {
		return nil
	}
	t.bySender.Remove(item)
	t.byTip.Remove(item)
	t.byTipCap.Remove(item)
	t.statusCounts[item.Status()]--
	return item
}

// Reject removes hash from every index, attaches reason, and records the
// item in the wastebasket. It returns the rejected item, or nil if hash
// was not present.
func (t *TxTabs) Reject(hash common.Hash, reason error) *ItemRef {
	item := t.Delete(hash)
	if item == nil {
		return nil
	}
	item.setRejectReason(reason)
	t.waste.Push(item)
	t.rejected++
	return item
}

// ReassignLocality moves hash between the local and remote partitions of
// every index that distinguishes locality. It is a no-op if hash is
// already at newLocal.
func (t *TxTabs) ReassignLocality(hash common.Hash, newLocal bool) error {
	item, ok := t.byId.Get(hash)
	if !ok {
		return fmt.Errorf("txtabs: reassign locality: %w", ErrUnspecified)
	}
	oldLocal := item.Local()
	if oldLocal == newLocal {
		return nil
	}
	t.byId.ReassignLocality(item, oldLocal, newLocal)
	t.bySender.MoveLocality(item, oldLocal, newLocal)
	item.setLocal(newLocal)
	return nil
}

// ReassignStatus moves hash between lifecycle sub-views. It is a no-op
// if hash is already at newStatus.
func (t *TxTabs) ReassignStatus(hash common.Hash, newStatus Status) error {
	item, ok := t.byId.Get(hash)
	if !ok {
		return fmt.Errorf("txtabs: reassign status: %w", ErrUnspecified)
	}
	oldStatus := item.Status()
	if oldStatus == newStatus {
		return nil
	}
	t.bySender.MoveStatus(item, oldStatus, newStatus)
	item.setStatus(newStatus)
	t.statusCounts[oldStatus]--
	t.statusCounts[newStatus]++
	return nil
}

// SetBaseFee rebases ByTipIndex against a new L1 base fee. ByTipCapIndex
// is unaffected.
func (t *TxTabs) SetBaseFee(baseFee int64) { t.byTip.SetBaseFee(baseFee) }

// ClearBaseFee restores ByTipIndex to its pre-EIP-1559 state (every
// item's effective tip equal to its raw tip cap).
func (t *TxTabs) ClearBaseFee() { t.byTip.ClearBaseFee() }

// BaseFee returns the base fee ByTipIndex currently assumes, or nil.
func (t *TxTabs) BaseFee() *int64 { return t.byTip.BaseFee() }

// BySender returns the per-sender SchedList for sender, or nil.
func (t *TxTabs) BySender(sender common.Address) *SchedList { return t.bySender.Get(sender) }

// ByTip exposes the effective-tip ordered index directly, for range and
// traversal queries.
func (t *TxTabs) ByTip() *ByTipIndex { return t.byTip }

// ByTipCap exposes the raw-tip-cap ordered index directly.
func (t *TxTabs) ByTipCap() *ByTipCapIndex { return t.byTipCap }

// ById exposes the primary local/remote partitioned table directly.
func (t *TxTabs) ById() *ByIdIndex { return t.byId }

// FlushRejects drains and returns every item currently in the
// wastebasket, oldest rejection first.
func (t *TxTabs) FlushRejects() []*ItemRef { return t.waste.Flush() }

// WastebasketLen reports how many rejected items are currently retained.
func (t *TxTabs) WastebasketLen() int { return t.waste.Len() }

// Count returns the occupancy tuple. Every field comes from a counter
// maintained incrementally by Insert/Delete/Reject/ReassignStatus; this
// never scans an index.
func (t *TxTabs) Count() Counts {
	return Counts{
		Total:    t.byId.LocalLen() + t.byId.RemoteLen(),
		Local:    t.byId.LocalLen(),
		Remote:   t.byId.RemoteLen(),
		Queued:   t.statusCounts[Queued],
		Pending:  t.statusCounts[Pending],
		Staged:   t.statusCounts[Staged],
		Rejected: t.rejected,
	}
}

// Verify walks every index and confirms the cross-index invariants
// hold: equal population counts, every item reachable from ByIdIndex
// present in BySenderIndex/ByTipIndex/ByTipCapIndex keyed consistently
// with its own fields, and vice versa. It is O(n) and meant for tests
// and debug builds, not the hot insert/delete path.
func (t *TxTabs) Verify() error {
	total := t.byId.LocalLen() + t.byId.RemoteLen()
	if t.bySender.Len() != total {
		return &InvariantError{Index: "BySenderIndex", Detail: fmt.Sprintf("len %d != ByIdIndex total %d", t.bySender.Len(), total)}
	}
	if t.byTip.Len() != total {
		return &InvariantError{Index: "ByTipIndex", Detail: fmt.Sprintf("len %d != ByIdIndex total %d", t.byTip.Len(), total)}
	}
	if t.byTipCap.Len() != total {
		return &InvariantError{Index: "ByTipCapIndex", Detail: fmt.Sprintf("len %d != ByIdIndex total %d", t.byTipCap.Len(), total)}
	}

	var err error
	t.byId.AscendAll(func(it *ItemRef) bool {
		sched := t.bySender.Get(it.Sender())
		if sched == nil {
			err = &InvariantError{Index: "BySenderIndex", Detail: fmt.Sprintf("sender %s missing for item %s", it.Sender().Hex(), it.Hash().Hex())}
			return false
		}
		found := false
		sched.Any().Ascend(func(cand *ItemRef) bool {
			if cand == it {
				found = true
				return false
			}
			return true
		})
		if !found {
			err = &InvariantError{Index: "BySenderIndex", Detail: fmt.Sprintf("item %s not reachable via its sender's any view", it.Hash().Hex())}
			return false
		}
		byLocality := false
		sched.ByLocality(it.Local()).Ascend(func(cand *ItemRef) bool {
			if cand == it {
				byLocality = true
				return false
			}
			return true
		})
		if !byLocality {
			err = &InvariantError{Index: "BySenderIndex", Detail: fmt.Sprintf("item %s not reachable via its locality sub-view", it.Hash().Hex())}
			return false
		}
		byStatus := false
		sched.ByStatus(it.Status()).Ascend(func(cand *ItemRef) bool {
			if cand == it {
				byStatus = true
				return false
			}
			return true
		})
		if !byStatus {
			err = &InvariantError{Index: "BySenderIndex", Detail: fmt.Sprintf("item %s not reachable via its status sub-view", it.Hash().Hex())}
			return false
		}

		tipMatches := false
		for _, cand := range t.byTip.Eq(it.tx.EffectiveGasTip(t.byTip.BaseFee())) {
			if cand == it {
				tipMatches = true
				break
			}
		}
		if !tipMatches {
			err = &InvariantError{Index: "ByTipIndex", Detail: fmt.Sprintf("item %s not reachable at its current effective tip", it.Hash().Hex())}
			return false
		}

		tipCapMatches := false
		for _, cand := range t.byTipCap.Eq(it.tx.GasTipCapUint64()) {
			if cand == it {
				tipCapMatches = true
				break
			}
		}
		if !tipCapMatches {
			err = &InvariantError{Index: "ByTipCapIndex", Detail: fmt.Sprintf("item %s not reachable at its raw tip cap", it.Hash().Hex())}
			return false
		}
		return true
	})
	return err
}

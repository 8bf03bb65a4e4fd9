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

// Package txtabs implements the pool's multi-index transaction store:
// one authoritative item table (ByIdIndex) and four derived indices
// (BySenderIndex, ByNonceIndex nested within it, ByTipIndex,
// ByTipCapIndex), kept mutually consistent by the TxTabs facade.
package txtabs

import (
	"time"

	"github.com/go-txpool/txtabs/common"
	"github.com/go-txpool/txtabs/types"
)

// Status classifies an ItemRef's lifecycle stage within the pool.
type Status int

const (
	// Queued items are not yet executable (e.g. a nonce gap).
	Queued Status = iota
	// Pending items are executable candidates for the next block.
	Pending
	// Staged items have been selected for inclusion by an external
	// packer but not yet sealed.
	Staged

	// numStatuses is the number of Status values, used to size
	// fixed-length per-status arrays.
	numStatuses
)

// String renders a Status for logs and diagnostics.
func (s Status) String() string {
	switch s {
	case Queued:
		return "queued"
	case Pending:
		return "pending"
	case Staged:
		return "staged"
	default:
		return "unknown"
	}
}

// ItemRef is the unit of storage: one staged transaction plus the
// metadata the pool needs to place it in all five indices. Every field
// other than local, status and rejectReason is immutable after
// construction; those three are mutated only through TxTabs-mediated
// reassign/reject calls so the indices can be kept in sync.
type ItemRef struct {
	id     common.Hash
	tx     *types.Transaction
	sender common.Address

	local        bool
	status       Status
	timestamp    time.Time
	info         string
	rejectReason error
}

// NewItemRef constructs an ItemRef from tx, recovering its sender via
// signer. It fails with ErrInvalidSender if recovery does not yield an
// address; the hash is computed once here and memoised by Transaction
// itself.
func NewItemRef(signer types.Signer, tx *types.Transaction, local bool, status Status, info string, now time.Time) (*ItemRef, error) {
	sender, err := signer.Sender(tx)
	if err != nil {
		return nil, ErrInvalidSender
	}
	return &ItemRef{
		id:        tx.Hash(),
		tx:        tx,
		sender:    sender,
		local:     local,
		status:    status,
		timestamp: now,
		info:      info,
	}, nil
}

// Hash returns the transaction hash, the pool's primary key.
func (it *ItemRef) Hash() common.Hash { return it.id }

// Tx returns the staged transaction.
func (it *ItemRef) Tx() *types.Transaction { return it.tx }

// Sender returns the recovered sender address.
func (it *ItemRef) Sender() common.Address { return it.sender }

// Local reports whether this item is exempt from price floors and
// eviction.
func (it *ItemRef) Local() bool { return it.local }

// Status returns the item's current lifecycle status.
func (it *ItemRef) Status() Status { return it.status }

// Timestamp returns the monotonic wall-clock insertion time, used for
// FIFO ordering within a locality partition and for age-based eviction.
func (it *ItemRef) Timestamp() time.Time { return it.timestamp }

// Info returns the opaque diagnostic string attached at insertion.
func (it *ItemRef) Info() string { return it.info }

// RejectReason returns the reason this item was moved to the
// wastebasket, or nil if it was never rejected.
func (it *ItemRef) RejectReason() error { return it.rejectReason }

// setLocal is used only by TxTabs.reassign to update the locality flag
// once all index-side bookkeeping (ByIdIndex partition move, BySender
// sub-view move) has been performed.
func (it *ItemRef) setLocal(local bool) { it.local = local }

// setStatus is used only by TxTabs.reassign, analogous to setLocal.
func (it *ItemRef) setStatus(status Status) { it.status = status }

// setRejectReason is used only by TxTabs.reject.
func (it *ItemRef) setRejectReason(reason error) { it.rejectReason = reason }

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

package txpool

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/go-txpool/txtabs/common"
	"github.com/go-txpool/txtabs/txpool/txtabs"
	"github.com/go-txpool/txtabs/types"
)

// JobKind tags which payload a Job carries: a closed sum type of job
// variants, each carrying its own input and a reply channel in place of
// a callback field.
type JobKind int

const (
	JobAddTxs JobKind = iota
	JobEvictionInactive
	JobGetAccounts
	JobGetBaseFee
	JobSetBaseFee
	JobGetGasPrice
	JobSetGasPrice
	JobGetItem
	JobLocusCount
	JobMoveRemoteToLocals
	JobStatsReport
	JobAbort
)

func (k JobKind) String() string {
	switch k {
	case JobAddTxs:
		return "AddTxs"
	case JobEvictionInactive:
		return "EvictionInactive"
	case JobGetAccounts:
		return "GetAccounts"
	case JobGetBaseFee:
		return "GetBaseFee"
	case JobSetBaseFee:
		return "SetBaseFee"
	case JobGetGasPrice:
		return "GetGasPrice"
	case JobSetGasPrice:
		return "SetGasPrice"
	case JobGetItem:
		return "GetItem"
	case JobLocusCount:
		return "LocusCount"
	case JobMoveRemoteToLocals:
		return "MoveRemoteToLocals"
	case JobStatsReport:
		return "StatsReport"
	case JobAbort:
		return "Abort"
	default:
		return "Unknown"
	}
}

// AddTxsRequest carries a batch of transactions to stage together.
type AddTxsRequest struct {
	Txs    []*types.Transaction
	Local  bool
	Status txtabs.Status
	Info   string
}

// AddTxsReply carries one error (nil on success) per input transaction,
// aligned by index with AddTxsRequest.Txs.
type AddTxsReply struct {
	Errs []error
}

// EvictionInactiveReply reports how many stale remote items were
// dropped.
type EvictionInactiveReply struct {
	Deleted int
}

// GetAccountsRequest selects the local or remote partition to enumerate.
type GetAccountsRequest struct {
	Local bool
}

// GetAccountsReply carries the set of sender addresses with at least one
// item in the requested partition.
type GetAccountsReply struct {
	Accounts mapset.Set[common.Address]
}

// GetBaseFeeReply carries the pool's current base fee, or
// types.TxNoBaseFee if none has been set.
type GetBaseFeeReply struct {
	BaseFee int64
}

// SetBaseFeeRequest sets a new base fee, or disables base-fee adjustment
// entirely when Disable is set.
type SetBaseFeeRequest struct {
	BaseFee int64
	Disable bool
}

// GetGasPriceReply carries the pool's current minimum remote gas tip.
type GetGasPriceReply struct {
	GasPrice uint64
}

// SetGasPriceRequest updates the pool's minimum remote gas tip.
type SetGasPriceRequest struct {
	GasPrice uint64
}

// SetGasPriceReply reports how many remote items fell below the new
// floor and were dropped.
type SetGasPriceReply struct {
	Dropped int
}

// GetItemRequest looks up one item by hash.
type GetItemRequest struct {
	Hash common.Hash
}

// GetItemReply carries the found item, if any.
type GetItemReply struct {
	Item  *txtabs.ItemRef
	Found bool
}

// LocusCountReply carries the local/remote population split.
type LocusCountReply struct {
	Local, Remote int
}

// MoveRemoteToLocalsRequest promotes every remote item of one sender to
// local.
type MoveRemoteToLocalsRequest struct {
	Sender common.Address
}

// MoveRemoteToLocalsReply reports how many items were promoted.
type MoveRemoteToLocalsReply struct {
	Moved int
}

// StatsReportReply carries the full occupancy tuple: total, local,
// remote, queued, pending, staged, rejected.
type StatsReportReply struct {
	Total    int
	Local    int
	Remote   int
	Queued   int
	Pending  int
	Staged   int
	Rejected int
}

// Job is one unit of work submitted to the Pool's JobQueue. Exactly one
// of the Request fields is populated, selected by Kind; for every kind
// except Abort the worker delivers exactly one reply on Reply before
// moving to the next job. Abort (and a job of unknown kind) gets no
// reply. Priority jobs jump the queue head.
type Job struct {
	Kind     JobKind
	Priority bool

	AddTxs             *AddTxsRequest
	GetAccounts        *GetAccountsRequest
	SetBaseFee         *SetBaseFeeRequest
	SetGasPrice        *SetGasPriceRequest
	GetItem            *GetItemRequest
	MoveRemoteToLocals *MoveRemoteToLocalsRequest

	Reply chan any
}

// NewJob constructs a Job of the given kind. Callers set the matching
// Request field and Priority before calling Pool.Submit.
func NewJob(kind JobKind) *Job {
	return &Job{Kind: kind, Reply: make(chan any, 1)}
}

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
	"context"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/go-txpool/txtabs/common"
	"github.com/go-txpool/txtabs/internal/txlog"
	"github.com/go-txpool/txtabs/txpool/txtabs"
	"github.com/go-txpool/txtabs/types"
)

// Re-exported so callers of this package never need to import
// txpool/txtabs directly for the error taxonomy.
var (
	ErrUnspecified        = txtabs.ErrUnspecified
	ErrAlreadyKnown       = txtabs.ErrAlreadyKnown
	ErrInvalidSender      = txtabs.ErrInvalidSender
	ErrUnderpriced        = txtabs.ErrUnderpriced
	ErrTxPoolOverflow     = txtabs.ErrTxPoolOverflow
	ErrReplaceUnderpriced = txtabs.ErrReplaceUnderpriced
	ErrGasLimit           = txtabs.ErrGasLimit
	ErrNegativeValue      = txtabs.ErrNegativeValue
	ErrOversizedData      = txtabs.ErrOversizedData
)

// Pool is the single-threaded driver: one worker goroutine (Run) popping
// jobs off a JobQueue and dispatching them against one txtabs.TxTabs,
// the only goroutine that ever mutates it. mu guards the read-only
// snapshot path for callers that would rather not round-trip the queue
// for a cheap read.
type Pool struct {
	mu   sync.RWMutex
	tabs *txtabs.TxTabs
	cfg  Config

	queue   *JobQueue
	signer  types.Signer
	log     *txlog.Logger
	metrics *Metrics

	knownLocals map[common.Address]bool
}

// New constructs a Pool ready to have jobs submitted to it and Run
// called in its own goroutine.
func New(cfg Config, logger *txlog.Logger) *Pool {
	if logger == nil {
		logger = txlog.Nop()
	}
	return &Pool{
		tabs:        txtabs.New(cfg.MaxRejects),
		cfg:         cfg,
		queue:       NewJobQueue(),
		signer:      types.NewCachingSigner(types.NewLondonSigner(), 4096),
		log:         logger,
		metrics:     &Metrics{},
		knownLocals: make(map[common.Address]bool),
	}
}

// Submit enqueues job and returns its allocated ID; safe to call from
// any goroutine.
func (p *Pool) Submit(job *Job) uint64 { return p.queue.Submit(job) }

// Metrics returns the pool's in-process counter snapshot.
func (p *Pool) Metrics() MetricsSnapshot { return p.metrics.Snapshot() }

// Run pops jobs off the queue and dispatches them until ctx is
// cancelled or an Abort job is processed. It must only ever be called
// from one goroutine at a time.
func (p *Pool) Run(ctx context.Context) {
	for {
		job, ok := p.queue.Pop(ctx)
		if !ok {
			return
		}
		p.metrics.jobsTotal.Add(1)
		p.dispatch(job)
		if job.Kind == JobAbort {
			return
		}
	}
}

func (p *Pool) dispatch(job *Job) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch job.Kind {
	case JobAddTxs:
		p.handleAddTxs(job)
	case JobEvictionInactive:
		p.handleEvictionInactive(job)
	case JobGetAccounts:
		p.handleGetAccounts(job)
	case JobGetBaseFee:
		p.handleGetBaseFee(job)
	case JobSetBaseFee:
		p.handleSetBaseFee(job)
	case JobGetGasPrice:
		p.handleGetGasPrice(job)
	case JobSetGasPrice:
		p.handleSetGasPrice(job)
	case JobGetItem:
		p.handleGetItem(job)
	case JobLocusCount:
		p.handleLocusCount(job)
	case JobMoveRemoteToLocals:
		p.handleMoveRemoteToLocals(job)
	case JobStatsReport:
		p.handleStatsReport(job)
	case JobAbort:
		p.log.Info("pool worker aborting")
	default:
		p.log.Warn("dropping job of unknown kind", "kind", int(job.Kind))
	}
}

func (p *Pool) handleAddTxs(job *Job) {
	req := job.AddTxs
	errs := make([]error, len(req.Txs))
	now := time.Now()
	for i, tx := range req.Txs {
		errs[i] = p.add(tx, req.Local, req.Status, req.Info, now)
	}
	job.Reply <- AddTxsReply{Errs: errs}
}

// add implements the validation that belongs to the caller rather than
// TxTabs itself: duplicate hash, price floor, replacement price bump,
// gas limit, oversized data, and pool capacity. The replacement bump
// threshold (threshold = old + |old|*bump/100, i.e. old*(100+bump)/100
// for a non-negative tip) compares effective tips under the current base
// fee rather than legacy gas price.
func (p *Pool) add(tx *types.Transaction, local bool, status txtabs.Status, info string, now time.Time) error {
	if tx.Gas() > p.cfg.MaxBlockGasLimit {
		p.metrics.rejected.Add(1)
		return ErrGasLimit
	}
	if len(tx.Data()) > p.cfg.MaxDataSize {
		p.metrics.rejected.Add(1)
		return ErrOversizedData
	}

	sender, err := p.signer.Sender(tx)
	if err != nil {
		p.metrics.rejected.Add(1)
		return ErrInvalidSender
	}
	local = local || p.knownLocals[sender]

	if !local && tx.GasTipCapUint64() < p.cfg.PriceLimit {
		p.metrics.rejected.Add(1)
		return ErrUnderpriced
	}

	if p.tabs.Contains(tx.Hash()) {
		p.metrics.rejected.Add(1)
		return ErrAlreadyKnown
	}

	if sched := p.tabs.BySender(sender); sched != nil {
		if existing := sched.Any().Get(tx.Nonce()); len(existing) > 0 {
			incumbent := existing[len(existing)-1]
			baseFee := p.tabs.BaseFee()
			oldTip := incumbent.Tx().EffectiveGasTip(baseFee)
			newTip := tx.EffectiveGasTip(baseFee)
			margin := oldTip
			if margin < 0 {
				margin = -margin
			}
			threshold := oldTip + margin*int64(p.cfg.PriceBump)/100
			if newTip < threshold {
				p.metrics.rejected.Add(1)
				return ErrReplaceUnderpriced
			}
			p.tabs.Reject(incumbent.Hash(), ErrReplaceUnderpriced)
			p.metrics.replaced.Add(1)
		}
	}

	if !local {
		var acctQueued, acctExecutable int
		if sched := p.tabs.BySender(sender); sched != nil {
			acctQueued = sched.ByStatus(txtabs.Queued).Len()
			acctExecutable = sched.ByStatus(txtabs.Pending).Len() + sched.ByStatus(txtabs.Staged).Len()
		}
		counts := p.tabs.Count()
		if status == txtabs.Queued {
			if acctQueued >= p.cfg.AccountQueue || counts.Queued >= p.cfg.GlobalQueue {
				p.metrics.rejected.Add(1)
				return ErrTxPoolOverflow
			}
		} else {
			if acctExecutable >= p.cfg.AccountSlots || counts.Pending+counts.Staged >= p.cfg.GlobalSlots {
				p.metrics.rejected.Add(1)
				return ErrTxPoolOverflow
			}
		}
	}

	item, err := p.tabs.Insert(p.signer, tx, local, status, info, now)
	if err != nil {
		p.metrics.rejected.Add(1)
		return err
	}
	p.metrics.inserted.Add(1)
	p.log.Trace("staged transaction", "hash", item.Hash().Hex(), "sender", sender.Hex())
	return nil
}

func (p *Pool) handleEvictionInactive(job *Job) {
	cutoff := time.Now().Add(-p.cfg.Lifetime)
	var stale []common.Hash
	p.tabs.ById().AscendRemote(func(it *txtabs.ItemRef) bool {
		if it.Timestamp().Before(cutoff) {
			stale = append(stale, it.Hash())
		}
		return true
	})
	for _, h := range stale {
		p.tabs.Reject(h, ErrUnspecified)
		p.metrics.evicted.Add(1)
		p.metrics.rejected.Add(1)
	}
	job.Reply <- EvictionInactiveReply{Deleted: len(stale)}
}

func (p *Pool) handleGetAccounts(job *Job) {
	accounts := mapset.NewSet[common.Address]()
	visit := func(it *txtabs.ItemRef) bool {
		accounts.Add(it.Sender())
		return true
	}
	if job.GetAccounts.Local {
		p.tabs.ById().AscendLocal(visit)
	} else {
		p.tabs.ById().AscendRemote(visit)
	}
	job.Reply <- GetAccountsReply{Accounts: accounts}
}

func (p *Pool) handleGetBaseFee(job *Job) {
	if bf := p.tabs.BaseFee(); bf != nil {
		job.Reply <- GetBaseFeeReply{BaseFee: *bf}
		return
	}
	job.Reply <- GetBaseFeeReply{BaseFee: types.TxNoBaseFee}
}

func (p *Pool) handleSetBaseFee(job *Job) {
	req := job.SetBaseFee
	if req.Disable {
		p.tabs.ClearBaseFee()
	} else {
		p.tabs.SetBaseFee(req.BaseFee)
	}
	job.Reply <- struct{}{}
}

func (p *Pool) handleGetGasPrice(job *Job) {
	job.Reply <- GetGasPriceReply{GasPrice: p.cfg.PriceLimit}
}

func (p *Pool) handleSetGasPrice(job *Job) {
	newPrice := job.SetGasPrice.GasPrice
	p.cfg.PriceLimit = newPrice

	var dropped []common.Hash
	p.tabs.ById().AscendRemote(func(it *txtabs.ItemRef) bool {
		if it.Tx().GasTipCapUint64() < newPrice {
			dropped = append(dropped, it.Hash())
		}
		return true
	})
	for _, h := range dropped {
		p.tabs.Reject(h, ErrUnderpriced)
		p.metrics.rejected.Add(1)
	}
	job.Reply <- SetGasPriceReply{Dropped: len(dropped)}
}

func (p *Pool) handleGetItem(job *Job) {
	item, ok := p.tabs.Get(job.GetItem.Hash)
	job.Reply <- GetItemReply{Item: item, Found: ok}
}

func (p *Pool) handleLocusCount(job *Job) {
	counts := p.tabs.Count()
	job.Reply <- LocusCountReply{Local: counts.Local, Remote: counts.Remote}
}

func (p *Pool) handleMoveRemoteToLocals(job *Job) {
	sender := job.MoveRemoteToLocals.Sender
	sched := p.tabs.BySender(sender)
	moved := 0
	if sched != nil {
		var remotes []common.Hash
		sched.ByLocality(false).Ascend(func(it *txtabs.ItemRef) bool {
			remotes = append(remotes, it.Hash())
			return true
		})
		for _, h := range remotes {
			if err := p.tabs.ReassignLocality(h, true); err == nil {
				moved++
			}
		}
	}
	p.knownLocals[sender] = true
	job.Reply <- MoveRemoteToLocalsReply{Moved: moved}
}

func (p *Pool) handleStatsReport(job *Job) {
	counts := p.tabs.Count()
	job.Reply <- StatsReportReply{
		Total:    counts.Total,
		Local:    counts.Local,
		Remote:   counts.Remote,
		Queued:   counts.Queued,
		Pending:  counts.Pending,
		Staged:   counts.Staged,
		Rejected: counts.Rejected,
	}
}

// Snapshot runs fn with a read lock held, for callers that want a
// cheap, consistent read without round-tripping the JobQueue.
func (p *Pool) Snapshot(fn func(*txtabs.TxTabs)) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	fn(p.tabs)
}

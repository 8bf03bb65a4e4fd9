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

// Command txpoolsim is a scripted driver for the txpool package: it
// starts a Pool, submits a small fixed sequence of jobs, and prints the
// resulting stats/locus counts.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/holiman/uint256"
	"github.com/urfave/cli/v2"

	"github.com/go-txpool/txtabs/crypto"
	"github.com/go-txpool/txtabs/internal/txlog"
	"github.com/go-txpool/txtabs/txpool"
	"github.com/go-txpool/txtabs/txpool/txtabs"
	"github.com/go-txpool/txtabs/types"
)

func main() {
	app := &cli.App{
		Name:  "txpoolsim",
		Usage: "drive a txpool.Pool through a scripted job sequence",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "txs", Value: 10, Usage: "number of synthetic transactions to submit"},
			&cli.Int64Flag{Name: "base-fee", Value: 5, Usage: "base fee to set before submitting"},
			&cli.StringFlag{Name: "config", Usage: "path to a TOML config overlay"},
			&cli.BoolFlag{Name: "verify", Usage: "run TxTabs.Verify() after the scripted sequence"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "txpoolsim:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg := txpool.DefaultConfig
	if path := c.String("config"); path != "" {
		loaded, err := txpool.LoadTOML(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	logger := txlog.NewDevelopment()
	defer logger.Sync()

	pool := txpool.New(cfg, logger)
	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()
	workerDone := make(chan struct{})
	go func() {
		pool.Run(ctx)
		close(workerDone)
	}()

	n := c.Int("txs")
	txs, err := syntheticTxs(n)
	if err != nil {
		return err
	}

	addJob := txpool.NewJob(txpool.JobAddTxs)
	addJob.AddTxs = &txpool.AddTxsRequest{Txs: txs, Local: true, Status: txtabs.Pending, Info: "txpoolsim"}
	pool.Submit(addJob)
	addReply := (<-addJob.Reply).(txpool.AddTxsReply)
	for i, err := range addReply.Errs {
		if err != nil {
			fmt.Printf("tx %d rejected: %v\n", i, err)
		}
	}

	baseFeeJob := txpool.NewJob(txpool.JobSetBaseFee)
	baseFeeJob.SetBaseFee = &txpool.SetBaseFeeRequest{BaseFee: c.Int64("base-fee")}
	pool.Submit(baseFeeJob)
	<-baseFeeJob.Reply

	statsJob := txpool.NewJob(txpool.JobStatsReport)
	pool.Submit(statsJob)
	stats := (<-statsJob.Reply).(txpool.StatsReportReply)

	locusJob := txpool.NewJob(txpool.JobLocusCount)
	pool.Submit(locusJob)
	locus := (<-locusJob.Reply).(txpool.LocusCountReply)

	fmt.Printf("total=%d pending=%d queued=%d staged=%d rejected=%d local=%d remote=%d\n",
		stats.Total, stats.Pending, stats.Queued, stats.Staged, stats.Rejected, locus.Local, locus.Remote)
	m := pool.Metrics()
	fmt.Printf("metrics: inserted=%d rejected=%d evicted=%d replaced=%d jobs=%d\n",
		m.Inserted, m.Rejected, m.Evicted, m.Replaced, m.JobsTotal)

	if c.Bool("verify") {
		var verr error
		pool.Snapshot(func(tabs *txtabs.TxTabs) { verr = tabs.Verify() })
		if verr != nil {
			return verr
		}
		fmt.Println("verify: ok")
	}

	abortJob := txpool.NewJob(txpool.JobAbort)
	abortJob.Priority = true
	pool.Submit(abortJob)

	select {
	case <-workerDone:
	case <-time.After(2 * time.Second):
		return fmt.Errorf("txpoolsim: worker did not stop after Abort")
	}
	return nil
}

// syntheticTxs builds n signed dynamic-fee transactions from freshly
// generated keys, standing in for the external signing collaborator a
// real node's RPC layer would front.
func syntheticTxs(n int) ([]*types.Transaction, error) {
	signer := types.NewLondonSigner()
	txs := make([]*types.Transaction, 0, n)
	for i := 0; i < n; i++ {
		key, err := crypto.GenerateKey()
		if err != nil {
			return nil, err
		}
		tip := uint256.NewInt(uint64(i + 1))
		feeCap := uint256.NewInt(uint64(i + 20))
		tx := types.NewDynamicFeeTx(uint256.NewInt(1), 0, nil, uint256.NewInt(0), 21000, tip, feeCap, nil)
		signed, err := signer.SignTx(tx, key)
		if err != nil {
			return nil, err
		}
		txs = append(txs, signed)
	}
	return txs, nil
}

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
	"crypto/ecdsa"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/go-txpool/txtabs/common"
	"github.com/go-txpool/txtabs/crypto"
	"github.com/go-txpool/txtabs/types"
)

var signer = types.NewLondonSigner()

func mustKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return key
}

func dynTx(t *testing.T, key *ecdsa.PrivateKey, nonce uint64, tipCap, feeCap uint64) *types.Transaction {
	t.Helper()
	tx := types.NewDynamicFeeTx(uint256.NewInt(1), nonce, nil, uint256.NewInt(0), 21000,
		uint256.NewInt(tipCap), uint256.NewInt(feeCap), nil)
	signed, err := signer.SignTx(tx, key)
	require.NoError(t, err)
	return signed
}

func legacyTx(t *testing.T, key *ecdsa.PrivateKey, nonce uint64, gasPrice uint64) *types.Transaction {
	t.Helper()
	tx := types.NewLegacyTx(nonce, nil, uint256.NewInt(0), 21000, uint256.NewInt(gasPrice), nil)
	signed, err := signer.SignTx(tx, key)
	require.NoError(t, err)
	return signed
}

// S1: a transaction with a hash already present in the pool is rejected
// with ErrAlreadyKnown, regardless of locality.
func TestInsertDuplicateHashRejected(t *testing.T) {
	tabs := New(10)
	key := mustKey(t)
	tx := dynTx(t, key, 0, 1, 10)

	_, err := tabs.Insert(signer, tx, true, Queued, "", time.Now())
	require.NoError(t, err)

	_, err = tabs.Insert(signer, tx, false, Queued, "", time.Now())
	require.ErrorIs(t, err, ErrAlreadyKnown)
	require.NoError(t, tabs.Verify())
}

// S2: ByTipIndex iterates in strictly descending effective-tip order.
func TestByTipIndexOrdering(t *testing.T) {
	tabs := New(10)
	key := mustKey(t)

	now := time.Now()
	_, err := tabs.Insert(signer, dynTx(t, key, 0, 5, 100), true, Pending, "", now)
	require.NoError(t, err)
	_, err = tabs.Insert(signer, dynTx(t, key, 1, 50, 100), true, Pending, "", now)
	require.NoError(t, err)
	_, err = tabs.Insert(signer, dynTx(t, key, 2, 20, 100), true, Pending, "", now)
	require.NoError(t, err)

	var tips []int64
	tabs.ByTip().DescendTip(func(tip int64, _ *ItemRef) bool {
		tips = append(tips, tip)
		return true
	})
	require.Equal(t, []int64{50, 20, 5}, tips)
	require.NoError(t, tabs.Verify())
}

// S3: SetBaseFee rebases every item's effective tip: base=5 -> tip=15,
// base=12 -> tip=8, TxNoBaseFee -> tip reverts to the raw tip cap.
func TestSetBaseFeeRebasesTips(t *testing.T) {
	tabs := New(10)
	key := mustKey(t)
	tx := dynTx(t, key, 0, 15, 20) // tipCap=15, feeCap=20
	_, err := tabs.Insert(signer, tx, true, Pending, "", time.Now())
	require.NoError(t, err)

	tabs.SetBaseFee(5)
	require.Equal(t, []int64{15}, collectTips(tabs))

	tabs.SetBaseFee(12)
	require.Equal(t, []int64{8}, collectTips(tabs))

	tabs.ClearBaseFee()
	require.Equal(t, []int64{15}, collectTips(tabs))
	require.NoError(t, tabs.Verify())
}

func collectTips(tabs *TxTabs) []int64 {
	var tips []int64
	tabs.ByTip().AscendTip(func(tip int64, _ *ItemRef) bool {
		tips = append(tips, tip)
		return true
	})
	return tips
}

// S4: reassigning locality moves the item between ByIdIndex partitions
// and the sender's locality sub-view, in O(1), without disturbing any
// other index.
func TestReassignLocalitySwapsPartitions(t *testing.T) {
	tabs := New(10)
	key := mustKey(t)
	tx := dynTx(t, key, 0, 1, 10)
	item, err := tabs.Insert(signer, tx, false, Queued, "", time.Now())
	require.NoError(t, err)

	require.Equal(t, 1, tabs.ById().RemoteLen())
	require.Equal(t, 0, tabs.ById().LocalLen())

	require.NoError(t, tabs.ReassignLocality(item.Hash(), true))
	require.True(t, item.Local())
	require.Equal(t, 0, tabs.ById().RemoteLen())
	require.Equal(t, 1, tabs.ById().LocalLen())

	sched := tabs.BySender(item.Sender())
	require.Equal(t, 1, sched.ByLocality(true).Len())
	require.Equal(t, 0, sched.ByLocality(false).Len())
	require.NoError(t, tabs.Verify())
}

// S5: rejecting an item records it in the bounded wastebasket, evicting
// the oldest rejection once capacity is exceeded.
func TestWastebasketEvictsOldest(t *testing.T) {
	tabs := New(2)
	key := mustKey(t)

	var hashes []string
	for i := uint64(0); i < 3; i++ {
		tx := dynTx(t, key, i, 1, 10)
		item, err := tabs.Insert(signer, tx, true, Queued, "", time.Now())
		require.NoError(t, err)
		hashes = append(hashes, item.Hash().Hex())
		rejected := tabs.Reject(item.Hash(), ErrUnderpriced)
		require.NotNil(t, rejected)
	}

	require.Equal(t, 2, tabs.WastebasketLen())
	flushed := tabs.FlushRejects()
	require.Len(t, flushed, 2)
	require.Equal(t, hashes[1], flushed[0].Hash().Hex())
	require.Equal(t, hashes[2], flushed[1].Hash().Hex())
	require.Equal(t, 0, tabs.WastebasketLen())
	require.NoError(t, tabs.Verify())
}

// Count().Rejected is a lifetime total, unlike WastebasketLen which only
// reflects currently retained rejects: it must keep growing even after
// the wastebasket itself starts evicting its oldest entries.
func TestCountRejectedIsLifetimeNotWastebasketLen(t *testing.T) {
	tabs := New(2)
	key := mustKey(t)

	for i := uint64(0); i < 3; i++ {
		tx := dynTx(t, key, i, 1, 10)
		item, err := tabs.Insert(signer, tx, true, Queued, "", time.Now())
		require.NoError(t, err)
		require.NotNil(t, tabs.Reject(item.Hash(), ErrUnderpriced))
	}

	require.Equal(t, 2, tabs.WastebasketLen())
	require.Equal(t, 3, tabs.Count().Rejected)
}

// S6: promoting every remote item of one sender to local leaves other
// senders' items untouched and keeps every index in sync.
func TestPromoteOneSendersRemotesToLocal(t *testing.T) {
	tabs := New(10)
	alice, bob := mustKey(t), mustKey(t)

	var aliceItems []*ItemRef
	for i := uint64(0); i < 3; i++ {
		item, err := tabs.Insert(signer, dynTx(t, alice, i, 1, 10), false, Queued, "", time.Now())
		require.NoError(t, err)
		aliceItems = append(aliceItems, item)
	}
	bobItem, err := tabs.Insert(signer, dynTx(t, bob, 0, 1, 10), false, Queued, "", time.Now())
	require.NoError(t, err)

	for _, item := range aliceItems {
		require.NoError(t, tabs.ReassignLocality(item.Hash(), true))
	}

	require.Equal(t, 3, tabs.ById().LocalLen())
	require.Equal(t, 1, tabs.ById().RemoteLen())
	require.False(t, bobItem.Local())
	for _, item := range aliceItems {
		require.True(t, item.Local())
	}
	require.NoError(t, tabs.Verify())
}

// Multiple items may share a (sender, nonce) pair; NonceList.Get must
// return all of them in insertion order.
func TestNonceListAllowsMultipleItemsPerNonce(t *testing.T) {
	tabs := New(10)
	key := mustKey(t)

	first, err := tabs.Insert(signer, dynTx(t, key, 0, 1, 10), true, Queued, "", time.Now())
	require.NoError(t, err)
	second, err := tabs.Insert(signer, dynTx(t, key, 0, 2, 10), true, Queued, "", time.Now())
	require.NoError(t, err)
	require.NotEqual(t, first.Hash(), second.Hash())

	sched := tabs.BySender(first.Sender())
	items := sched.Any().Get(0)
	require.Len(t, items, 2)
	require.Equal(t, first, items[0])
	require.Equal(t, second, items[1])
	require.NoError(t, tabs.Verify())
}

// ByTipIndex.DescendTip is the exact reverse of AscendTip.
func TestDescendIsReverseOfAscend(t *testing.T) {
	tabs := New(10)
	key := mustKey(t)
	for i := uint64(0); i < 5; i++ {
		_, err := tabs.Insert(signer, dynTx(t, key, i, i+1, 100), true, Queued, "", time.Now())
		require.NoError(t, err)
	}

	var asc, desc []int64
	tabs.ByTip().AscendTip(func(tip int64, _ *ItemRef) bool { asc = append(asc, tip); return true })
	tabs.ByTip().DescendTip(func(tip int64, _ *ItemRef) bool { desc = append(desc, tip); return true })
	require.Len(t, asc, 5)
	require.Len(t, desc, 5)
	for i := range asc {
		require.Equal(t, asc[i], desc[len(desc)-1-i])
	}
}

func TestLegacyTxRankedByGasPriceMinusBaseFee(t *testing.T) {
	tabs := New(10)
	key := mustKey(t)
	_, err := tabs.Insert(signer, legacyTx(t, key, 0, 30), true, Pending, "", time.Now())
	require.NoError(t, err)

	tabs.SetBaseFee(10)
	require.Equal(t, []int64{20}, collectTips(tabs))
}

// Invariant 2: count() must equal scanning ByIdIndex directly.
func TestCountMatchesScan(t *testing.T) {
	tabs := New(10)
	keyA, keyB := mustKey(t), mustKey(t)
	_, err := tabs.Insert(signer, dynTx(t, keyA, 0, 1, 10), true, Pending, "", time.Now())
	require.NoError(t, err)
	_, err = tabs.Insert(signer, dynTx(t, keyB, 0, 1, 10), false, Queued, "", time.Now())
	require.NoError(t, err)

	counts := tabs.Count()
	scannedTotal, scannedLocal, scannedRemote := 0, 0, 0
	tabs.ById().AscendAll(func(it *ItemRef) bool {
		scannedTotal++
		if it.Local() {
			scannedLocal++
		} else {
			scannedRemote++
		}
		return true
	})
	require.Equal(t, scannedTotal, counts.Total)
	require.Equal(t, scannedLocal, counts.Local)
	require.Equal(t, scannedRemote, counts.Remote)
}

// Invariant 3: set_base_fee(b); set_base_fee(b'); set_base_fee(b) leaves
// effective tips identical to those before the first change.
func TestSetBaseFeeRoundTripIsIdempotent(t *testing.T) {
	tabs := New(10)
	key := mustKey(t)
	_, err := tabs.Insert(signer, dynTx(t, key, 0, 15, 30), true, Pending, "", time.Now())
	require.NoError(t, err)

	tabs.SetBaseFee(5)
	before := collectTips(tabs)

	tabs.SetBaseFee(20)
	tabs.SetBaseFee(5)
	after := collectTips(tabs)

	require.Equal(t, before, after)
	require.NoError(t, tabs.Verify())
}

// Invariant 4: insert(tx); delete(hash(tx)) restores the pool to its
// pre-insert state.
func TestInsertDeleteRoundTrip(t *testing.T) {
	tabs := New(10)
	key := mustKey(t)
	before := tabs.Count()

	tx := dynTx(t, key, 0, 1, 10)
	item, err := tabs.Insert(signer, tx, true, Queued, "", time.Now())
	require.NoError(t, err)

	removed := tabs.Delete(item.Hash())
	require.Equal(t, item, removed)
	require.Equal(t, before, tabs.Count())
	require.False(t, tabs.Contains(tx.Hash()))
	require.NoError(t, tabs.Verify())
}

// Invariant 5: reassigning locality twice restores the original value
// and every index membership along with it.
func TestReassignLocalityTwiceRestoresOriginal(t *testing.T) {
	tabs := New(10)
	key := mustKey(t)
	item, err := tabs.Insert(signer, dynTx(t, key, 0, 1, 10), true, Pending, "", time.Now())
	require.NoError(t, err)

	require.NoError(t, tabs.ReassignLocality(item.Hash(), !item.Local()))
	require.NoError(t, tabs.ReassignLocality(item.Hash(), !item.Local()))

	require.True(t, item.Local())
	require.Equal(t, 1, tabs.ById().LocalLen())
	require.Equal(t, 0, tabs.ById().RemoteLen())
	sched := tabs.BySender(item.Sender())
	require.Equal(t, 1, sched.ByLocality(true).Len())
	require.Equal(t, 0, sched.ByLocality(false).Len())
	require.NoError(t, tabs.Verify())
}

// Invariant 7: move_remote_to_locals(a) ends with no remote items for a
// and preserves total count.
func TestMoveRemoteToLocalsPreservesTotalCount(t *testing.T) {
	tabs := New(10)
	key := mustKey(t)
	var sender common.Address
	for i := uint64(0); i < 4; i++ {
		item, err := tabs.Insert(signer, dynTx(t, key, i, 1, 10), false, Queued, "", time.Now())
		require.NoError(t, err)
		sender = item.Sender()
	}
	before := tabs.Count().Total

	sched := tabs.BySender(sender)
	var hashes []common.Hash
	sched.ByLocality(false).Ascend(func(it *ItemRef) bool {
		hashes = append(hashes, it.Hash())
		return true
	})
	for _, h := range hashes {
		require.NoError(t, tabs.ReassignLocality(h, true))
	}

	require.Equal(t, before, tabs.Count().Total)
	require.Equal(t, 0, sched.ByLocality(false).Len())
	require.NoError(t, tabs.Verify())
}

func TestDeleteRemovesFromEveryIndexWithoutWastebasket(t *testing.T) {
	tabs := New(10)
	key := mustKey(t)
	item, err := tabs.Insert(signer, dynTx(t, key, 0, 1, 10), true, Pending, "", time.Now())
	require.NoError(t, err)

	removed := tabs.Delete(item.Hash())
	require.Equal(t, item, removed)
	require.False(t, tabs.Contains(item.Hash()))
	require.Equal(t, 0, tabs.WastebasketLen())
	require.Nil(t, tabs.BySender(item.Sender()))
	require.NoError(t, tabs.Verify())
}

func TestReassignStatusMovesSenderSubView(t *testing.T) {
	tabs := New(10)
	key := mustKey(t)
	item, err := tabs.Insert(signer, dynTx(t, key, 0, 1, 10), true, Queued, "", time.Now())
	require.NoError(t, err)

	sched := tabs.BySender(item.Sender())
	require.Equal(t, 1, sched.ByStatus(Queued).Len())
	require.Equal(t, 0, sched.ByStatus(Pending).Len())

	require.NoError(t, tabs.ReassignStatus(item.Hash(), Pending))
	require.Equal(t, Pending, item.Status())
	require.Equal(t, 0, sched.ByStatus(Queued).Len())
	require.Equal(t, 1, sched.ByStatus(Pending).Len())
	require.NoError(t, tabs.Verify())

	// Reassigning to the same status is a no-op.
	require.NoError(t, tabs.ReassignStatus(item.Hash(), Pending))
	require.Equal(t, 1, sched.ByStatus(Pending).Len())

	require.ErrorIs(t, tabs.ReassignStatus(common.Hash{0xff}, Staged), ErrUnspecified)
}

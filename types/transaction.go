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

// Package types holds the transaction value object the pool stages, and
// the Signer port used to recover its sender.
package types

import (
	"encoding/binary"
	"math"
	"sync/atomic"

	"github.com/holiman/uint256"

	"github.com/go-txpool/txtabs/common"
	"github.com/go-txpool/txtabs/crypto"
)

// TxType distinguishes the fee-market shape of a transaction.
type TxType byte

const (
	// LegacyTxType transactions carry a single GasPrice.
	LegacyTxType TxType = iota
	// DynamicFeeTxType transactions (EIP-1559) carry a GasFeeCap and a
	// GasTipCap, and are re-valued against the block's base fee.
	DynamicFeeTxType
)

// Transaction is the opaque input the pool stages. All fields are set at
// construction time and never mutated afterwards; Hash is memoised.
type Transaction struct {
	typ       TxType
	chainID   *uint256.Int
	nonce     uint64
	gasPrice  *uint256.Int // legacy only
	gasTipCap *uint256.Int // EIP-1559 max priority fee
	gasFeeCap *uint256.Int // EIP-1559 max fee
	gas       uint64
	to        *common.Address
	value     *uint256.Int
	data      []byte
	sig       []byte // 65-byte [R || S || V]

	hash atomic.Pointer[common.Hash]
}

// NewLegacyTx builds a legacy (pre-EIP-1559) transaction.
func NewLegacyTx(nonce uint64, to *common.Address, value *uint256.Int, gas uint64, gasPrice *uint256.Int, data []byte) *Transaction {
	return &Transaction{
		typ:      LegacyTxType,
		nonce:    nonce,
		to:       to,
		value:    cloneOrZero(value),
		gas:      gas,
		gasPrice: cloneOrZero(gasPrice),
		data:     append([]byte(nil), data...),
	}
}

// NewDynamicFeeTx builds an EIP-1559 transaction.
func NewDynamicFeeTx(chainID *uint256.Int, nonce uint64, to *common.Address, value *uint256.Int, gas uint64, gasTipCap, gasFeeCap *uint256.Int, data []byte) *Transaction {
	return &Transaction{
		typ:       DynamicFeeTxType,
		chainID:   cloneOrZero(chainID),
		nonce:     nonce,
		to:        to,
		value:     cloneOrZero(value),
		gas:       gas,
		gasTipCap: cloneOrZero(gasTipCap),
		gasFeeCap: cloneOrZero(gasFeeCap),
		data:      append([]byte(nil), data...),
	}
}

func cloneOrZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(v)
}

// WithSignature returns a shallow copy of tx carrying sig, the 65-byte
// [R || S || V] signature produced by crypto.Sign. Transactions are
// otherwise immutable, so signing always produces a fresh value rather
// than mutating tx in place.
func (tx *Transaction) WithSignature(sig []byte) *Transaction {
	cp := *tx
	cp.sig = append([]byte(nil), sig...)
	cp.hash.Store(nil)
	return &cp
}

// Type reports whether tx is legacy or EIP-1559.
func (tx *Transaction) Type() TxType { return tx.typ }

// Nonce returns the sender-scoped sequence number.
func (tx *Transaction) Nonce() uint64 { return tx.nonce }

// To returns the recipient, or nil for contract creation.
func (tx *Transaction) To() *common.Address { return tx.to }

// Value returns the wei value transferred.
func (tx *Transaction) Value() *uint256.Int { return tx.value }

// Gas returns the gas limit.
func (tx *Transaction) Gas() uint64 { return tx.gas }

// Data returns the call/init data.
func (tx *Transaction) Data() []byte { return tx.data }

// Signature returns the raw 65-byte signature, or nil if unsigned.
func (tx *Transaction) Signature() []byte { return tx.sig }

// GasPrice returns the legacy gas price, or the EIP-1559 fee cap for
// dynamic-fee transactions — the price a miner is paid per unit gas in
// the worst case.
func (tx *Transaction) GasPrice() *uint256.Int {
	if tx.typ == LegacyTxType {
		return tx.gasPrice
	}
	return tx.gasFeeCap
}

// GasTipCap returns the maximum priority fee per gas the sender is
// willing to pay. For legacy transactions this equals GasPrice.
func (tx *Transaction) GasTipCap() *uint256.Int {
	if tx.typ == LegacyTxType {
		return tx.gasPrice
	}
	return tx.gasTipCap
}

// GasFeeCap returns the maximum total fee per gas the sender is willing
// to pay, inclusive of the base fee. For legacy transactions this equals
// GasPrice.
func (tx *Transaction) GasFeeCap() *uint256.Int {
	if tx.typ == LegacyTxType {
		return tx.gasPrice
	}
	return tx.gasFeeCap
}

// Cost returns value + gas*gasFeeCap, the maximum balance a sender must
// hold for tx to be payable.
func (tx *Transaction) Cost() *uint256.Int {
	total := new(uint256.Int).Mul(tx.GasFeeCap(), new(uint256.Int).SetUint64(tx.gas))
	total.Add(total, tx.value)
	return total
}

// EffectiveGasTip returns min(GasTipCap, GasFeeCap-baseFee) for
// EIP-1559 transactions, or GasPrice-baseFee for legacy ones, as a signed
// value — it can go negative when the fee cap no longer covers the base
// fee. Pass TxNoBaseFee to disable the base-fee subtraction entirely.
func (tx *Transaction) EffectiveGasTip(baseFee *int64) int64 {
	tip := int64FromU256(tx.GasTipCap())
	if baseFee == nil || *baseFee == TxNoBaseFee {
		return tip
	}
	headroom := int64FromU256(tx.GasFeeCap()) - *baseFee
	if headroom < tip {
		return headroom
	}
	return tip
}

// GasTipCapUint64 returns the unadjusted tip cap (gas price for legacy)
// as used by ByTipCapIndex, which is never base-fee adjusted.
func (tx *Transaction) GasTipCapUint64() uint64 {
	return tx.GasTipCap().Uint64()
}

func int64FromU256(v *uint256.Int) int64 {
	if v.BitLen() > 63 {
		return math.MaxInt64 // saturate rather than wrap
	}
	return int64(v.Uint64())
}

// TxNoBaseFee is the sentinel that disables base-fee adjustment: a base
// fee equal to this value means "use GasPrice/GasTipCap as-is".
const TxNoBaseFee = int64(math.MinInt64)

// Hash returns the transaction's hash, the primary key of the pool,
// computed once and memoised. It is derived from the signed payload, so
// two otherwise-identical transactions with different signatures never
// collide.
func (tx *Transaction) Hash() common.Hash {
	if h := tx.hash.Load(); h != nil {
		return *h
	}
	h := crypto.Keccak256(tx.signingPayload(), tx.sig)
	tx.hash.Store(&h)
	return h
}

// signingPayload is a compact, canonical encoding of the unsigned fields,
// sufficient to make Hash collision-free and deterministic. It does not
// implement the real RLP wire codec, since this module only needs a
// stable digest input, not consensus wire-format compatibility.
func (tx *Transaction) signingPayload() []byte {
	buf := make([]byte, 0, 64+len(tx.data))
	var nonceBuf [8]byte
	binary.BigEndian.PutUint64(nonceBuf[:], tx.nonce)
	buf = append(buf, byte(tx.typ))
	if tx.chainID != nil {
		chainID := tx.chainID.Bytes32()
		buf = append(buf, chainID[:]...)
	}
	buf = append(buf, nonceBuf[:]...)
	if tx.to != nil {
		buf = append(buf, tx.to[:]...)
	}
	value := tx.value.Bytes32()
	buf = append(buf, value[:]...)
	var gasBuf [8]byte
	binary.BigEndian.PutUint64(gasBuf[:], tx.gas)
	buf = append(buf, gasBuf[:]...)
	feeCap := tx.GasFeeCap().Bytes32()
	buf = append(buf, feeCap[:]...)
	tipCap := tx.GasTipCap().Bytes32()
	buf = append(buf, tipCap[:]...)
	buf = append(buf, tx.data...)
	return buf
}

// SigningHash returns the digest that Sign/Ecrecover operate over: the
// Keccak256 of the unsigned payload.
func (tx *Transaction) SigningHash() common.Hash {
	return crypto.Keccak256(tx.signingPayload())
}

// Transactions is a slice of transactions, sortable by nonce.
type Transactions []*Transaction

func (s Transactions) Len() int           { return len(s) }
func (s Transactions) Less(i, j int) bool { return s[i].Nonce() < s[j].Nonce() }
func (s Transactions) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

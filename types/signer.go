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

package types

import (
	"crypto/ecdsa"
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/go-txpool/txtabs/common"
	"github.com/go-txpool/txtabs/crypto"
)

// ErrInvalidSig is returned by a Signer when a transaction's signature
// does not recover to a valid public key.
var ErrInvalidSig = errors.New("types: invalid transaction signature")

// Signer recovers the sender address of a transaction. Staging a
// transaction whose signature does not recover fails with ErrInvalidSig,
// which the store surfaces as InvalidSender.
type Signer interface {
	Sender(tx *Transaction) (common.Address, error)
	SignTx(tx *Transaction, priv *ecdsa.PrivateKey) (*Transaction, error)
}

// LondonSigner recovers senders for both legacy and EIP-1559
// transactions, the two TxType values this module supports.
type LondonSigner struct{}

// NewLondonSigner returns the default Signer.
func NewLondonSigner() *LondonSigner { return &LondonSigner{} }

// Sender recovers tx's sender from its signature, or ErrInvalidSig if the
// signature is missing or malformed.
func (LondonSigner) Sender(tx *Transaction) (common.Address, error) {
	if len(tx.Signature()) != 65 {
		return common.Address{}, ErrInvalidSig
	}
	addr, err := crypto.SigToAddress(tx.SigningHash(), tx.Signature())
	if err != nil {
		return common.Address{}, ErrInvalidSig
	}
	return addr, nil
}

// SignTx signs tx with priv and returns the signed copy.
func (LondonSigner) SignTx(tx *Transaction, priv *ecdsa.PrivateKey) (*Transaction, error) {
	sig, err := crypto.Sign(tx.SigningHash(), priv)
	if err != nil {
		return nil, err
	}
	return tx.WithSignature(sig), nil
}

// CachingSigner wraps another Signer with an LRU cache of hash -> sender.
// Sender recovery is the most expensive step of staging a transaction,
// and the same transaction is frequently re-validated during the
// lifetime of a pool entry.
type CachingSigner struct {
	inner Signer
	cache *lru.Cache[common.Hash, common.Address]
}

// NewCachingSigner wraps inner with an LRU of the given size.
func NewCachingSigner(inner Signer, size int) *CachingSigner {
	cache, err := lru.New[common.Hash, common.Address](size)
	if err != nil {
		// Only returns an error for a non-positive size.
		cache, _ = lru.New[common.Hash, common.Address](1)
	}
	return &CachingSigner{inner: inner, cache: cache}
}

// Sender recovers tx's sender, consulting the cache first.
func (s *CachingSigner) Sender(tx *Transaction) (common.Address, error) {
	h := tx.Hash()
	if addr, ok := s.cache.Get(h); ok {
		return addr, nil
	}
	addr, err := s.inner.Sender(tx)
	if err != nil {
		return common.Address{}, err
	}
	s.cache.Add(h, addr)
	return addr, nil
}

// SignTx delegates to the wrapped signer.
func (s *CachingSigner) SignTx(tx *Transaction, priv *ecdsa.PrivateKey) (*Transaction, error) {
	return s.inner.SignTx(tx, priv)
}

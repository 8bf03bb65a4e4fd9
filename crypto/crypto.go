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

// Package crypto gives the pool a real, minimal signature-recovery
// implementation so the module builds and runs standalone, rather than
// mocking it out.
package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"errors"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	dcrecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"

	"github.com/go-txpool/txtabs/common"
)

// Keccak256 returns the Keccak256 digest of the concatenation of data.
func Keccak256(data ...[]byte) common.Hash {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	var out common.Hash
	h.Sum(out[:0])
	return out
}

// GenerateKey creates a new secp256k1 private key.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return key.ToECDSA(), nil
}

// PubkeyToAddress derives the 20-byte account address for pub, using the
// low-order bytes of the Keccak256 hash of the uncompressed public key,
// the standard Ethereum address derivation.
func PubkeyToAddress(pub ecdsa.PublicKey) common.Address {
	buf := elliptic.Marshal(pub.Curve, pub.X, pub.Y)
	digest := Keccak256(buf[1:]) // drop the 0x04 prefix byte
	return common.BytesToAddress(digest[12:])
}

// Sign produces a 65-byte [R || S || V] signature over digest using priv.
func Sign(digest common.Hash, priv *ecdsa.PrivateKey) ([]byte, error) {
	if len(digest) != common.HashLength {
		return nil, errors.New("crypto: digest must be exactly 32 bytes")
	}
	key := secp256k1.PrivKeyFromBytes(priv.D.Bytes())
	sig := dcrecdsa.SignCompact(key, digest[:], false)
	// dcrec's compact format is [V || R || S]; the pool's wire convention
	// is [R || S || V], so rotate the recovery byte to the tail and
	// rebase it from the compact scheme's 27-offset to a plain 0/1
	// parity bit.
	out := make([]byte, 65)
	copy(out[:64], sig[1:])
	out[64] = sig[0] - 27
	return out, nil
}

// Ecrecover recovers the public key that produced sig over digest, where
// sig is in [R || S || V] form as produced by Sign.
func Ecrecover(digest common.Hash, sig []byte) (*ecdsa.PublicKey, error) {
	if len(sig) != 65 {
		return nil, errors.New("crypto: invalid signature length")
	}
	compact := make([]byte, 65)
	compact[0] = sig[64] + 27
	copy(compact[1:], sig[:64])
	pub, _, err := dcrecdsa.RecoverCompact(compact, digest[:])
	if err != nil {
		return nil, err
	}
	ecdsaPub := pub.ToECDSA()
	return ecdsaPub, nil
}

// SigToAddress recovers the sender address directly from digest and sig.
func SigToAddress(digest common.Hash, sig []byte) (common.Address, error) {
	pub, err := Ecrecover(digest, sig)
	if err != nil {
		return common.Address{}, err
	}
	return PubkeyToAddress(*pub), nil
}

// ValidSignatureValues reports whether r, s fall within the secp256k1
// group order, the minimal sanity check a signer performs before
// attempting recovery.
func ValidSignatureValues(r, s *big.Int) bool {
	if r == nil || s == nil {
		return false
	}
	if r.Sign() <= 0 || s.Sign() <= 0 {
		return false
	}
	return r.Cmp(secp256k1.S256().N) < 0 && s.Cmp(secp256k1.S256().N) < 0
}

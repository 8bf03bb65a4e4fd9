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
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/go-txpool/txtabs/crypto"
)

func signedLegacyTx(t *testing.T, nonce uint64, gasPrice uint64) *Transaction {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	tx := NewLegacyTx(nonce, nil, uint256.NewInt(0), 21000, uint256.NewInt(gasPrice), nil)
	signed, err := NewLondonSigner().SignTx(tx, key)
	require.NoError(t, err)
	return signed
}

func TestLegacyTipCapEqualsGasPrice(t *testing.T) {
	tx := signedLegacyTx(t, 0, 7)
	require.Equal(t, tx.GasPrice(), tx.GasTipCap())
	require.Equal(t, tx.GasPrice(), tx.GasFeeCap())
}

func TestEffectiveGasTipEIP1559(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	tx := NewDynamicFeeTx(uint256.NewInt(1), 0, nil, uint256.NewInt(0), 21000, uint256.NewInt(15), uint256.NewInt(20), nil)
	signed, err := NewLondonSigner().SignTx(tx, key)
	require.NoError(t, err)

	base := int64(5)
	require.Equal(t, int64(15), signed.EffectiveGasTip(&base)) // min(15, 20-5)=15

	base = 12
	require.Equal(t, int64(8), signed.EffectiveGasTip(&base)) // min(15, 20-12)=8

	require.Equal(t, int64(15), signed.EffectiveGasTip(tipPtr(TxNoBaseFee)))
}

func tipPtr(v int64) *int64 { return &v }

func TestHashStableAndSignatureSensitive(t *testing.T) {
	txA := signedLegacyTx(t, 0, 10)
	h1 := txA.Hash()
	h2 := txA.Hash()
	require.Equal(t, h1, h2, "Hash must be memoised/stable")

	txB := signedLegacyTx(t, 0, 10)
	require.NotEqual(t, txA.Hash(), txB.Hash(), "distinct signatures must yield distinct hashes")
}

func TestSenderRecoveryFailsWithoutSignature(t *testing.T) {
	tx := NewLegacyTx(0, nil, uint256.NewInt(0), 21000, uint256.NewInt(1), nil)
	_, err := NewLondonSigner().Sender(tx)
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestCachingSignerMatchesInner(t *testing.T) {
	inner := NewLondonSigner()
	cached := NewCachingSigner(inner, 16)

	tx := signedLegacyTx(t, 3, 9)
	want, err := inner.Sender(tx)
	require.NoError(t, err)

	got, err := cached.Sender(tx)
	require.NoError(t, err)
	require.Equal(t, want, got)

	// second call must hit the cache and still agree
	got2, err := cached.Sender(tx)
	require.NoError(t, err)
	require.Equal(t, want, got2)
}

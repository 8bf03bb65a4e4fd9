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

package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignAndRecoverRoundTrip(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	want := PubkeyToAddress(key.PublicKey)
	digest := Keccak256([]byte("hello txtabs"))

	sig, err := Sign(digest, key)
	require.NoError(t, err)
	require.Len(t, sig, 65)

	got, err := SigToAddress(digest, sig)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestEcrecoverTamperedDigestYieldsDifferentAddress(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	digest := Keccak256([]byte("original"))
	sig, err := Sign(digest, key)
	require.NoError(t, err)

	tampered := Keccak256([]byte("tampered"))
	got, err := SigToAddress(tampered, sig)
	require.NoError(t, err)
	require.NotEqual(t, PubkeyToAddress(key.PublicKey), got)
}

func TestKeccak256Deterministic(t *testing.T) {
	a := Keccak256([]byte("abc"))
	b := Keccak256([]byte("abc"))
	require.Equal(t, a, b)

	c := Keccak256([]byte("ab"), []byte("c"))
	require.Equal(t, a, c, "Keccak256 must hash the concatenation of its arguments")
}

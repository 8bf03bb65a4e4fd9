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

package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddressHex(t *testing.T) {
	a := BytesToAddress([]byte{0x01, 0x02, 0x03})
	require.Equal(t, "0x0000000000000000000000000000000000010203", a.Hex())
	require.False(t, a.IsZero())
	require.True(t, Address{}.IsZero())
}

func TestHashRoundTrip(t *testing.T) {
	raw := make([]byte, HashLength)
	for i := range raw {
		raw[i] = byte(i)
	}
	h := BytesToHash(raw)
	require.Equal(t, raw, h.Bytes())
}

func TestAddressCmp(t *testing.T) {
	a := BytesToAddress([]byte{1})
	b := BytesToAddress([]byte{2})
	require.Equal(t, -1, a.Cmp(b))
	require.Equal(t, 1, b.Cmp(a))
	require.Equal(t, 0, a.Cmp(a))
}

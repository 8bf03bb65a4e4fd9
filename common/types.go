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

// Package common holds the small fixed-size value types shared by every
// other package in the module: addresses and hashes.
package common

import (
	"encoding/hex"
	"fmt"
)

const (
	// AddressLength is the expected length of an externally owned account
	// address, recovered from a transaction's signature.
	AddressLength = 20
	// HashLength is the expected length of a transaction hash.
	HashLength = 32
)

// Address represents the 20-byte address of an Ethereum-style account.
type Address [AddressLength]byte

// BytesToAddress sets the last AddressLength bytes of b into an Address,
// left-truncating if b is longer.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

// Bytes returns a ws copy of the address bytes.
func (a Address) Bytes() []byte { return a[:] }

// Hex returns the "0x"-prefixed hex encoding of the address.
func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

// String implements fmt.Stringer.
func (a Address) String() string { return a.Hex() }

// IsZero reports whether a is the zero address.
func (a Address) IsZero() bool { return a == Address{} }

// Cmp compares two addresses lexicographically.
func (a Address) Cmp(b Address) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Hash represents a 32-byte Keccak256 transaction or state hash.
type Hash [HashLength]byte

// BytesToHash sets the last HashLength bytes of b into a Hash.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

// Bytes returns a copy of the hash bytes.
func (h Hash) Bytes() []byte { return h[:] }

// Hex returns the "0x"-prefixed hex encoding of the hash.
func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

// String implements fmt.Stringer.
func (h Hash) String() string { return h.Hex() }

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool { return h == Hash{} }

// TerminalString returns a shortened hex form, handy for log lines.
func (h Hash) TerminalString() string {
	return fmt.Sprintf("%x…%x", h[:3], h[len(h)-3:])
}

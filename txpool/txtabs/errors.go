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
	"errors"
	"fmt"
)

// The user-visible error taxonomy (ErrAlreadyKnown, ErrInvalidSender,
// ErrUnderpriced, ...).
var (
	// ErrUnspecified is used when no finer code applies.
	ErrUnspecified = errors.New("txtabs: unspecified error")

	// ErrAlreadyKnown is returned when a transaction's hash already exists
	// in the pool.
	ErrAlreadyKnown = errors.New("txtabs: already known")

	// ErrInvalidSender is returned when a transaction's signature does not
	// recover to a valid address.
	ErrInvalidSender = errors.New("txtabs: invalid sender")

	// ErrUnderpriced is returned when a transaction's price is below the
	// pool's configured minimum.
	ErrUnderpriced = errors.New("txtabs: transaction underpriced")

	// ErrTxPoolOverflow is returned when the pool is at capacity and a
	// remote transaction is rejected rather than evicting space for it.
	ErrTxPoolOverflow = errors.New("txtabs: pool is full")

	// ErrReplaceUnderpriced is returned when a replacement transaction
	// does not clear the required price-bump threshold.
	ErrReplaceUnderpriced = errors.New("txtabs: replacement transaction underpriced")

	// ErrGasLimit is returned when a transaction's gas limit exceeds the
	// per-block allowance.
	ErrGasLimit = errors.New("txtabs: exceeds block gas limit")

	// ErrNegativeValue is returned for a transaction carrying a negative
	// value.
	ErrNegativeValue = errors.New("txtabs: negative value")

	// ErrOversizedData is returned when a transaction's input is larger
	// than the DoS-protection limit.
	ErrOversizedData = errors.New("txtabs: oversized data")
)

// InvariantError describes a detected cross-index inconsistency. It is
// only ever produced by Verify, which tests and debug builds use; in
// production a non-nil InvariantError represents a programming bug, not
// a condition callers should handle.
type InvariantError struct {
	Index  string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("txtabs: invariant violated in %s: %s", e.Index, e.Detail)
}

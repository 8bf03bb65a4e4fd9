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

// Package txpool is the driver layer: a single-threaded JobQueue worker
// wrapping one txtabs.TxTabs instance, plus the validation (price
// floors, replacement price bump, capacity) the store itself
// deliberately leaves to its caller.
package txpool

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the pool's tunable knobs: price floors, per-account/
// global capacity, and the wastebasket/eviction knobs this module adds
// on top.
type Config struct {
	// PriceLimit is the minimum gas tip a remote transaction must carry
	// to be accepted; locals are exempt.
	PriceLimit uint64 `toml:"price_limit"`
	// PriceBump is the percentage a replacement transaction's effective
	// tip must exceed the displaced transaction's by.
	PriceBump uint64 `toml:"price_bump"`

	// AccountSlots caps the number of executable (pending/staged) remote
	// transactions a single account may occupy; locals are exempt.
	AccountSlots int `toml:"account_slots"`
	// GlobalSlots is the total executable transaction capacity across all
	// accounts; remote inserts past this return ErrTxPoolOverflow.
	GlobalSlots int `toml:"global_slots"`
	// AccountQueue caps the number of non-executable (queued) remote
	// transactions a single account may occupy; locals are exempt.
	AccountQueue int `toml:"account_queue"`
	// GlobalQueue is the total non-executable transaction capacity across
	// all accounts; remote inserts past this return ErrTxPoolOverflow.
	GlobalQueue int `toml:"global_queue"`

	// MaxBlockGasLimit rejects any transaction whose gas limit exceeds
	// it with ErrGasLimit.
	MaxBlockGasLimit uint64 `toml:"max_block_gas_limit"`
	// MaxDataSize rejects any transaction whose input is larger than it
	// with ErrOversizedData.
	MaxDataSize int `toml:"max_data_size"`

	// MaxRejects is the wastebasket's bounded-FIFO capacity.
	MaxRejects int `toml:"max_rejects"`
	// Lifetime is the maximum age a non-local item may reach before
	// EvictionInactive removes it.
	Lifetime time.Duration `toml:"lifetime"`
}

// DefaultConfig holds conservative defaults, scaled down for a
// reference implementation rather than a production mainnet client.
var DefaultConfig = Config{
	PriceLimit:       1,
	PriceBump:        10,
	AccountSlots:     16,
	GlobalSlots:      4096,
	AccountQueue:     64,
	GlobalQueue:      1024,
	MaxBlockGasLimit: 30_000_000,
	MaxDataSize:      128 * 1024,
	MaxRejects:       1024,
	Lifetime:         3 * time.Hour,
}

// Validate reports the first structurally invalid field it finds.
func (c Config) Validate() error {
	if c.PriceBump >= 100 {
		return fmt.Errorf("txpool: price bump %d must be below 100 percent", c.PriceBump)
	}
	if c.GlobalSlots <= 0 {
		return fmt.Errorf("txpool: global slots must be positive")
	}
	if c.AccountSlots <= 0 || c.AccountSlots > c.GlobalSlots {
		return fmt.Errorf("txpool: account slots must be positive and not exceed global slots")
	}
	if c.MaxBlockGasLimit == 0 {
		return fmt.Errorf("txpool: max block gas limit must be positive")
	}
	if c.MaxRejects < 0 {
		return fmt.Errorf("txpool: max rejects must not be negative")
	}
	if c.Lifetime <= 0 {
		return fmt.Errorf("txpool: lifetime must be positive")
	}
	return nil
}

// LoadTOML reads a Config from a TOML file, starting from DefaultConfig
// so an incomplete file only overrides the fields it sets.
func LoadTOML(path string) (Config, error) {
	cfg := DefaultConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("txpool: decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

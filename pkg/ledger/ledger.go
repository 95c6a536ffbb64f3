// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-smartwallet.
//
// go-smartwallet is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package ledger provides custodial balance bookkeeping keyed by owner and
// asset. Balances are signed 128-bit quantities in the asset's smallest
// unit, stored as CBOR bignums; a missing entry reads as zero.
//
// The engine is pure bookkeeping: it performs no overdraft check of its
// own. The no-overdraft invariant belongs to the orchestrating flow, which
// must read the balance and debit inside one unit of work.
package ledger

import (
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"

	"github.com/jeremyhahn/go-smartwallet/pkg/storage"
)

// KeyPrefix is the storage key prefix for ledger entries.
const KeyPrefix = "ledger/"

// View is the storage access the engine needs. Both storage.Backend and
// storage.Txn satisfy it; mutating flows must pass a Txn so balance writes
// commit with the rest of the operation.
type View interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
}

// Engine reads and mutates per-owner, per-asset balances.
type Engine struct{}

// NewEngine creates a ledger engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Key returns the storage key for an owner's balance in an asset.
func Key(owner, asset string) string {
	return KeyPrefix + owner + "/" + asset
}

// Balance returns the owner's balance for the asset. A missing entry is
// balance zero.
func (e *Engine) Balance(view View, owner, asset string) (*big.Int, error) {
	data, err := view.Get(Key(owner, asset))
	if err == storage.ErrNotFound {
		return new(big.Int), nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: read balance: %w", err)
	}

	balance := new(big.Int)
	if err := cbor.Unmarshal(data, balance); err != nil {
		return nil, fmt.Errorf("ledger: decode balance: %w", err)
	}
	return balance, nil
}

// Credit adds amount to the owner's balance. The caller must have already
// established amount > 0.
func (e *Engine) Credit(view View, owner, asset string, amount *big.Int) error {
	balance, err := e.Balance(view, owner, asset)
	if err != nil {
		return err
	}
	return e.write(view, owner, asset, balance.Add(balance, amount))
}

// Debit subtracts amount from the owner's balance. The caller must have
// already established, within the same unit of work, that the balance
// covers the amount; no bounds re-check happens here.
func (e *Engine) Debit(view View, owner, asset string, amount *big.Int) error {
	balance, err := e.Balance(view, owner, asset)
	if err != nil {
		return err
	}
	return e.write(view, owner, asset, balance.Sub(balance, amount))
}

// write persists a balance entry.
func (e *Engine) write(view View, owner, asset string, balance *big.Int) error {
	data, err := cbor.Marshal(balance)
	if err != nil {
		return fmt.Errorf("ledger: encode balance: %w", err)
	}
	if err := view.Put(Key(owner, asset), data); err != nil {
		return fmt.Errorf("ledger: write balance: %w", err)
	}
	return nil
}

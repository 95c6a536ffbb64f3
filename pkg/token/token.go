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

// Package token defines the external asset-transfer collaborator the wallet
// moves real tokens through. The wallet only tracks logical custody
// balances; actual token movement is delegated to a Service implementation.
package token

import (
	"context"
	"errors"
	"math/big"
)

var (
	// ErrInsufficientBalance is returned when a transfer exceeds the
	// sender's token balance.
	ErrInsufficientBalance = errors.New("token: insufficient balance")

	// ErrInvalidAmount is returned for non-positive transfer amounts.
	ErrInvalidAmount = errors.New("token: amount must be positive")
)

// Service is the asset-transfer capability, addressed per asset.
type Service interface {
	// BalanceOf returns the owner's token balance for the asset.
	BalanceOf(ctx context.Context, asset, owner string) (*big.Int, error)

	// Transfer moves amount of the asset from one account to another.
	Transfer(ctx context.Context, asset, from, to string, amount *big.Int) error
}

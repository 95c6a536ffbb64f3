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

package token

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceOfUnknownAccount(t *testing.T) {
	service := NewMemoryService()

	balance, err := service.BalanceOf(context.Background(), "xlm", "nobody")
	require.NoError(t, err)
	assert.Zero(t, balance.Sign())
}

func TestMintAndTransfer(t *testing.T) {
	service := NewMemoryService()
	ctx := context.Background()

	service.Mint("xlm", "alice", big.NewInt(100))

	require.NoError(t, service.Transfer(ctx, "xlm", "alice", "custody", big.NewInt(60)))

	aliceBalance, err := service.BalanceOf(ctx, "xlm", "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(40), aliceBalance.Int64())

	custodyBalance, err := service.BalanceOf(ctx, "xlm", "custody")
	require.NoError(t, err)
	assert.Equal(t, int64(60), custodyBalance.Int64())
}

func TestTransferInsufficientBalance(t *testing.T) {
	service := NewMemoryService()
	ctx := context.Background()

	service.Mint("xlm", "alice", big.NewInt(10))

	err := service.Transfer(ctx, "xlm", "alice", "bob", big.NewInt(11))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// Unknown asset and unknown sender behave the same
	assert.ErrorIs(t, service.Transfer(ctx, "usdc", "alice", "bob", big.NewInt(1)), ErrInsufficientBalance)
	assert.ErrorIs(t, service.Transfer(ctx, "xlm", "carol", "bob", big.NewInt(1)), ErrInsufficientBalance)

	// Balances unchanged after rejections
	balance, err := service.BalanceOf(ctx, "xlm", "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance.Int64())
}

func TestTransferInvalidAmount(t *testing.T) {
	service := NewMemoryService()
	ctx := context.Background()

	assert.ErrorIs(t, service.Transfer(ctx, "xlm", "a", "b", big.NewInt(0)), ErrInvalidAmount)
	assert.ErrorIs(t, service.Transfer(ctx, "xlm", "a", "b", big.NewInt(-5)), ErrInvalidAmount)
	assert.ErrorIs(t, service.Transfer(ctx, "xlm", "a", "b", nil), ErrInvalidAmount)
}

func TestBalanceOfReturnsCopy(t *testing.T) {
	service := NewMemoryService()
	ctx := context.Background()

	service.Mint("xlm", "alice", big.NewInt(100))

	balance, err := service.BalanceOf(ctx, "xlm", "alice")
	require.NoError(t, err)
	balance.SetInt64(0)

	again, err := service.BalanceOf(ctx, "xlm", "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(100), again.Int64())
}

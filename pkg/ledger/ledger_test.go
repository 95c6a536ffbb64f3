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

package ledger

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-smartwallet/pkg/storage"
)

func TestBalanceAbsentIsZero(t *testing.T) {
	engine := NewEngine()
	backend := storage.NewMemoryBackend()

	balance, err := engine.Balance(backend, "alice", "xlm")
	require.NoError(t, err)
	assert.Zero(t, balance.Sign())
}

func TestCreditAndDebit(t *testing.T) {
	engine := NewEngine()
	backend := storage.NewMemoryBackend()

	require.NoError(t, engine.Credit(backend, "alice", "xlm", big.NewInt(100)))
	require.NoError(t, engine.Credit(backend, "alice", "xlm", big.NewInt(50)))

	balance, err := engine.Balance(backend, "alice", "xlm")
	require.NoError(t, err)
	assert.Equal(t, int64(150), balance.Int64())

	require.NoError(t, engine.Debit(backend, "alice", "xlm", big.NewInt(70)))

	balance, err = engine.Balance(backend, "alice", "xlm")
	require.NoError(t, err)
	assert.Equal(t, int64(80), balance.Int64())
}

func TestBalancesIsolatedByOwnerAndAsset(t *testing.T) {
	engine := NewEngine()
	backend := storage.NewMemoryBackend()

	require.NoError(t, engine.Credit(backend, "alice", "xlm", big.NewInt(10)))
	require.NoError(t, engine.Credit(backend, "alice", "usdc", big.NewInt(20)))
	require.NoError(t, engine.Credit(backend, "bob", "xlm", big.NewInt(30)))

	for _, tt := range []struct {
		owner, asset string
		want         int64
	}{
		{"alice", "xlm", 10},
		{"alice", "usdc", 20},
		{"bob", "xlm", 30},
		{"bob", "usdc", 0},
	} {
		balance, err := engine.Balance(backend, tt.owner, tt.asset)
		require.NoError(t, err)
		assert.Equal(t, tt.want, balance.Int64(), "%s/%s", tt.owner, tt.asset)
	}
}

func TestBalancesBeyondInt64(t *testing.T) {
	engine := NewEngine()
	backend := storage.NewMemoryBackend()

	// 2^100, well past int64 range
	huge := new(big.Int).Lsh(big.NewInt(1), 100)
	require.NoError(t, engine.Credit(backend, "whale", "xlm", huge))
	require.NoError(t, engine.Credit(backend, "whale", "xlm", huge))

	balance, err := engine.Balance(backend, "whale", "xlm")
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Lsh(big.NewInt(1), 101), balance)
}

func TestLedgerWritesInsideTransaction(t *testing.T) {
	engine := NewEngine()
	backend := storage.NewMemoryBackend()
	require.NoError(t, engine.Credit(backend, "alice", "xlm", big.NewInt(100)))

	txn, err := backend.Begin()
	require.NoError(t, err)

	require.NoError(t, engine.Debit(txn, "alice", "xlm", big.NewInt(40)))

	// Staged debit visible inside the transaction only
	inside, err := engine.Balance(txn, "alice", "xlm")
	require.NoError(t, err)
	assert.Equal(t, int64(60), inside.Int64())

	outside, err := engine.Balance(backend, "alice", "xlm")
	require.NoError(t, err)
	assert.Equal(t, int64(100), outside.Int64())

	require.NoError(t, txn.Rollback())

	after, err := engine.Balance(backend, "alice", "xlm")
	require.NoError(t, err)
	assert.Equal(t, int64(100), after.Int64())
}

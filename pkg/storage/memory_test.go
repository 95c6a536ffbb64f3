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

package storage

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBackendGetPut(t *testing.T) {
	backend := NewMemoryBackend()

	_, err := backend.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, backend.Put("key1", []byte("value1")))

	value, err := backend.Get("key1")
	require.NoError(t, err)
	assert.Equal(t, []byte("value1"), value)

	// Overwrite
	require.NoError(t, backend.Put("key1", []byte("value2")))
	value, err = backend.Get("key1")
	require.NoError(t, err)
	assert.Equal(t, []byte("value2"), value)
}

func TestMemoryBackendReturnsCopies(t *testing.T) {
	backend := NewMemoryBackend()

	original := []byte("original")
	require.NoError(t, backend.Put("key", original))

	// Mutating the slice passed to Put must not affect stored data
	original[0] = 'X'

	value, err := backend.Get("key")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), value)

	// Mutating the returned slice must not affect stored data
	value[0] = 'Y'
	again, err := backend.Get("key")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), again)
}

func TestMemoryBackendDelete(t *testing.T) {
	backend := NewMemoryBackend()

	assert.ErrorIs(t, backend.Delete("missing"), ErrNotFound)

	require.NoError(t, backend.Put("key", []byte("value")))
	require.NoError(t, backend.Delete("key"))

	_, err := backend.Get("key")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryBackendList(t *testing.T) {
	backend := NewMemoryBackend()

	require.NoError(t, backend.Put("ledger/alice/xlm", []byte("1")))
	require.NoError(t, backend.Put("ledger/alice/usdc", []byte("2")))
	require.NoError(t, backend.Put("credentials/alice", []byte("3")))

	keys, err := backend.List("ledger/alice/")
	require.NoError(t, err)
	assert.Len(t, keys, 2)

	all, err := backend.List("")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemoryBackendExists(t *testing.T) {
	backend := NewMemoryBackend()

	exists, err := backend.Exists("key")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, backend.Put("key", []byte("value")))
	exists, err = backend.Exists("key")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemoryBackendClosed(t *testing.T) {
	backend := NewMemoryBackend()
	require.NoError(t, backend.Close())

	_, err := backend.Get("key")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, backend.Put("key", nil), ErrClosed)
	assert.ErrorIs(t, backend.Delete("key"), ErrClosed)
	assert.ErrorIs(t, backend.Close(), ErrClosed)

	_, err = backend.Begin()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestTxnCommit(t *testing.T) {
	backend := NewMemoryBackend()
	require.NoError(t, backend.Put("existing", []byte("old")))

	txn, err := backend.Begin()
	require.NoError(t, err)

	require.NoError(t, txn.Put("existing", []byte("new")))
	require.NoError(t, txn.Put("created", []byte("value")))

	// Staged writes are visible inside the transaction
	value, err := txn.Get("existing")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), value)

	// But not outside until commit
	value, err = backend.Get("existing")
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), value)

	require.NoError(t, txn.Commit())

	value, err = backend.Get("existing")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), value)

	value, err = backend.Get("created")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), value)
}

func TestTxnRollback(t *testing.T) {
	backend := NewMemoryBackend()
	require.NoError(t, backend.Put("key", []byte("old")))

	txn, err := backend.Begin()
	require.NoError(t, err)

	require.NoError(t, txn.Put("key", []byte("new")))
	require.NoError(t, txn.Put("other", []byte("value")))
	require.NoError(t, txn.Rollback())

	value, err := backend.Get("key")
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), value)

	_, err = backend.Get("other")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTxnDelete(t *testing.T) {
	backend := NewMemoryBackend()
	require.NoError(t, backend.Put("key", []byte("value")))

	txn, err := backend.Begin()
	require.NoError(t, err)

	require.NoError(t, txn.Delete("key"))
	_, err = txn.Get("key")
	assert.ErrorIs(t, err, ErrNotFound)

	// Still present outside the transaction
	exists, err := backend.Exists("key")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, txn.Commit())

	exists, err = backend.Exists("key")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTxnDone(t *testing.T) {
	backend := NewMemoryBackend()

	txn, err := backend.Begin()
	require.NoError(t, err)
	require.NoError(t, txn.Commit())

	assert.ErrorIs(t, txn.Commit(), ErrTxnDone)
	assert.ErrorIs(t, txn.Rollback(), ErrTxnDone)
	assert.ErrorIs(t, txn.Put("key", nil), ErrTxnDone)
	_, err = txn.Get("key")
	assert.ErrorIs(t, err, ErrTxnDone)
}

func TestTxnSerialization(t *testing.T) {
	backend := NewMemoryBackend()
	require.NoError(t, backend.Put("counter", []byte{0}))

	// Concurrent increments must not lose updates because Begin
	// serializes transactions.
	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			txn, err := backend.Begin()
			require.NoError(t, err)
			value, err := txn.Get("counter")
			require.NoError(t, err)
			require.NoError(t, txn.Put("counter", []byte{value[0] + 1}))
			require.NoError(t, txn.Commit())
		}()
	}
	wg.Wait()

	value, err := backend.Get("counter")
	require.NoError(t, err)
	assert.Equal(t, byte(workers), value[0])
}

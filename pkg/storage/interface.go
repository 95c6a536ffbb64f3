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

// Package storage provides the key-value persistence abstraction for the
// wallet. Credential records and ledger entries are opaque byte values to
// this layer; the wire format is owned by the callers.
//
// Mutating flows run inside a Txn so that every write of a single wallet
// operation commits together or not at all.
package storage

// Backend defines the interface for storage backends.
// All implementations must be thread-safe.
type Backend interface {
	// Get retrieves the value for the given key.
	// Returns ErrNotFound if the key does not exist.
	Get(key string) ([]byte, error)

	// Put stores the value for the given key.
	// If the key already exists, it will be overwritten.
	Put(key string, value []byte) error

	// Delete removes the key and its value from storage.
	// Returns ErrNotFound if the key does not exist.
	Delete(key string) error

	// List returns all keys with the given prefix.
	// If prefix is empty, all keys are returned.
	List(prefix string) ([]string, error)

	// Exists checks if a key exists in storage.
	Exists(key string) (bool, error)

	// Close releases any resources held by the backend.
	Close() error
}

// Transactional is implemented by backends that support atomic units of
// work. Begin blocks until any in-flight transaction on the same backend
// has completed, giving each wallet operation call-level isolation.
type Transactional interface {
	// Begin starts a new transaction.
	Begin() (Txn, error)
}

// Txn is a single atomic unit of work over a Backend. Reads observe the
// transaction's own staged writes before the committed state. A Txn must
// be finished with exactly one call to Commit or Rollback.
type Txn interface {
	// Get retrieves the value for the given key, observing staged writes.
	// Returns ErrNotFound if the key does not exist.
	Get(key string) ([]byte, error)

	// Put stages a write. The value is not observable outside the
	// transaction until Commit.
	Put(key string, value []byte) error

	// Delete stages a removal of the key.
	Delete(key string) error

	// Commit applies all staged writes atomically.
	Commit() error

	// Rollback discards all staged writes.
	Rollback() error
}

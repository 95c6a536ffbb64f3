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
	"strings"
	"sync"
)

// MemoryBackend provides an in-memory storage implementation.
// Thread-safe using a read-write mutex; transactions are serialized by a
// dedicated transaction mutex so that no two units of work overlap.
type MemoryBackend struct {
	data   map[string][]byte
	mu     sync.RWMutex
	txMu   sync.Mutex
	closed bool
}

// NewMemoryBackend creates a new in-memory storage backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		data: make(map[string][]byte),
	}
}

// Get retrieves the value for the given key.
func (m *MemoryBackend) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	value, exists := m.data[key]
	if !exists {
		return nil, ErrNotFound
	}

	// Return a copy to prevent modification
	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

// Put stores the value for the given key.
func (m *MemoryBackend) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	// Store a copy to prevent modification
	data := make([]byte, len(value))
	copy(data, value)
	m.data[key] = data
	return nil
}

// Delete removes the key and its value from storage.
func (m *MemoryBackend) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if _, exists := m.data[key]; !exists {
		return ErrNotFound
	}

	delete(m.data, key)
	return nil
}

// List returns all keys with the given prefix.
func (m *MemoryBackend) List(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	var keys []string
	for key := range m.data {
		if prefix == "" || strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Exists checks if a key exists in storage.
func (m *MemoryBackend) Exists(key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return false, ErrClosed
	}

	_, exists := m.data[key]
	return exists, nil
}

// Close releases resources held by the backend.
func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	m.closed = true
	m.data = nil
	return nil
}

// Begin starts a new transaction. It blocks until any in-flight
// transaction on this backend has committed or rolled back.
func (m *MemoryBackend) Begin() (Txn, error) {
	m.txMu.Lock()

	m.mu.RLock()
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		m.txMu.Unlock()
		return nil, ErrClosed
	}

	return &memoryTxn{
		backend: m,
		writes:  make(map[string][]byte),
		deletes: make(map[string]struct{}),
	}, nil
}

// memoryTxn stages writes against a MemoryBackend and applies them all
// at Commit. Reads observe staged writes before the committed state.
type memoryTxn struct {
	backend *MemoryBackend
	writes  map[string][]byte
	deletes map[string]struct{}
	done    bool
}

// Get retrieves the value for the given key, observing staged writes.
func (t *memoryTxn) Get(key string) ([]byte, error) {
	if t.done {
		return nil, ErrTxnDone
	}

	if _, deleted := t.deletes[key]; deleted {
		return nil, ErrNotFound
	}
	if value, staged := t.writes[key]; staged {
		result := make([]byte, len(value))
		copy(result, value)
		return result, nil
	}
	return t.backend.Get(key)
}

// Put stages a write.
func (t *memoryTxn) Put(key string, value []byte) error {
	if t.done {
		return ErrTxnDone
	}

	data := make([]byte, len(value))
	copy(data, value)
	t.writes[key] = data
	delete(t.deletes, key)
	return nil
}

// Delete stages a removal of the key.
func (t *memoryTxn) Delete(key string) error {
	if t.done {
		return ErrTxnDone
	}

	delete(t.writes, key)
	t.deletes[key] = struct{}{}
	return nil
}

// Commit applies all staged writes atomically.
func (t *memoryTxn) Commit() error {
	if t.done {
		return ErrTxnDone
	}
	t.done = true
	defer t.backend.txMu.Unlock()

	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()

	if t.backend.closed {
		return ErrClosed
	}

	for key := range t.deletes {
		delete(t.backend.data, key)
	}
	for key, value := range t.writes {
		t.backend.data[key] = value
	}
	return nil
}

// Rollback discards all staged writes.
func (t *memoryTxn) Rollback() error {
	if t.done {
		return ErrTxnDone
	}
	t.done = true
	t.writes = nil
	t.deletes = nil
	t.backend.txMu.Unlock()
	return nil
}

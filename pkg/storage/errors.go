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

import "errors"

var (
	// ErrNotFound is returned when a key does not exist in storage.
	ErrNotFound = errors.New("storage: key not found")

	// ErrClosed is returned when operating on a closed backend.
	ErrClosed = errors.New("storage: backend is closed")

	// ErrTxnDone is returned when using a transaction after it has
	// been committed or rolled back.
	ErrTxnDone = errors.New("storage: transaction already finished")
)

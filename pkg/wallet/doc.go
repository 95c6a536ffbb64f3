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

// Package wallet orchestrates the passkey-authorized custodial wallet: it
// gates deposits and payments behind assertion verification and caller
// authorization, and keeps per-owner, per-asset custody balances through
// the ledger engine.
//
// Failures are two-tier. Protocol faults in the assertion itself (and
// authorization failures) abort the operation with a non-nil error before
// any side effect. Business-rule failures at the orchestration level — a
// non-positive amount, an unregistered signer, an insufficient balance —
// are soft rejections: the operation returns a Result with Accepted false
// and a Reason, also with no side effect.
package wallet

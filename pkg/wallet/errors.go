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

package wallet

import "errors"

var (
	// ErrSignerNotRegistered is returned by read accessors when the owner
	// has no stored passkey credential.
	ErrSignerNotRegistered = errors.New("wallet: signer not registered")

	// ErrInvalidCredential is returned when a stored credential record
	// fails to decode or carries key material of the wrong length.
	ErrInvalidCredential = errors.New("wallet: invalid credential record")
)

// Reason classifies a soft rejection. Rejections are expected business
// outcomes, not errors: the operation returns cleanly with no side effect.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonInvalidAmount       Reason = "invalid amount"
	ReasonSignerNotRegistered Reason = "signer not registered"
	ReasonInvalidPublicKey    Reason = "invalid passkey public key length"
	ReasonInvalidRPIDHash     Reason = "invalid relying party ID hash length"
	ReasonInvalidSignature    Reason = "invalid signature length"
	ReasonVerificationFailed  Reason = "assertion not accepted"
	ReasonInsufficientTokens  Reason = "insufficient token balance"
	ReasonInsufficientFunds   Reason = "insufficient deposited balance"
)

// Result is the outcome of a wallet operation that completed without a
// hard fault. Accepted reports whether the operation took effect; when it
// did not, Reason says why.
type Result struct {
	Accepted bool   `json:"accepted"`
	Reason   Reason `json:"reason,omitempty"`
}

func accepted() Result {
	return Result{Accepted: true}
}

func rejected(reason Reason) Result {
	return Result{Accepted: false, Reason: reason}
}

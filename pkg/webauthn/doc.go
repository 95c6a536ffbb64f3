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

// Package webauthn implements verification of WebAuthn (passkey)
// authentication assertions as described by the W3C WebAuthn
// specification (https://www.w3.org/TR/webauthn-2/#sctn-verifying-assertion),
// adapted for wallet signing: the challenge is derived from the first 32
// bytes of the payload that authorizes a wallet operation.
//
// The package verifies assertions only. Credential creation (attestation),
// origin and RP ID verification are the caller's responsibility; the relying
// party ID hash is compared by the wallet layer against the registered value.
//
// Verification fails closed: every structural or business-rule violation
// is reported as a *FaultError carrying a stable numeric fault code, and a
// boolean true is returned only when parsing, rule checks, and the
// secp256r1 signature check all succeed.
package webauthn

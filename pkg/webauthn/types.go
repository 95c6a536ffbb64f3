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

package webauthn

// Authenticator data flag bits (authenticatorData[32]).
const (
	// FlagUserPresent is bit 0: "User Present" (UP).
	FlagUserPresent byte = 0x01

	// FlagUserVerified is bit 2: "User Verified" (UV).
	FlagUserVerified byte = 0x04

	// FlagBackupEligible is bit 3: "Backup Eligibility" (BE).
	FlagBackupEligible byte = 0x08

	// FlagBackupState is bit 4: "Backup State" (BS).
	FlagBackupState byte = 0x10
)

const (
	// ClientDataMaxLen is the maximum accepted length of client data JSON.
	ClientDataMaxLen = 1024

	// AuthenticatorDataMinLen is the minimum authenticator data layout:
	// 32-byte RP ID hash, 1 flags byte, 4-byte signature counter.
	AuthenticatorDataMinLen = 37

	// ChallengeLen is the length of the base64url-encoded 32-byte challenge.
	ChallengeLen = 43

	// PublicKeyLen is the length of an uncompressed P-256 public key.
	PublicKeyLen = 65

	// SignatureLen is the length of a raw r||s secp256r1 signature.
	SignatureLen = 64

	// flagsIndex is the offset of the flags byte in authenticator data.
	flagsIndex = 32
)

// ExpectedType is the ceremony type required for authentication assertions.
const ExpectedType = "webauthn.get"

// SigData carries the components of a single authentication assertion.
// It is ephemeral; nothing in it is persisted.
type SigData struct {
	// Signature is the raw r||s secp256r1 signature (64 bytes).
	Signature []byte

	// AuthenticatorData is the raw authenticator data blob.
	AuthenticatorData []byte

	// ClientDataJSON is the raw client data JSON document.
	ClientDataJSON []byte
}

// ClientData holds the fields extracted from the client data JSON.
// Unrecognized fields are ignored during parsing.
type ClientData struct {
	// Challenge is the base64url-encoded challenge echoed by the client.
	Challenge string

	// Type is the ceremony type, expected to be "webauthn.get".
	Type string
}

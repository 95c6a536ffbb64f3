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

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"math/big"
)

// Verifier is the assertion verification capability consumed by the wallet.
// Implementations may run in-process or behind a service boundary; the
// wallet treats both identically.
type Verifier interface {
	// Verify performs complete verification of an authentication
	// assertion. It returns true only when parsing, every business rule,
	// and the cryptographic check succeed. Any rule violation is
	// reported as a *FaultError; Verify never soft-fails a protocol
	// fault into (false, nil).
	Verify(ctx context.Context, signaturePayload, publicKey []byte, sigData SigData) (bool, error)
}

// ECDSAVerifier verifies assertions in-process against secp256r1 (NIST
// P-256) public keys in 65-byte uncompressed form.
type ECDSAVerifier struct{}

// NewECDSAVerifier creates an in-process assertion verifier.
func NewECDSAVerifier() *ECDSAVerifier {
	return &ECDSAVerifier{}
}

// Verify implements the assertion verification procedure:
//
//  1. Client data length and JSON structure checks.
//  2. Ceremony type is "webauthn.get".
//  3. Challenge matches the first 32 bytes of the signature payload.
//  4. Authenticator data layout and UP/UV/BE/BS flag rules.
//  5. digest = SHA256(authenticatorData || SHA256(clientDataJSON)).
//  6. secp256r1 signature check of digest against the public key.
func (v *ECDSAVerifier) Verify(ctx context.Context, signaturePayload, publicKey []byte, sigData SigData) (bool, error) {
	clientData, err := ParseClientData(sigData.ClientDataJSON)
	if err != nil {
		return false, err
	}

	flags, err := AuthenticatorFlags(sigData.AuthenticatorData)
	if err != nil {
		return false, err
	}

	if err := validateAssertion(clientData, flags, signaturePayload); err != nil {
		return false, err
	}

	pub, err := parsePublicKey(publicKey)
	if err != nil {
		return false, err
	}
	r, s, err := parseSignature(sigData.Signature)
	if err != nil {
		return false, err
	}

	clientDataHash := sha256.Sum256(sigData.ClientDataJSON)
	message := make([]byte, 0, len(sigData.AuthenticatorData)+len(clientDataHash))
	message = append(message, sigData.AuthenticatorData...)
	message = append(message, clientDataHash[:]...)
	digest := sha256.Sum256(message)

	if !ecdsa.Verify(pub, digest[:], r, s) {
		return false, ErrSignatureVerification
	}
	return true, nil
}

// parsePublicKey decodes a 65-byte uncompressed P-256 point.
func parsePublicKey(raw []byte) (*ecdsa.PublicKey, error) {
	if len(raw) != PublicKeyLen || raw[0] != 0x04 {
		return nil, ErrInvalidPublicKey
	}

	curve := elliptic.P256()
	x := new(big.Int).SetBytes(raw[1:33])
	y := new(big.Int).SetBytes(raw[33:65])
	if !curve.IsOnCurve(x, y) {
		return nil, ErrInvalidPublicKey
	}

	return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil
}

// parseSignature splits a raw 64-byte signature into its r and s scalars.
func parseSignature(raw []byte) (r, s *big.Int, err error) {
	if len(raw) != SignatureLen {
		return nil, nil, ErrInvalidSignatureLength
	}
	r = new(big.Int).SetBytes(raw[:32])
	s = new(big.Int).SetBytes(raw[32:])
	return r, s, nil
}

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
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
)

// MockAuthenticator simulates a passkey authenticator for testing. It holds
// a real P-256 key pair and produces assertions in the exact wire format the
// verifier consumes: raw r||s signatures over
// SHA256(authenticatorData || SHA256(clientDataJSON)).
type MockAuthenticator struct {
	// UserPresent indicates whether the UP flag should be set.
	UserPresent bool

	// UserVerified indicates whether the UV flag should be set.
	UserVerified bool

	// BackupEligible indicates whether the BE flag should be set.
	BackupEligible bool

	// BackupState indicates whether the BS flag should be set.
	BackupState bool

	// SignCount is the signature counter written into authenticator data.
	SignCount uint32

	// privateKey is the authenticator's signing key.
	privateKey *ecdsa.PrivateKey

	// rpID is the Relying Party ID (usually the domain).
	rpID string

	// rpIDHash is the SHA-256 hash of the RP ID.
	rpIDHash [32]byte
}

// MockAuthenticatorOption is a functional option for configuring a MockAuthenticator.
type MockAuthenticatorOption func(*MockAuthenticator)

// WithUserPresent sets the UP flag.
func WithUserPresent(up bool) MockAuthenticatorOption {
	return func(m *MockAuthenticator) {
		m.UserPresent = up
	}
}

// WithUserVerified sets the UV flag.
func WithUserVerified(uv bool) MockAuthenticatorOption {
	return func(m *MockAuthenticator) {
		m.UserVerified = uv
	}
}

// WithBackupFlags sets the BE and BS flags.
func WithBackupFlags(eligible, state bool) MockAuthenticatorOption {
	return func(m *MockAuthenticator) {
		m.BackupEligible = eligible
		m.BackupState = state
	}
}

// WithSignCount sets the initial sign count.
func WithSignCount(count uint32) MockAuthenticatorOption {
	return func(m *MockAuthenticator) {
		m.SignCount = count
	}
}

// NewMockAuthenticator creates a new mock authenticator for testing.
func NewMockAuthenticator(rpID string, opts ...MockAuthenticatorOption) (*MockAuthenticator, error) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}

	m := &MockAuthenticator{
		UserPresent:  true,
		UserVerified: true,
		privateKey:   privateKey,
		rpID:         rpID,
		rpIDHash:     sha256.Sum256([]byte(rpID)),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// PublicKey returns the authenticator's public key as a 65-byte
// uncompressed P-256 point.
func (m *MockAuthenticator) PublicKey() []byte {
	pub := make([]byte, PublicKeyLen)
	pub[0] = 0x04
	m.privateKey.X.FillBytes(pub[1:33])
	m.privateKey.Y.FillBytes(pub[33:65])
	return pub
}

// RPIDHash returns the SHA-256 hash of the Relying Party ID.
func (m *MockAuthenticator) RPIDHash() []byte {
	hash := make([]byte, len(m.rpIDHash))
	copy(hash, m.rpIDHash[:])
	return hash
}

// flags assembles the authenticator data flags byte.
func (m *MockAuthenticator) flags() byte {
	var flags byte
	if m.UserPresent {
		flags |= FlagUserPresent
	}
	if m.UserVerified {
		flags |= FlagUserVerified
	}
	if m.BackupEligible {
		flags |= FlagBackupEligible
	}
	if m.BackupState {
		flags |= FlagBackupState
	}
	return flags
}

// AuthenticatorData assembles the fixed-layout authenticator data blob:
// rpIdHash (32) || flags (1) || signCount (4, big endian).
func (m *MockAuthenticator) AuthenticatorData() []byte {
	data := make([]byte, AuthenticatorDataMinLen)
	copy(data[:32], m.rpIDHash[:])
	data[flagsIndex] = m.flags()
	binary.BigEndian.PutUint32(data[33:], m.SignCount)
	return data
}

// ClientDataJSON assembles a client data document whose challenge echoes
// the first 32 bytes of the signature payload.
func (m *MockAuthenticator) ClientDataJSON(signaturePayload []byte) ([]byte, error) {
	challenge, err := ExpectedChallenge(signaturePayload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]string{
		"type":      ExpectedType,
		"challenge": challenge,
		"origin":    "https://" + m.rpID,
	})
}

// Assert produces a complete, valid assertion over the signature payload
// and increments the sign count.
func (m *MockAuthenticator) Assert(signaturePayload []byte) (SigData, error) {
	clientDataJSON, err := m.ClientDataJSON(signaturePayload)
	if err != nil {
		return SigData{}, err
	}

	m.SignCount++
	authenticatorData := m.AuthenticatorData()

	clientDataHash := sha256.Sum256(clientDataJSON)
	message := make([]byte, 0, len(authenticatorData)+len(clientDataHash))
	message = append(message, authenticatorData...)
	message = append(message, clientDataHash[:]...)
	digest := sha256.Sum256(message)

	r, s, err := ecdsa.Sign(rand.Reader, m.privateKey, digest[:])
	if err != nil {
		return SigData{}, err
	}

	signature := make([]byte, SignatureLen)
	r.FillBytes(signature[:32])
	s.FillBytes(signature[32:])

	return SigData{
		Signature:         signature,
		AuthenticatorData: authenticatorData,
		ClientDataJSON:    clientDataJSON,
	}, nil
}

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

import (
	"context"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/jeremyhahn/go-smartwallet/pkg/storage"
	"github.com/jeremyhahn/go-smartwallet/pkg/webauthn"
)

// CredentialPrefix namespaces credential records in the storage backend.
const CredentialPrefix = "credentials/"

// CredentialStore persists passkey credentials keyed by owner.
type CredentialStore interface {
	// Get returns the credential registered for owner.
	// Returns ErrSignerNotRegistered when none exists and
	// ErrInvalidCredential when the stored record is unusable.
	Get(ctx context.Context, owner string) (*PasskeyCredential, error)

	// Put stores or replaces the credential for owner.
	Put(ctx context.Context, cred *PasskeyCredential) error

	// Exists reports whether a credential is registered for owner.
	Exists(ctx context.Context, owner string) (bool, error)
}

// credentialRecord is the CBOR wire form of a credential at rest.
type credentialRecord struct {
	PublicKey []byte `cbor:"1,keyasint"`
	RPIDHash  []byte `cbor:"2,keyasint"`
}

// StorageCredentialStore keeps credentials in a storage backend under
// CredentialPrefix.
type StorageCredentialStore struct {
	backend storage.Backend
}

// NewCredentialStore returns a CredentialStore backed by backend.
func NewCredentialStore(backend storage.Backend) *StorageCredentialStore {
	return &StorageCredentialStore{backend: backend}
}

func credentialKey(owner string) string {
	return CredentialPrefix + owner
}

func (s *StorageCredentialStore) Get(ctx context.Context, owner string) (*PasskeyCredential, error) {
	raw, err := s.backend.Get(credentialKey(owner))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrSignerNotRegistered
		}
		return nil, fmt.Errorf("wallet: load credential for %s: %w", owner, err)
	}

	var rec credentialRecord
	if err := cbor.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if len(rec.PublicKey) != webauthn.PublicKeyLen || len(rec.RPIDHash) != 32 {
		return nil, ErrInvalidCredential
	}

	cred := &PasskeyCredential{Owner: owner}
	copy(cred.PublicKey[:], rec.PublicKey)
	copy(cred.RPIDHash[:], rec.RPIDHash)
	return cred, nil
}

func (s *StorageCredentialStore) Put(ctx context.Context, cred *PasskeyCredential) error {
	rec := credentialRecord{
		PublicKey: cred.PublicKey[:],
		RPIDHash:  cred.RPIDHash[:],
	}
	raw, err := cbor.Marshal(rec)
	if err != nil {
		return fmt.Errorf("wallet: encode credential for %s: %w", cred.Owner, err)
	}
	if err := s.backend.Put(credentialKey(cred.Owner), raw); err != nil {
		return fmt.Errorf("wallet: store credential for %s: %w", cred.Owner, err)
	}
	return nil
}

func (s *StorageCredentialStore) Exists(ctx context.Context, owner string) (bool, error) {
	ok, err := s.backend.Exists(credentialKey(owner))
	if err != nil {
		return false, fmt.Errorf("wallet: check credential for %s: %w", owner, err)
	}
	return ok, nil
}

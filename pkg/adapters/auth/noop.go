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

package auth

import "net/http"

// NoOpAuthenticator trusts an owner header without verification. It exists
// for development and tests only; production deployments configure JWT.
type NoOpAuthenticator struct{}

// OwnerHeader is the header the NoOp authenticator reads the subject from.
const OwnerHeader = "X-Wallet-Owner"

// NewNoOpAuthenticator creates an authenticator that trusts the
// X-Wallet-Owner header.
func NewNoOpAuthenticator() *NoOpAuthenticator {
	return &NoOpAuthenticator{}
}

// Name returns the authenticator's name.
func (a *NoOpAuthenticator) Name() string {
	return "noop"
}

// AuthenticateHTTP builds an identity from the X-Wallet-Owner header.
func (a *NoOpAuthenticator) AuthenticateHTTP(r *http.Request) (*Identity, error) {
	owner := r.Header.Get(OwnerHeader)
	if owner == "" {
		return nil, ErrUnauthenticated
	}
	return &Identity{
		Subject: owner,
		Claims:  map[string]interface{}{},
	}, nil
}

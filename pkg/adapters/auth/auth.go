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

// Package auth provides the caller-authorization primitive for wallet
// operations. A transport authenticator establishes the caller's Identity;
// the wallet then requires that identity to match the owner whose funds an
// operation touches. This check is independent from, and in addition to,
// the passkey assertion verification.
package auth

import (
	"context"
	"errors"
	"net/http"
)

var (
	// ErrUnauthenticated is returned when no identity could be
	// established for the request.
	ErrUnauthenticated = errors.New("auth: unauthenticated")

	// ErrNotAuthorized is returned when the established identity does
	// not cover the owner an operation acts on behalf of.
	ErrNotAuthorized = errors.New("auth: caller not authorized for owner")
)

// Identity describes an authenticated caller.
type Identity struct {
	// Subject is the authenticated principal, matched against owner IDs.
	Subject string

	// Claims carries additional token claims for downstream use.
	Claims map[string]interface{}
}

// Authenticator establishes a caller identity from an HTTP request.
type Authenticator interface {
	// AuthenticateHTTP authenticates an HTTP request.
	AuthenticateHTTP(r *http.Request) (*Identity, error)

	// Name returns the authenticator's name for logging.
	Name() string
}

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const identityKey contextKey = "auth-identity"

// WithIdentity adds an authenticated identity to the context.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentity retrieves the authenticated identity from context.
// Returns nil if the request was not authenticated.
func GetIdentity(ctx context.Context) *Identity {
	if identity, ok := ctx.Value(identityKey).(*Identity); ok {
		return identity
	}
	return nil
}

// RequireAuthorization fails unless the context carries an identity whose
// subject is the given owner. This is the host-level authorization gate the
// wallet applies after assertion verification and before moving funds.
func RequireAuthorization(ctx context.Context, owner string) error {
	identity := GetIdentity(ctx)
	if identity == nil {
		return ErrUnauthenticated
	}
	if identity.Subject != owner {
		return ErrNotAuthorized
	}
	return nil
}

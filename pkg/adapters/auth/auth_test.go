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

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireAuthorization(t *testing.T) {
	ctx := context.Background()

	// No identity at all
	assert.ErrorIs(t, RequireAuthorization(ctx, "alice"), ErrUnauthenticated)

	// Matching identity
	ctx = WithIdentity(ctx, &Identity{Subject: "alice"})
	assert.NoError(t, RequireAuthorization(ctx, "alice"))

	// Identity for a different owner
	assert.ErrorIs(t, RequireAuthorization(ctx, "bob"), ErrNotAuthorized)
}

func TestGetIdentityMissing(t *testing.T) {
	assert.Nil(t, GetIdentity(context.Background()))
}

func TestNoOpAuthenticator(t *testing.T) {
	authenticator := NewNoOpAuthenticator()
	assert.Equal(t, "noop", authenticator.Name())

	r := httptest.NewRequest("POST", "/api/v1/wallet/deposit", nil)
	_, err := authenticator.AuthenticateHTTP(r)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	r.Header.Set(OwnerHeader, "alice")
	identity, err := authenticator.AuthenticateHTTP(r)
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Subject)
}

// signTestToken creates an ES256 token for JWT authenticator tests.
func signTestToken(t *testing.T, key *ecdsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestJWTAuthenticator(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	authenticator, err := NewJWTAuthenticator(&JWTConfig{
		PublicKey: &key.PublicKey,
		Issuer:    "smartwallet",
	})
	require.NoError(t, err)
	assert.Equal(t, "jwt", authenticator.Name())

	tokenString := signTestToken(t, key, jwt.MapClaims{
		"sub": "alice",
		"iss": "smartwallet",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	r := httptest.NewRequest("POST", "/api/v1/wallet/deposit", nil)
	r.Header.Set("Authorization", "Bearer "+tokenString)

	identity, err := authenticator.AuthenticateHTTP(r)
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Subject)
}

func TestJWTAuthenticatorRejections(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	otherKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	authenticator, err := NewJWTAuthenticator(&JWTConfig{
		PublicKey: &key.PublicKey,
		Issuer:    "smartwallet",
	})
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{
			name: "WrongKey",
			token: signTestToken(t, otherKey, jwt.MapClaims{
				"sub": "alice",
				"iss": "smartwallet",
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
		},
		{
			name: "Expired",
			token: signTestToken(t, key, jwt.MapClaims{
				"sub": "alice",
				"iss": "smartwallet",
				"exp": time.Now().Add(-time.Hour).Unix(),
			}),
		},
		{
			name: "WrongIssuer",
			token: signTestToken(t, key, jwt.MapClaims{
				"sub": "alice",
				"iss": "somebody-else",
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
		},
		{
			name: "MissingSubject",
			token: signTestToken(t, key, jwt.MapClaims{
				"iss": "smartwallet",
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
		},
		{
			name:  "Garbage",
			token: "not-a-token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/api/v1/wallet/deposit", nil)
			r.Header.Set("Authorization", "Bearer "+tt.token)

			_, err := authenticator.AuthenticateHTTP(r)
			assert.ErrorIs(t, err, ErrUnauthenticated)
		})
	}
}

func TestJWTAuthenticatorMissingHeader(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	authenticator, err := NewJWTAuthenticator(&JWTConfig{PublicKey: &key.PublicKey})
	require.NoError(t, err)

	r := httptest.NewRequest("POST", "/api/v1/wallet/deposit", nil)
	_, err = authenticator.AuthenticateHTTP(r)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestNewJWTAuthenticatorValidation(t *testing.T) {
	_, err := NewJWTAuthenticator(nil)
	assert.Error(t, err)

	_, err = NewJWTAuthenticator(&JWTConfig{})
	assert.Error(t, err)
}

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

package config

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePublicKeyPEM(t *testing.T) string {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "jwt-public.pem")
	pemData := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	require.NoError(t, os.WriteFile(path, pemData, 0600))
	return path
}

func TestCreateAuthenticatorDisabled(t *testing.T) {
	cfg := &AuthConfig{Enabled: false}
	authenticator, err := cfg.CreateAuthenticator()
	require.NoError(t, err)
	assert.Equal(t, "noop", authenticator.Name())
}

func TestCreateAuthenticatorNoop(t *testing.T) {
	cfg := &AuthConfig{Enabled: true, Type: "noop"}
	authenticator, err := cfg.CreateAuthenticator()
	require.NoError(t, err)
	assert.Equal(t, "noop", authenticator.Name())
}

func TestCreateAuthenticatorJWT(t *testing.T) {
	cfg := &AuthConfig{
		Enabled: true,
		Type:    "jwt",
		JWT: &JWTConfig{
			PublicKeyFile: writePublicKeyPEM(t),
			Issuer:        "smartwallet",
		},
	}
	authenticator, err := cfg.CreateAuthenticator()
	require.NoError(t, err)
	assert.Equal(t, "jwt", authenticator.Name())
}

func TestCreateAuthenticatorJWTMissingKey(t *testing.T) {
	cfg := &AuthConfig{Enabled: true, Type: "jwt", JWT: &JWTConfig{}}
	_, err := cfg.CreateAuthenticator()
	assert.Error(t, err)
}

func TestCreateAuthenticatorJWTBadPEM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.pem")
	require.NoError(t, os.WriteFile(path, []byte("not a pem file"), 0600))

	cfg := &AuthConfig{Enabled: true, Type: "jwt", JWT: &JWTConfig{PublicKeyFile: path}}
	_, err := cfg.CreateAuthenticator()
	assert.Error(t, err)
}

func TestCreateAuthenticatorUnknownType(t *testing.T) {
	cfg := &AuthConfig{Enabled: true, Type: "kerberos"}
	_, err := cfg.CreateAuthenticator()
	assert.Error(t, err)
}

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
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/jeremyhahn/go-smartwallet/pkg/adapters/auth"
)

// CreateAuthenticator creates an authenticator from the configuration
func (cfg *AuthConfig) CreateAuthenticator() (auth.Authenticator, error) {
	if !cfg.Enabled {
		return auth.NewNoOpAuthenticator(), nil
	}

	switch cfg.Type {
	case "noop", "none", "":
		return auth.NewNoOpAuthenticator(), nil

	case "jwt":
		return cfg.createJWTAuthenticator()

	default:
		return nil, fmt.Errorf("unknown auth type: %s", cfg.Type)
	}
}

// createJWTAuthenticator creates a JWT authenticator from config
func (cfg *AuthConfig) createJWTAuthenticator() (auth.Authenticator, error) {
	if cfg.JWT == nil || cfg.JWT.PublicKeyFile == "" {
		return nil, fmt.Errorf("jwt public_key_file is required")
	}

	// #nosec G304 - Key file path from trusted config
	pemData, err := os.ReadFile(cfg.JWT.PublicKeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read JWT public key: %w", err)
	}

	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, fmt.Errorf("failed to decode JWT public key PEM")
	}

	publicKey, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT public key: %w", err)
	}

	return auth.NewJWTAuthenticator(&auth.JWTConfig{
		PublicKey: publicKey,
		Issuer:    cfg.JWT.Issuer,
		Audience:  cfg.JWT.Audience,
	})
}

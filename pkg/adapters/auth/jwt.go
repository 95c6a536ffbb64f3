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
	"crypto"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// JWTAuthenticator authenticates requests using bearer JWT tokens. The
// token subject names the wallet owner the caller acts as.
type JWTAuthenticator struct {
	// publicKey is used to verify token signatures
	publicKey crypto.PublicKey
	// issuer is the expected issuer claim
	issuer string
	// audience is the expected audience claim
	audience string
}

// JWTConfig configures the JWT authenticator.
type JWTConfig struct {
	// PublicKey is the key used to verify token signatures (required)
	PublicKey crypto.PublicKey
	// Issuer is the expected issuer claim (optional, skips validation if empty)
	Issuer string
	// Audience is the expected audience claim (optional, skips validation if empty)
	Audience string
}

// NewJWTAuthenticator creates a new JWT authenticator.
func NewJWTAuthenticator(config *JWTConfig) (*JWTAuthenticator, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if config.PublicKey == nil {
		return nil, fmt.Errorf("public key is required")
	}

	return &JWTAuthenticator{
		publicKey: config.PublicKey,
		issuer:    config.Issuer,
		audience:  config.Audience,
	}, nil
}

// Name returns the authenticator's name.
func (a *JWTAuthenticator) Name() string {
	return "jwt"
}

// AuthenticateHTTP authenticates an HTTP request using a bearer JWT token.
func (a *JWTAuthenticator) AuthenticateHTTP(r *http.Request) (*Identity, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("%w: no authorization header", ErrUnauthenticated)
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == "" {
		return nil, fmt.Errorf("%w: no token provided", ErrUnauthenticated)
	}

	return a.validateToken(tokenString)
}

// validateToken parses and validates a JWT token string.
func (a *JWTAuthenticator) validateToken(tokenString string) (*Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"ES256", "RS256", "EdDSA"}),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	if a.audience != "" {
		opts = append(opts, jwt.WithAudience(a.audience))
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return a.publicKey, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected claims type", ErrUnauthenticated)
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, fmt.Errorf("%w: missing subject claim", ErrUnauthenticated)
	}

	return &Identity{
		Subject: subject,
		Claims:  claims,
	}, nil
}

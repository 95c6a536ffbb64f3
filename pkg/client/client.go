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

// Package client provides a client library for the smartwallet REST API.
// Byte fields travel as base64url strings on the wire. Server-side
// verification faults are surfaced as *webauthn.FaultError so callers can
// distinguish protocol faults from transport errors, mirroring the local
// verifier contract.
package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strings"

	"github.com/go-webauthn/webauthn/protocol"
)

var (
	// ErrConnectionFailed is returned when the connection to the server fails
	ErrConnectionFailed = errors.New("connection failed")
	// ErrNotConnected is returned when trying to use a client that is not connected
	ErrNotConnected = errors.New("client not connected")
)

// Config configures the smartwallet client.
type Config struct {
	// Address is the server address: http://host:port or https://host:port
	Address string

	// TLSEnabled enables TLS
	TLSEnabled bool

	// TLSInsecureSkipVerify skips TLS certificate verification (not recommended)
	TLSInsecureSkipVerify bool

	// TLSCertFile is the path to the client certificate file (for mTLS)
	TLSCertFile string

	// TLSKeyFile is the path to the client key file (for mTLS)
	TLSKeyFile string

	// TLSCAFile is the path to the CA certificate file
	TLSCAFile string

	// JWTToken is sent as a Bearer token for authenticated operations
	JWTToken string

	// Headers are additional HTTP headers to include in requests
	Headers map[string]string
}

// Client is the interface for communicating with the smartwallet server.
type Client interface {
	// Connect establishes a connection to the server.
	Connect(ctx context.Context) error

	// Close closes the connection to the server.
	Close() error

	// Health checks the health of the server.
	Health(ctx context.Context) (*HealthResponse, error)

	// VerifyAssertion verifies a webauthn assertion against a public key.
	VerifyAssertion(ctx context.Context, req *VerifyAssertionRequest) (*VerifyAssertionResponse, error)

	// RegisterSigner registers a passkey credential for a wallet owner.
	RegisterSigner(ctx context.Context, req *RegisterSignerRequest) (*OperationResponse, error)

	// Deposit moves tokens from the owner's account into custody.
	Deposit(ctx context.Context, req *DepositRequest) (*OperationResponse, error)

	// Payment moves deposited funds out of custody to a destination.
	Payment(ctx context.Context, req *PaymentRequest) (*OperationResponse, error)

	// Balance returns the owner's deposited balance for an asset.
	Balance(ctx context.Context, owner, asset string) (*BalanceResponse, error)

	// WalletInfo describes the wallet service.
	WalletInfo(ctx context.Context) (*WalletInfoResponse, error)
}

// New creates a new smartwallet client with the specified configuration.
func New(cfg *Config) (Client, error) {
	if cfg == nil {
		cfg = &Config{Address: "http://localhost:8443"}
	}
	if cfg.Address == "" {
		cfg.Address = "http://localhost:8443"
	}
	return newRESTClient(cfg)
}

// NewFromURL creates a new client from a URL string. An https scheme
// enables TLS; a bare host:port is treated as plain http.
func NewFromURL(serverURL string) (Client, error) {
	if serverURL == "" {
		return New(nil)
	}

	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	cfg := &Config{Address: serverURL}
	switch u.Scheme {
	case "http":
	case "https":
		cfg.TLSEnabled = true
	default:
		if strings.Contains(serverURL, "://") {
			return nil, fmt.Errorf("invalid server URL scheme: %s", u.Scheme)
		}
		cfg.Address = "http://" + serverURL
	}

	return New(cfg)
}

// Request and Response types

// HealthResponse contains health check information.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Message string `json:"message,omitempty"`
}

// VerifyAssertionRequest carries a signature payload, the signer's public
// key, and the assertion to check.
type VerifyAssertionRequest struct {
	SignaturePayload  protocol.URLEncodedBase64 `json:"signature_payload"`
	PublicKey         protocol.URLEncodedBase64 `json:"public_key"`
	Signature         protocol.URLEncodedBase64 `json:"signature"`
	AuthenticatorData protocol.URLEncodedBase64 `json:"authenticator_data"`
	ClientDataJSON    protocol.URLEncodedBase64 `json:"client_data_json"`
}

// VerifyAssertionResponse contains the verification result.
type VerifyAssertionResponse struct {
	Valid bool `json:"valid"`
}

// RegisterSignerRequest registers a passkey credential for an owner.
type RegisterSignerRequest struct {
	Owner     string                    `json:"owner"`
	PublicKey protocol.URLEncodedBase64 `json:"public_key"`
	RPIDHash  protocol.URLEncodedBase64 `json:"rp_id_hash"`
}

// DepositRequest moves tokens into custody. Amount is a base-10 string to
// carry arbitrary-precision values.
type DepositRequest struct {
	Owner             string                    `json:"owner"`
	Asset             string                    `json:"asset"`
	Amount            string                    `json:"amount"`
	SignaturePayload  protocol.URLEncodedBase64 `json:"signature_payload"`
	Signature         protocol.URLEncodedBase64 `json:"signature"`
	AuthenticatorData protocol.URLEncodedBase64 `json:"authenticator_data"`
	ClientDataJSON    protocol.URLEncodedBase64 `json:"client_data_json"`
}

// PaymentRequest moves deposited funds to a destination account.
type PaymentRequest struct {
	Owner             string                    `json:"owner"`
	Destination       string                    `json:"destination"`
	Asset             string                    `json:"asset"`
	Amount            string                    `json:"amount"`
	SignaturePayload  protocol.URLEncodedBase64 `json:"signature_payload"`
	Signature         protocol.URLEncodedBase64 `json:"signature"`
	AuthenticatorData protocol.URLEncodedBase64 `json:"authenticator_data"`
	ClientDataJSON    protocol.URLEncodedBase64 `json:"client_data_json"`
}

// OperationResponse is the outcome of a wallet operation.
type OperationResponse struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

// BalanceResponse contains a deposited balance as a base-10 string.
type BalanceResponse struct {
	Owner   string `json:"owner"`
	Asset   string `json:"asset"`
	Balance string `json:"balance"`
}

// BigBalance parses the balance into a big.Int.
func (r *BalanceResponse) BigBalance() (*big.Int, error) {
	value, ok := new(big.Int).SetString(r.Balance, 10)
	if !ok {
		return nil, fmt.Errorf("invalid balance value: %q", r.Balance)
	}
	return value, nil
}

// WalletInfoResponse describes the wallet service.
type WalletInfoResponse struct {
	Name           string   `json:"name"`
	Version        string   `json:"version"`
	CustodyAccount string   `json:"custody_account"`
	Operations     []string `json:"operations"`
}

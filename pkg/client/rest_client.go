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

package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/jeremyhahn/go-smartwallet/pkg/webauthn"
)

// restClient implements the Client interface using HTTP/REST.
type restClient struct {
	config     *Config
	httpClient *http.Client
	baseURL    string
	connected  bool
}

// newRESTClient creates a new REST client.
func newRESTClient(cfg *Config) (*restClient, error) {
	// Parse and normalize the base URL
	baseURL := cfg.Address
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		if cfg.TLSEnabled {
			baseURL = "https://" + baseURL
		} else {
			baseURL = "http://" + baseURL
		}
	}

	// Remove trailing slash
	baseURL = strings.TrimSuffix(baseURL, "/")

	return &restClient{
		config:  cfg,
		baseURL: baseURL,
	}, nil
}

// Connect establishes a connection to the smartwallet server.
func (c *restClient) Connect(ctx context.Context) error {
	// Create TLS config if needed
	var tlsConfig *tls.Config
	if c.config.TLSEnabled {
		tlsConfig = &tls.Config{
			InsecureSkipVerify: c.config.TLSInsecureSkipVerify,
			MinVersion:         tls.VersionTLS12,
		}

		// Load CA certificate if specified
		if c.config.TLSCAFile != "" {
			caCert, err := os.ReadFile(c.config.TLSCAFile)
			if err != nil {
				return fmt.Errorf("failed to read CA certificate: %w", err)
			}
			caCertPool := x509.NewCertPool()
			if !caCertPool.AppendCertsFromPEM(caCert) {
				return fmt.Errorf("failed to parse CA certificate")
			}
			tlsConfig.RootCAs = caCertPool
		}

		// Load client certificate if specified (mTLS)
		if c.config.TLSCertFile != "" && c.config.TLSKeyFile != "" {
			cert, err := tls.LoadX509KeyPair(c.config.TLSCertFile, c.config.TLSKeyFile)
			if err != nil {
				return fmt.Errorf("failed to load client certificate: %w", err)
			}
			tlsConfig.Certificates = []tls.Certificate{cert}
		}
	}

	// Create HTTP client
	transport := &http.Transport{
		TLSClientConfig: tlsConfig,
	}

	c.httpClient = &http.Client{
		Transport: transport,
	}

	// Test connection with health check
	_, err := c.Health(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	c.connected = true
	return nil
}

// Close closes the REST client.
func (c *restClient) Close() error {
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
	c.connected = false
	return nil
}

// errorResponse is the server's error body. FaultCode is set for
// verification faults so the client can reconstruct the typed error.
type errorResponse struct {
	Error     string `json:"error"`
	FaultCode uint32 `json:"fault_code,omitempty"`
}

// doRequest performs an HTTP request to the REST server.
func (c *restClient) doRequest(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	if c.httpClient == nil {
		return nil, ErrNotConnected
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	reqURL := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// Add JWT token if configured
	if c.config.JWTToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.JWTToken)
	}

	// Add custom headers
	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Printf("failed to close response body: %v", closeErr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp errorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.FaultCode != 0 {
			return nil, &webauthn.FaultError{
				Code:   webauthn.FaultCode(errResp.FaultCode),
				Reason: errResp.Error,
			}
		}
		if errResp.Error != "" {
			return nil, fmt.Errorf("server error: %s", errResp.Error)
		}
		return nil, fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// Health checks the health of the server.
func (c *restClient) Health(ctx context.Context) (*HealthResponse, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}

	var resp HealthResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &resp, nil
}

// VerifyAssertion verifies a webauthn assertion against a public key.
func (c *restClient) VerifyAssertion(ctx context.Context, req *VerifyAssertionRequest) (*VerifyAssertionResponse, error) {
	data, err := c.doRequest(ctx, http.MethodPost, "/api/v1/verify", req)
	if err != nil {
		return nil, err
	}

	var resp VerifyAssertionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &resp, nil
}

// RegisterSigner registers a passkey credential for a wallet owner.
func (c *restClient) RegisterSigner(ctx context.Context, req *RegisterSignerRequest) (*OperationResponse, error) {
	data, err := c.doRequest(ctx, http.MethodPost, "/api/v1/signers", req)
	if err != nil {
		return nil, err
	}

	var resp OperationResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &resp, nil
}

// Deposit moves tokens from the owner's account into custody.
func (c *restClient) Deposit(ctx context.Context, req *DepositRequest) (*OperationResponse, error) {
	data, err := c.doRequest(ctx, http.MethodPost, "/api/v1/wallet/deposit", req)
	if err != nil {
		return nil, err
	}

	var resp OperationResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &resp, nil
}

// Payment moves deposited funds out of custody to a destination.
func (c *restClient) Payment(ctx context.Context, req *PaymentRequest) (*OperationResponse, error) {
	data, err := c.doRequest(ctx, http.MethodPost, "/api/v1/wallet/payment", req)
	if err != nil {
		return nil, err
	}

	var resp OperationResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &resp, nil
}

// Balance returns the owner's deposited balance for an asset.
func (c *restClient) Balance(ctx context.Context, owner, asset string) (*BalanceResponse, error) {
	path := fmt.Sprintf("/api/v1/wallet/%s/balances/%s", url.PathEscape(owner), url.PathEscape(asset))
	data, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp BalanceResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &resp, nil
}

// WalletInfo describes the wallet service.
func (c *restClient) WalletInfo(ctx context.Context) (*WalletInfoResponse, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/api/v1/wallet/info", nil)
	if err != nil {
		return nil, err
	}

	var resp WalletInfoResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &resp, nil
}

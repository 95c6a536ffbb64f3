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

package rest

import (
	"github.com/go-webauthn/webauthn/protocol"
)

// ErrorResponse is the JSON body for error responses. FaultCode is set
// only for assertion verification faults.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	FaultCode uint32 `json:"fault_code,omitempty"`
	Code      int    `json:"code"`
}

// VerifyRequest carries an assertion to verify against a public key.
type VerifyRequest struct {
	SignaturePayload  protocol.URLEncodedBase64 `json:"signature_payload"`
	PublicKey         protocol.URLEncodedBase64 `json:"public_key"`
	Signature         protocol.URLEncodedBase64 `json:"signature"`
	AuthenticatorData protocol.URLEncodedBase64 `json:"authenticator_data"`
	ClientDataJSON    protocol.URLEncodedBase64 `json:"client_data_json"`
}

// VerifyResponse contains the verification result.
type VerifyResponse struct {
	Valid bool `json:"valid"`
}

// RegisterSignerRequest registers a passkey credential for an owner.
type RegisterSignerRequest struct {
	Owner     string                    `json:"owner"`
	PublicKey protocol.URLEncodedBase64 `json:"public_key"`
	RPIDHash  protocol.URLEncodedBase64 `json:"rp_id_hash"`
}

// SignerResponse describes a registered credential.
type SignerResponse struct {
	Owner      string                    `json:"owner"`
	Registered bool                      `json:"registered"`
	PublicKey  protocol.URLEncodedBase64 `json:"public_key,omitempty"`
}

// DepositRequest moves tokens from the owner's account into custody.
// Amount is a base-10 string to carry arbitrary-precision values.
type DepositRequest struct {
	Owner             string                    `json:"owner"`
	Asset             string                    `json:"asset"`
	Amount            string                    `json:"amount"`
	SignaturePayload  protocol.URLEncodedBase64 `json:"signature_payload"`
	Signature         protocol.URLEncodedBase64 `json:"signature"`
	AuthenticatorData protocol.URLEncodedBase64 `json:"authenticator_data"`
	ClientDataJSON    protocol.URLEncodedBase64 `json:"client_data_json"`
}

// PaymentRequest moves deposited funds out of custody to a destination.
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

// HealthResponse is the legacy /health body.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Message string `json:"message,omitempty"`
}

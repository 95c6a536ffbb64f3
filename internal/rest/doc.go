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

// Package rest provides the REST API server for the smartwallet.
//
// # API Endpoints
//
// Health:
//   - GET /health - Legacy health status
//   - GET /health/live - Kubernetes liveness probe
//   - GET /health/ready - Kubernetes readiness probe
//   - GET /health/startup - Kubernetes startup probe
//
// Metrics:
//   - GET /metrics - Prometheus metrics (when enabled)
//
// Verification:
//   - POST /api/v1/verify - Verify a webauthn assertion against a public key
//
// Wallet:
//   - POST /api/v1/signers - Register a passkey credential for an owner
//   - GET /api/v1/signers/{owner} - Look up a registered credential
//   - POST /api/v1/wallet/deposit - Move tokens into custody
//   - POST /api/v1/wallet/payment - Pay deposited funds to a destination
//   - GET /api/v1/wallet/{owner}/balances/{asset} - Deposited balance
//   - GET /api/v1/wallet/info - Service description
//
// All requests and responses use JSON. Byte fields (public keys,
// signatures, authenticator data, client data) are base64url strings.
//
// # Error Handling
//
//   - 200 OK - Request processed; wallet operations carry {"accepted": bool}
//     in the body, with a reason when rejected
//   - 400 Bad Request - Malformed request body or parameters
//   - 401 Unauthorized - Authentication failed
//   - 403 Forbidden - Caller identity does not cover the owner
//   - 404 Not Found - Unknown signer or route
//   - 422 Unprocessable Entity - Assertion verification fault; the body
//     carries the numeric fault_code
//   - 429 Too Many Requests - Caller exceeded the configured rate limit
//   - 500 Internal Server Error - Server error
//
// Error responses include a JSON body:
//
//	{
//	  "error": "webauthn: challenge mismatch",
//	  "fault_code": 3114,
//	  "code": 422
//	}
package rest

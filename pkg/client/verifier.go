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
	"context"

	"github.com/jeremyhahn/go-smartwallet/pkg/webauthn"
)

// RemoteVerifier adapts a Client to the webauthn.Verifier interface so the
// wallet can delegate assertion verification to a remote verifier service.
// Fault codes returned by the server come back as *webauthn.FaultError,
// preserving the abort-versus-reject contract of the local verifier.
type RemoteVerifier struct {
	client Client
}

// NewRemoteVerifier wraps an already-connected Client.
func NewRemoteVerifier(c Client) *RemoteVerifier {
	return &RemoteVerifier{client: c}
}

func (v *RemoteVerifier) Verify(ctx context.Context, signaturePayload, publicKey []byte, sigData webauthn.SigData) (bool, error) {
	resp, err := v.client.VerifyAssertion(ctx, &VerifyAssertionRequest{
		SignaturePayload:  signaturePayload,
		PublicKey:         publicKey,
		Signature:         sigData.Signature,
		AuthenticatorData: sigData.AuthenticatorData,
		ClientDataJSON:    sigData.ClientDataJSON,
	})
	if err != nil {
		return false, err
	}
	return resp.Valid, nil
}

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

package webauthn

import "encoding/json"

// clientDataDocument mirrors the client data JSON wire format. Pointer
// fields distinguish absent fields from empty strings.
type clientDataDocument struct {
	Challenge *string `json:"challenge"`
	Type      *string `json:"type"`
}

// ParseClientData extracts the challenge and type fields from the untrusted
// client data JSON. Extra fields are ignored. Returns ErrClientDataTooLong
// when the document exceeds ClientDataMaxLen and ErrJSONParse when the bytes
// are not a JSON object carrying string "challenge" and "type" fields.
func ParseClientData(clientDataJSON []byte) (*ClientData, error) {
	if len(clientDataJSON) > ClientDataMaxLen {
		return nil, ErrClientDataTooLong
	}

	var doc clientDataDocument
	if err := json.Unmarshal(clientDataJSON, &doc); err != nil {
		return nil, ErrJSONParse
	}
	if doc.Challenge == nil || doc.Type == nil {
		return nil, ErrJSONParse
	}

	return &ClientData{
		Challenge: *doc.Challenge,
		Type:      *doc.Type,
	}, nil
}

// AuthenticatorFlags extracts the flags byte from the fixed-layout
// authenticator data blob. Returns ErrAuthDataFormatInvalid when the blob is
// shorter than the minimum layout of RP ID hash, flags byte, and signature
// counter. The counter is not validated here.
func AuthenticatorFlags(authenticatorData []byte) (byte, error) {
	if len(authenticatorData) < AuthenticatorDataMinLen {
		return 0, ErrAuthDataFormatInvalid
	}
	return authenticatorData[flagsIndex], nil
}

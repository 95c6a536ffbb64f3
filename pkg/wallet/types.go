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

package wallet

import (
	"math/big"

	"github.com/jeremyhahn/go-smartwallet/pkg/webauthn"
)

// PasskeyCredential is the signing identity registered for a wallet owner.
// PublicKey is the uncompressed secp256r1 point (0x04 || X || Y) and
// RPIDHash is the SHA-256 of the relying party ID the credential was
// created under. Both are fixed-width by construction; records that do not
// fit are unusable and never surface through the store.
type PasskeyCredential struct {
	Owner     string
	PublicKey [webauthn.PublicKeyLen]byte
	RPIDHash  [32]byte
}

// DepositRequest moves Amount of Asset from the owner's external token
// account into custody, crediting the owner's wallet balance. The
// assertion in SigData must cover SignaturePayload.
type DepositRequest struct {
	Owner            string
	Asset            string
	Amount           *big.Int
	SignaturePayload []byte
	SigData          webauthn.SigData
}

// PaymentRequest moves Amount of Asset out of the owner's wallet balance
// to Destination's external token account.
type PaymentRequest struct {
	Owner            string
	Destination      string
	Asset            string
	Amount           *big.Int
	SignaturePayload []byte
	SigData          webauthn.SigData
}

// Info describes the wallet service build for the info endpoint.
type Info struct {
	Name           string   `json:"name"`
	Version        string   `json:"version"`
	CustodyAccount string   `json:"custody_account"`
	Operations     []string `json:"operations"`
}

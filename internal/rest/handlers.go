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
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jeremyhahn/go-smartwallet/pkg/health"
	"github.com/jeremyhahn/go-smartwallet/pkg/wallet"
	"github.com/jeremyhahn/go-smartwallet/pkg/webauthn"
)

// HandlerContext holds the dependencies shared by all request handlers.
type HandlerContext struct {
	wallet        *wallet.Service
	verifier      webauthn.Verifier
	version       string
	HealthChecker *health.Checker
}

// NewHandlerContext creates a handler context.
func NewHandlerContext(walletService *wallet.Service, verifier webauthn.Verifier, version string) *HandlerContext {
	return &HandlerContext{
		wallet:   walletService,
		verifier: verifier,
		version:  version,
	}
}

// SetHealthChecker sets the health checker used by probe handlers.
func (h *HandlerContext) SetHealthChecker(checker *health.Checker) {
	h.HealthChecker = checker
}

// decodeJSON decodes a request body, rejecting unknown garbage early.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// parseAmount parses a base-10 amount string. Sign and zero checks are
// the wallet's business rules, not transport validation, so only syntax
// is enforced here.
func parseAmount(value string) (*big.Int, error) {
	if value == "" {
		return nil, nil
	}
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("%w: not a base-10 integer: %q", ErrInvalidAmount, value)
	}
	return amount, nil
}

// VerifyHandler handles POST /api/v1/verify.
func (h *HandlerContext) VerifyHandler(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}

	valid, err := h.verifier.Verify(r.Context(), req.SignaturePayload, req.PublicKey, webauthn.SigData{
		Signature:         req.Signature,
		AuthenticatorData: req.AuthenticatorData,
		ClientDataJSON:    req.ClientDataJSON,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, VerifyResponse{Valid: valid}, http.StatusOK)
}

// RegisterSignerHandler handles POST /api/v1/signers.
func (h *HandlerContext) RegisterSignerHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterSignerRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}
	if req.Owner == "" {
		handleError(w, ErrMissingOwner)
		return
	}

	result, err := h.wallet.RegisterSigner(r.Context(), req.Owner, req.PublicKey, req.RPIDHash)
	if err != nil {
		handleError(w, err)
		return
	}

	status := http.StatusCreated
	if !result.Accepted {
		status = http.StatusOK
	}
	writeJSON(w, OperationResponse{Accepted: result.Accepted, Reason: string(result.Reason)}, status)
}

// GetSignerHandler handles GET /api/v1/signers/{owner}.
func (h *HandlerContext) GetSignerHandler(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	if owner == "" {
		handleError(w, ErrMissingOwner)
		return
	}

	publicKey, err := h.wallet.PasskeyPublicKey(r.Context(), owner)
	if err != nil {
		if errors.Is(err, wallet.ErrSignerNotRegistered) {
			writeJSON(w, SignerResponse{Owner: owner, Registered: false}, http.StatusNotFound)
			return
		}
		handleError(w, err)
		return
	}

	writeJSON(w, SignerResponse{
		Owner:      owner,
		Registered: true,
		PublicKey:  publicKey,
	}, http.StatusOK)
}

// DepositHandler handles POST /api/v1/wallet/deposit.
func (h *HandlerContext) DepositHandler(w http.ResponseWriter, r *http.Request) {
	var req DepositRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}
	if req.Owner == "" {
		handleError(w, ErrMissingOwner)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		handleError(w, err)
		return
	}

	result, err := h.wallet.Deposit(r.Context(), wallet.DepositRequest{
		Owner:            req.Owner,
		Asset:            req.Asset,
		Amount:           amount,
		SignaturePayload: req.SignaturePayload,
		SigData: webauthn.SigData{
			Signature:         req.Signature,
			AuthenticatorData: req.AuthenticatorData,
			ClientDataJSON:    req.ClientDataJSON,
		},
	})
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, OperationResponse{Accepted: result.Accepted, Reason: string(result.Reason)}, http.StatusOK)
}

// PaymentHandler handles POST /api/v1/wallet/payment.
func (h *HandlerContext) PaymentHandler(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}
	if req.Owner == "" {
		handleError(w, ErrMissingOwner)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		handleError(w, err)
		return
	}

	result, err := h.wallet.Payment(r.Context(), wallet.PaymentRequest{
		Owner:            req.Owner,
		Destination:      req.Destination,
		Asset:            req.Asset,
		Amount:           amount,
		SignaturePayload: req.SignaturePayload,
		SigData: webauthn.SigData{
			Signature:         req.Signature,
			AuthenticatorData: req.AuthenticatorData,
			ClientDataJSON:    req.ClientDataJSON,
		},
	})
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, OperationResponse{Accepted: result.Accepted, Reason: string(result.Reason)}, http.StatusOK)
}

// BalanceHandler handles GET /api/v1/wallet/{owner}/balances/{asset}.
func (h *HandlerContext) BalanceHandler(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	asset := chi.URLParam(r, "asset")
	if owner == "" {
		handleError(w, ErrMissingOwner)
		return
	}

	balance, err := h.wallet.Balance(r.Context(), owner, asset)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, BalanceResponse{
		Owner:   owner,
		Asset:   asset,
		Balance: balance.String(),
	}, http.StatusOK)
}

// WalletInfoHandler handles GET /api/v1/wallet/info.
func (h *HandlerContext) WalletInfoHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.wallet.WalletInfo(), http.StatusOK)
}

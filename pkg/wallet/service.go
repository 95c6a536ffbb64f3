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
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/jeremyhahn/go-smartwallet/pkg/adapters/logger"
	"github.com/jeremyhahn/go-smartwallet/pkg/ledger"
	"github.com/jeremyhahn/go-smartwallet/pkg/metrics"
	"github.com/jeremyhahn/go-smartwallet/pkg/storage"
	"github.com/jeremyhahn/go-smartwallet/pkg/token"
	"github.com/jeremyhahn/go-smartwallet/pkg/webauthn"
)

// ServiceName identifies this wallet service in Info responses and the
// default custody account.
const ServiceName = "go-smartwallet"

// Version is set at build time via -ldflags.
var Version = "dev"

// TransactionalBackend is the storage the wallet requires: plain reads for
// accessors plus atomic units of work for mutating flows.
type TransactionalBackend interface {
	storage.Backend
	storage.Transactional
}

// ServiceParams configures a wallet Service. Credentials, Storage,
// Verifier, Tokens and Logger are required; Authorizer, Ledger and
// CustodyAccount default when unset.
type ServiceParams struct {
	Credentials    CredentialStore
	Storage        TransactionalBackend
	Ledger         *ledger.Engine
	Verifier       webauthn.Verifier
	Authorizer     Authorizer
	Tokens         token.Service
	CustodyAccount string
	Logger         logger.Logger
}

// Service is the custodial wallet. Deposits and payments pass through the
// full gate sequence: assertion verification, caller authorization, and
// balance checks, with all ledger writes staged in one transaction.
type Service struct {
	credentials CredentialStore
	storage     TransactionalBackend
	ledger      *ledger.Engine
	verifier    webauthn.Verifier
	authorizer  Authorizer
	tokens      token.Service
	custody     string
	logger      logger.Logger
}

// NewService creates a wallet Service from params.
func NewService(params ServiceParams) (*Service, error) {
	if params.Credentials == nil {
		return nil, errors.New("wallet: credential store is required")
	}
	if params.Storage == nil {
		return nil, errors.New("wallet: storage backend is required")
	}
	if params.Verifier == nil {
		return nil, errors.New("wallet: verifier is required")
	}
	if params.Tokens == nil {
		return nil, errors.New("wallet: token service is required")
	}
	if params.Logger == nil {
		return nil, errors.New("wallet: logger is required")
	}
	if params.Ledger == nil {
		params.Ledger = ledger.NewEngine()
	}
	if params.Authorizer == nil {
		params.Authorizer = NewIdentityAuthorizer()
	}
	if params.CustodyAccount == "" {
		params.CustodyAccount = ServiceName
	}
	return &Service{
		credentials: params.Credentials,
		storage:     params.Storage,
		ledger:      params.Ledger,
		verifier:    params.Verifier,
		authorizer:  params.Authorizer,
		tokens:      params.Tokens,
		custody:     params.CustodyAccount,
		logger:      params.Logger,
	}, nil
}

// RegisterSigner stores a passkey credential for owner. The public key
// must be the 65-byte uncompressed secp256r1 point and rpIDHash the
// 32-byte SHA-256 of the relying party ID; anything else is rejected
// since such a credential could never verify.
func (s *Service) RegisterSigner(ctx context.Context, owner string, publicKey, rpIDHash []byte) (Result, error) {
	start := time.Now()

	if len(publicKey) != webauthn.PublicKeyLen {
		s.logger.Info("register rejected",
			logger.String("owner", owner),
			logger.String("reason", string(ReasonInvalidPublicKey)),
			logger.Int("public_key_len", len(publicKey)))
		metrics.RecordOperation(metrics.OpRegister, metrics.OutcomeRejected, time.Since(start))
		return rejected(ReasonInvalidPublicKey), nil
	}
	if len(rpIDHash) != 32 {
		s.logger.Info("register rejected",
			logger.String("owner", owner),
			logger.String("reason", string(ReasonInvalidRPIDHash)),
			logger.Int("rp_id_hash_len", len(rpIDHash)))
		metrics.RecordOperation(metrics.OpRegister, metrics.OutcomeRejected, time.Since(start))
		return rejected(ReasonInvalidRPIDHash), nil
	}

	cred := &PasskeyCredential{Owner: owner}
	copy(cred.PublicKey[:], publicKey)
	copy(cred.RPIDHash[:], rpIDHash)
	if err := s.credentials.Put(ctx, cred); err != nil {
		metrics.RecordOperation(metrics.OpRegister, metrics.OutcomeFault, time.Since(start))
		return rejected(ReasonNone), err
	}

	s.logger.Info("signer registered", logger.String("owner", owner))
	metrics.RecordOperation(metrics.OpRegister, metrics.OutcomeAccepted, time.Since(start))
	return accepted(), nil
}

// IsRegistered reports whether owner has a passkey credential.
func (s *Service) IsRegistered(ctx context.Context, owner string) (bool, error) {
	return s.credentials.Exists(ctx, owner)
}

// PasskeyPublicKey returns the registered 65-byte public key for owner.
func (s *Service) PasskeyPublicKey(ctx context.Context, owner string) ([]byte, error) {
	cred, err := s.credentials.Get(ctx, owner)
	if err != nil {
		return nil, err
	}
	key := make([]byte, webauthn.PublicKeyLen)
	copy(key, cred.PublicKey[:])
	return key, nil
}

// Balance returns the owner's deposited balance for the asset. An owner
// with no ledger entry has balance zero.
func (s *Service) Balance(ctx context.Context, owner, asset string) (*big.Int, error) {
	start := time.Now()
	balance, err := s.ledger.Balance(s.storage, owner, asset)
	if err != nil {
		metrics.RecordOperation(metrics.OpBalance, metrics.OutcomeFault, time.Since(start))
		return nil, err
	}
	metrics.RecordOperation(metrics.OpBalance, metrics.OutcomeAccepted, time.Since(start))
	return balance, nil
}

// Deposit moves req.Amount from the owner's token account into custody
// and credits the owner's wallet balance. The result is rejected (not an
// error) when a business rule fails: non-positive amount, unregistered
// signer, or an owner token balance below the amount. Assertion faults
// and authorization failures abort with an error and no side effect.
func (s *Service) Deposit(ctx context.Context, req DepositRequest) (Result, error) {
	start := time.Now()
	log := s.logger.With(
		logger.String("operation", "deposit"),
		logger.String("owner", req.Owner),
		logger.String("asset", req.Asset))

	result, err := s.admitRequest(ctx, log, req.Owner, req.Amount, req.SignaturePayload, req.SigData)
	if err != nil {
		s.recordFault(metrics.OpDeposit, start, err)
		return rejected(ReasonNone), err
	}
	if !result.Accepted {
		metrics.RecordOperation(metrics.OpDeposit, metrics.OutcomeRejected, time.Since(start))
		return result, nil
	}

	available, err := s.tokens.BalanceOf(ctx, req.Asset, req.Owner)
	if err != nil {
		metrics.RecordOperation(metrics.OpDeposit, metrics.OutcomeFault, time.Since(start))
		return rejected(ReasonNone), fmt.Errorf("wallet: read token balance: %w", err)
	}
	if available.Cmp(req.Amount) < 0 {
		log.Info("deposit rejected",
			logger.String("reason", string(ReasonInsufficientTokens)),
			logger.String("amount", req.Amount.String()),
			logger.String("available", available.String()))
		metrics.RecordOperation(metrics.OpDeposit, metrics.OutcomeRejected, time.Since(start))
		return rejected(ReasonInsufficientTokens), nil
	}

	txn, err := s.storage.Begin()
	if err != nil {
		metrics.RecordOperation(metrics.OpDeposit, metrics.OutcomeFault, time.Since(start))
		return rejected(ReasonNone), fmt.Errorf("wallet: begin transaction: %w", err)
	}

	if err := s.tokens.Transfer(ctx, req.Asset, req.Owner, s.custody, req.Amount); err != nil {
		txn.Rollback()
		metrics.RecordOperation(metrics.OpDeposit, metrics.OutcomeFault, time.Since(start))
		return rejected(ReasonNone), fmt.Errorf("wallet: token transfer into custody: %w", err)
	}
	if err := s.ledger.Credit(txn, req.Owner, req.Asset, req.Amount); err != nil {
		txn.Rollback()
		metrics.RecordOperation(metrics.OpDeposit, metrics.OutcomeFault, time.Since(start))
		return rejected(ReasonNone), err
	}
	if err := txn.Commit(); err != nil {
		metrics.RecordOperation(metrics.OpDeposit, metrics.OutcomeFault, time.Since(start))
		return rejected(ReasonNone), fmt.Errorf("wallet: commit deposit: %w", err)
	}

	log.Info("deposit accepted", logger.String("amount", req.Amount.String()))
	metrics.RecordOperation(metrics.OpDeposit, metrics.OutcomeAccepted, time.Since(start))
	return accepted(), nil
}

// Payment moves req.Amount from the owner's deposited balance out of
// custody to the destination's token account. The deposited balance is
// read and debited inside the same transaction, so the no-overdraft rule
// holds under concurrent calls.
func (s *Service) Payment(ctx context.Context, req PaymentRequest) (Result, error) {
	start := time.Now()
	log := s.logger.With(
		logger.String("operation", "payment"),
		logger.String("owner", req.Owner),
		logger.String("destination", req.Destination),
		logger.String("asset", req.Asset))

	result, err := s.admitRequest(ctx, log, req.Owner, req.Amount, req.SignaturePayload, req.SigData)
	if err != nil {
		s.recordFault(metrics.OpPayment, start, err)
		return rejected(ReasonNone), err
	}
	if !result.Accepted {
		metrics.RecordOperation(metrics.OpPayment, metrics.OutcomeRejected, time.Since(start))
		return result, nil
	}

	txn, err := s.storage.Begin()
	if err != nil {
		metrics.RecordOperation(metrics.OpPayment, metrics.OutcomeFault, time.Since(start))
		return rejected(ReasonNone), fmt.Errorf("wallet: begin transaction: %w", err)
	}

	balance, err := s.ledger.Balance(txn, req.Owner, req.Asset)
	if err != nil {
		txn.Rollback()
		metrics.RecordOperation(metrics.OpPayment, metrics.OutcomeFault, time.Since(start))
		return rejected(ReasonNone), err
	}
	if balance.Cmp(req.Amount) < 0 {
		txn.Rollback()
		log.Info("payment rejected",
			logger.String("reason", string(ReasonInsufficientFunds)),
			logger.String("amount", req.Amount.String()),
			logger.String("balance", balance.String()))
		metrics.RecordOperation(metrics.OpPayment, metrics.OutcomeRejected, time.Since(start))
		return rejected(ReasonInsufficientFunds), nil
	}

	if err := s.ledger.Debit(txn, req.Owner, req.Asset, req.Amount); err != nil {
		txn.Rollback()
		metrics.RecordOperation(metrics.OpPayment, metrics.OutcomeFault, time.Since(start))
		return rejected(ReasonNone), err
	}
	if err := s.tokens.Transfer(ctx, req.Asset, s.custody, req.Destination, req.Amount); err != nil {
		txn.Rollback()
		metrics.RecordOperation(metrics.OpPayment, metrics.OutcomeFault, time.Since(start))
		return rejected(ReasonNone), fmt.Errorf("wallet: token transfer out of custody: %w", err)
	}
	if err := txn.Commit(); err != nil {
		metrics.RecordOperation(metrics.OpPayment, metrics.OutcomeFault, time.Since(start))
		return rejected(ReasonNone), fmt.Errorf("wallet: commit payment: %w", err)
	}

	log.Info("payment accepted", logger.String("amount", req.Amount.String()))
	metrics.RecordOperation(metrics.OpPayment, metrics.OutcomeAccepted, time.Since(start))
	return accepted(), nil
}

// WalletInfo describes the running service.
func (s *Service) WalletInfo() Info {
	return Info{
		Name:           ServiceName,
		Version:        Version,
		CustodyAccount: s.custody,
		Operations:     []string{"register", "deposit", "payment", "balance"},
	}
}

// admitRequest runs the gates shared by Deposit and Payment: amount
// validity, signer registration, signature shape, assertion verification
// and caller authorization. A zero-value rejected Result with nil error
// means a soft rejection; a non-nil error means a hard abort.
func (s *Service) admitRequest(ctx context.Context, log logger.Logger, owner string, amount *big.Int, signaturePayload []byte, sigData webauthn.SigData) (Result, error) {
	if amount == nil || amount.Sign() <= 0 {
		log.Info("request rejected", logger.String("reason", string(ReasonInvalidAmount)))
		return rejected(ReasonInvalidAmount), nil
	}

	cred, err := s.credentials.Get(ctx, owner)
	if errors.Is(err, ErrSignerNotRegistered) {
		log.Info("request rejected", logger.String("reason", string(ReasonSignerNotRegistered)))
		return rejected(ReasonSignerNotRegistered), nil
	}
	if errors.Is(err, ErrInvalidCredential) {
		log.Warn("request rejected", logger.String("reason", string(ReasonInvalidPublicKey)))
		return rejected(ReasonInvalidPublicKey), nil
	}
	if err != nil {
		return rejected(ReasonNone), err
	}

	if len(sigData.Signature) != webauthn.SignatureLen {
		log.Info("request rejected",
			logger.String("reason", string(ReasonInvalidSignature)),
			logger.Int("signature_len", len(sigData.Signature)))
		return rejected(ReasonInvalidSignature), nil
	}

	ok, err := s.verifier.Verify(ctx, signaturePayload, cred.PublicKey[:], sigData)
	if err != nil {
		return rejected(ReasonNone), err
	}
	if !ok {
		log.Info("request rejected", logger.String("reason", string(ReasonVerificationFailed)))
		return rejected(ReasonVerificationFailed), nil
	}

	if err := s.authorizer.RequireAuthorization(ctx, owner); err != nil {
		return rejected(ReasonNone), err
	}

	return accepted(), nil
}

// recordFault records a failed operation, tagging verification faults
// with their code.
func (s *Service) recordFault(operation string, start time.Time, err error) {
	if code, ok := webauthn.FaultCodeOf(err); ok {
		metrics.RecordVerificationFault(strconv.FormatUint(uint64(code), 10))
	}
	metrics.RecordOperation(operation, metrics.OutcomeFault, time.Since(start))
	s.logger.WithError(err).Error("operation aborted", logger.String("operation", operation))
}

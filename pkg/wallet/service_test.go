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
	"crypto/sha256"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-smartwallet/pkg/adapters/auth"
	"github.com/jeremyhahn/go-smartwallet/pkg/adapters/logger"
	"github.com/jeremyhahn/go-smartwallet/pkg/storage"
	"github.com/jeremyhahn/go-smartwallet/pkg/token"
	"github.com/jeremyhahn/go-smartwallet/pkg/webauthn"
)

const (
	testOwner   = "alice"
	testAsset   = "USDC"
	testCustody = "custody"
	testRPID    = "wallet.example.com"
)

type testWallet struct {
	service       *Service
	backend       *storage.MemoryBackend
	tokens        *token.MemoryService
	authenticator *webauthn.MockAuthenticator
}

func newTestWallet(t *testing.T) *testWallet {
	t.Helper()

	authenticator, err := webauthn.NewMockAuthenticator(testRPID)
	require.NoError(t, err)

	backend := storage.NewMemoryBackend()
	t.Cleanup(func() { backend.Close() })

	tokens := token.NewMemoryService()

	service, err := NewService(ServiceParams{
		Credentials:    NewCredentialStore(backend),
		Storage:        backend,
		Verifier:       webauthn.NewECDSAVerifier(),
		Tokens:         tokens,
		CustodyAccount: testCustody,
		Logger:         logger.NewSlogAdapter(nil),
	})
	require.NoError(t, err)

	return &testWallet{
		service:       service,
		backend:       backend,
		tokens:        tokens,
		authenticator: authenticator,
	}
}

// register stores the mock authenticator's credential for owner.
func (w *testWallet) register(t *testing.T, ctx context.Context, owner string) {
	t.Helper()
	result, err := w.service.RegisterSigner(ctx, owner, w.authenticator.PublicKey(), w.authenticator.RPIDHash())
	require.NoError(t, err)
	require.True(t, result.Accepted)
}

// sign produces a payload and a valid assertion over it.
func (w *testWallet) sign(t *testing.T, seed string) ([]byte, webauthn.SigData) {
	t.Helper()
	digest := sha256.Sum256([]byte(seed))
	payload := digest[:]
	sigData, err := w.authenticator.Assert(payload)
	require.NoError(t, err)
	return payload, sigData
}

func ownerContext(owner string) context.Context {
	return auth.WithIdentity(context.Background(), &auth.Identity{Subject: owner})
}

func TestRegisterSigner(t *testing.T) {
	w := newTestWallet(t)
	ctx := ownerContext(testOwner)

	registered, err := w.service.IsRegistered(ctx, testOwner)
	require.NoError(t, err)
	assert.False(t, registered)

	_, err = w.service.PasskeyPublicKey(ctx, testOwner)
	assert.ErrorIs(t, err, ErrSignerNotRegistered)

	w.register(t, ctx, testOwner)

	registered, err = w.service.IsRegistered(ctx, testOwner)
	require.NoError(t, err)
	assert.True(t, registered)

	key, err := w.service.PasskeyPublicKey(ctx, testOwner)
	require.NoError(t, err)
	assert.Equal(t, w.authenticator.PublicKey(), key)
}

func TestRegisterSignerRejectsBadKeyMaterial(t *testing.T) {
	w := newTestWallet(t)
	ctx := ownerContext(testOwner)

	tests := []struct {
		name      string
		publicKey []byte
		rpIDHash  []byte
		reason    Reason
	}{
		{
			name:      "public key too short",
			publicKey: w.authenticator.PublicKey()[:64],
			rpIDHash:  w.authenticator.RPIDHash(),
			reason:    ReasonInvalidPublicKey,
		},
		{
			name:      "public key empty",
			publicKey: nil,
			rpIDHash:  w.authenticator.RPIDHash(),
			reason:    ReasonInvalidPublicKey,
		},
		{
			name:      "rp id hash wrong length",
			publicKey: w.authenticator.PublicKey(),
			rpIDHash:  make([]byte, 31),
			reason:    ReasonInvalidRPIDHash,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := w.service.RegisterSigner(ctx, testOwner, tt.publicKey, tt.rpIDHash)
			require.NoError(t, err)
			assert.False(t, result.Accepted)
			assert.Equal(t, tt.reason, result.Reason)
		})
	}

	registered, err := w.service.IsRegistered(ctx, testOwner)
	require.NoError(t, err)
	assert.False(t, registered)
}

func TestDepositAccepted(t *testing.T) {
	w := newTestWallet(t)
	ctx := ownerContext(testOwner)
	w.register(t, ctx, testOwner)
	w.tokens.Mint(testAsset, testOwner, big.NewInt(500))

	payload, sigData := w.sign(t, "deposit-100")
	result, err := w.service.Deposit(ctx, DepositRequest{
		Owner:            testOwner,
		Asset:            testAsset,
		Amount:           big.NewInt(100),
		SignaturePayload: payload,
		SigData:          sigData,
	})
	require.NoError(t, err)
	assert.True(t, result.Accepted)

	balance, err := w.service.Balance(ctx, testOwner, testAsset)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), balance)

	ownerTokens, err := w.tokens.BalanceOf(ctx, testAsset, testOwner)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(400), ownerTokens)

	custodyTokens, err := w.tokens.BalanceOf(ctx, testAsset, testCustody)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), custodyTokens)
}

func TestDepositRejections(t *testing.T) {
	w := newTestWallet(t)
	ctx := ownerContext(testOwner)
	w.register(t, ctx, testOwner)
	w.tokens.Mint(testAsset, testOwner, big.NewInt(50))

	payload, sigData := w.sign(t, "deposit-attempt")

	tests := []struct {
		name   string
		req    DepositRequest
		reason Reason
	}{
		{
			name: "nil amount",
			req: DepositRequest{
				Owner: testOwner, Asset: testAsset,
				SignaturePayload: payload, SigData: sigData,
			},
			reason: ReasonInvalidAmount,
		},
		{
			name: "zero amount",
			req: DepositRequest{
				Owner: testOwner, Asset: testAsset, Amount: big.NewInt(0),
				SignaturePayload: payload, SigData: sigData,
			},
			reason: ReasonInvalidAmount,
		},
		{
			name: "negative amount",
			req: DepositRequest{
				Owner: testOwner, Asset: testAsset, Amount: big.NewInt(-5),
				SignaturePayload: payload, SigData: sigData,
			},
			reason: ReasonInvalidAmount,
		},
		{
			name: "unregistered signer",
			req: DepositRequest{
				Owner: "mallory", Asset: testAsset, Amount: big.NewInt(10),
				SignaturePayload: payload, SigData: sigData,
			},
			reason: ReasonSignerNotRegistered,
		},
		{
			name: "signature wrong length",
			req: DepositRequest{
				Owner: testOwner, Asset: testAsset, Amount: big.NewInt(10),
				SignaturePayload: payload,
				SigData: webauthn.SigData{
					Signature:         sigData.Signature[:63],
					AuthenticatorData: sigData.AuthenticatorData,
					ClientDataJSON:    sigData.ClientDataJSON,
				},
			},
			reason: ReasonInvalidSignature,
		},
		{
			name: "insufficient token balance",
			req: DepositRequest{
				Owner: testOwner, Asset: testAsset, Amount: big.NewInt(100),
				SignaturePayload: payload, SigData: sigData,
			},
			reason: ReasonInsufficientTokens,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := w.service.Deposit(ctx, tt.req)
			require.NoError(t, err)
			assert.False(t, result.Accepted)
			assert.Equal(t, tt.reason, result.Reason)
		})
	}

	// Nothing moved.
	balance, err := w.service.Balance(ctx, testOwner, testAsset)
	require.NoError(t, err)
	assert.Zero(t, balance.Sign())

	ownerTokens, err := w.tokens.BalanceOf(ctx, testAsset, testOwner)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(50), ownerTokens)
}

func TestDepositAssertionFaultAborts(t *testing.T) {
	w := newTestWallet(t)
	ctx := ownerContext(testOwner)
	w.register(t, ctx, testOwner)
	w.tokens.Mint(testAsset, testOwner, big.NewInt(500))

	// Assertion signed over a different payload: the embedded challenge no
	// longer matches the request payload.
	_, sigData := w.sign(t, "something-else")
	payload := sha256.Sum256([]byte("deposit-100"))

	result, err := w.service.Deposit(ctx, DepositRequest{
		Owner:            testOwner,
		Asset:            testAsset,
		Amount:           big.NewInt(100),
		SignaturePayload: payload[:],
		SigData:          sigData,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, webauthn.ErrChallengeInvalid)
	assert.False(t, result.Accepted)

	balance, err := w.service.Balance(ctx, testOwner, testAsset)
	require.NoError(t, err)
	assert.Zero(t, balance.Sign())

	ownerTokens, err := w.tokens.BalanceOf(ctx, testAsset, testOwner)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(500), ownerTokens)
}

func TestDepositUnauthorizedCallerAborts(t *testing.T) {
	w := newTestWallet(t)
	ownerCtx := ownerContext(testOwner)
	w.register(t, ownerCtx, testOwner)
	w.tokens.Mint(testAsset, testOwner, big.NewInt(500))

	payload, sigData := w.sign(t, "deposit-100")
	req := DepositRequest{
		Owner:            testOwner,
		Asset:            testAsset,
		Amount:           big.NewInt(100),
		SignaturePayload: payload,
		SigData:          sigData,
	}

	// Caller authenticated as someone else.
	_, err := w.service.Deposit(ownerContext("mallory"), req)
	assert.ErrorIs(t, err, auth.ErrNotAuthorized)

	// No identity on the context at all.
	_, err = w.service.Deposit(context.Background(), req)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	balance, err := w.service.Balance(ownerCtx, testOwner, testAsset)
	require.NoError(t, err)
	assert.Zero(t, balance.Sign())
}

func TestPaymentLifecycle(t *testing.T) {
	w := newTestWallet(t)
	ctx := ownerContext(testOwner)
	w.register(t, ctx, testOwner)
	w.tokens.Mint(testAsset, testOwner, big.NewInt(500))

	payload, sigData := w.sign(t, "deposit-100")
	result, err := w.service.Deposit(ctx, DepositRequest{
		Owner: testOwner, Asset: testAsset, Amount: big.NewInt(100),
		SignaturePayload: payload, SigData: sigData,
	})
	require.NoError(t, err)
	require.True(t, result.Accepted)

	// More than deposited: rejected even though the owner holds more tokens
	// externally. Only the deposited balance is spendable.
	payload, sigData = w.sign(t, "payment-150")
	result, err = w.service.Payment(ctx, PaymentRequest{
		Owner: testOwner, Destination: "bob", Asset: testAsset, Amount: big.NewInt(150),
		SignaturePayload: payload, SigData: sigData,
	})
	require.NoError(t, err)
	assert.False(t, result.Accepted)
	assert.Equal(t, ReasonInsufficientFunds, result.Reason)

	payload, sigData = w.sign(t, "payment-60")
	result, err = w.service.Payment(ctx, PaymentRequest{
		Owner: testOwner, Destination: "bob", Asset: testAsset, Amount: big.NewInt(60),
		SignaturePayload: payload, SigData: sigData,
	})
	require.NoError(t, err)
	assert.True(t, result.Accepted)

	balance, err := w.service.Balance(ctx, testOwner, testAsset)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(40), balance)

	bobTokens, err := w.tokens.BalanceOf(ctx, testAsset, "bob")
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(60), bobTokens)

	custodyTokens, err := w.tokens.BalanceOf(ctx, testAsset, testCustody)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(40), custodyTokens)

	// Draining the remainder exactly is allowed.
	payload, sigData = w.sign(t, "payment-40")
	result, err = w.service.Payment(ctx, PaymentRequest{
		Owner: testOwner, Destination: "bob", Asset: testAsset, Amount: big.NewInt(40),
		SignaturePayload: payload, SigData: sigData,
	})
	require.NoError(t, err)
	assert.True(t, result.Accepted)

	balance, err = w.service.Balance(ctx, testOwner, testAsset)
	require.NoError(t, err)
	assert.Zero(t, balance.Sign())
}

func TestPaymentNoOverdraftUnderConcurrency(t *testing.T) {
	w := newTestWallet(t)
	ctx := ownerContext(testOwner)
	w.register(t, ctx, testOwner)
	w.tokens.Mint(testAsset, testOwner, big.NewInt(100))
	w.tokens.Mint(testAsset, testCustody, big.NewInt(0))

	payload, sigData := w.sign(t, "deposit-100")
	result, err := w.service.Deposit(ctx, DepositRequest{
		Owner: testOwner, Asset: testAsset, Amount: big.NewInt(100),
		SignaturePayload: payload, SigData: sigData,
	})
	require.NoError(t, err)
	require.True(t, result.Accepted)

	// 8 concurrent payments of 30 against a balance of 100: exactly 3 can
	// succeed. Assertions are produced up front; the authenticator is not
	// safe for concurrent signing.
	const workers = 8
	type attempt struct {
		payload []byte
		sigData webauthn.SigData
	}
	attempts := make([]attempt, workers)
	for i := range attempts {
		p, sd := w.sign(t, "payment-30-"+string(rune('a'+i)))
		attempts[i] = attempt{payload: p, sigData: sd}
	}

	var wg sync.WaitGroup
	results := make([]Result, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = w.service.Payment(ctx, PaymentRequest{
				Owner: testOwner, Destination: "bob", Asset: testAsset, Amount: big.NewInt(30),
				SignaturePayload: attempts[i].payload, SigData: attempts[i].sigData,
			})
		}(i)
	}
	wg.Wait()

	acceptedCount := 0
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		if results[i].Accepted {
			acceptedCount++
		} else {
			assert.Equal(t, ReasonInsufficientFunds, results[i].Reason)
		}
	}
	assert.Equal(t, 3, acceptedCount)

	balance, err := w.service.Balance(ctx, testOwner, testAsset)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), balance)

	bobTokens, err := w.tokens.BalanceOf(ctx, testAsset, "bob")
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(90), bobTokens)
}

// failingTokenService errors on transfer to exercise rollback.
type failingTokenService struct {
	token.Service
}

func (f *failingTokenService) Transfer(ctx context.Context, asset, from, to string, amount *big.Int) error {
	return errors.New("token backend unavailable")
}

func TestDepositRollsBackWhenTransferFails(t *testing.T) {
	authenticator, err := webauthn.NewMockAuthenticator(testRPID)
	require.NoError(t, err)

	backend := storage.NewMemoryBackend()
	t.Cleanup(func() { backend.Close() })

	tokens := token.NewMemoryService()
	tokens.Mint(testAsset, testOwner, big.NewInt(500))

	service, err := NewService(ServiceParams{
		Credentials:    NewCredentialStore(backend),
		Storage:        backend,
		Verifier:       webauthn.NewECDSAVerifier(),
		Tokens:         &failingTokenService{Service: tokens},
		CustodyAccount: testCustody,
		Logger:         logger.NewSlogAdapter(nil),
	})
	require.NoError(t, err)

	ctx := ownerContext(testOwner)
	result, err := service.RegisterSigner(ctx, testOwner, authenticator.PublicKey(), authenticator.RPIDHash())
	require.NoError(t, err)
	require.True(t, result.Accepted)

	digest := sha256.Sum256([]byte("deposit-100"))
	sigData, err := authenticator.Assert(digest[:])
	require.NoError(t, err)

	_, err = service.Deposit(ctx, DepositRequest{
		Owner: testOwner, Asset: testAsset, Amount: big.NewInt(100),
		SignaturePayload: digest[:], SigData: sigData,
	})
	require.Error(t, err)

	// Ledger unchanged and the transaction released: a follow-up read must
	// not deadlock and must see balance zero.
	balance, err := service.Balance(ctx, testOwner, testAsset)
	require.NoError(t, err)
	assert.Zero(t, balance.Sign())
}

func TestWalletInfo(t *testing.T) {
	w := newTestWallet(t)
	info := w.service.WalletInfo()
	assert.Equal(t, ServiceName, info.Name)
	assert.Equal(t, testCustody, info.CustodyAccount)
	assert.Contains(t, info.Operations, "deposit")
	assert.Contains(t, info.Operations, "payment")
}

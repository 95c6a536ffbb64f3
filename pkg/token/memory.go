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

package token

import (
	"context"
	"math/big"
	"sync"
)

// MemoryService is an in-memory token service used for development and
// testing. Thread-safe.
type MemoryService struct {
	// balances maps asset -> owner -> balance.
	balances map[string]map[string]*big.Int
	mu       sync.RWMutex
}

// NewMemoryService creates an empty in-memory token service.
func NewMemoryService() *MemoryService {
	return &MemoryService{
		balances: make(map[string]map[string]*big.Int),
	}
}

// Mint credits freshly created tokens to an account. Test/dev helper; a
// real asset contract would not expose this.
func (s *MemoryService) Mint(asset, owner string, amount *big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owners, ok := s.balances[asset]
	if !ok {
		owners = make(map[string]*big.Int)
		s.balances[asset] = owners
	}
	balance, ok := owners[owner]
	if !ok {
		balance = new(big.Int)
		owners[owner] = balance
	}
	balance.Add(balance, amount)
}

// BalanceOf returns the owner's token balance for the asset. Unknown
// accounts hold zero.
func (s *MemoryService) BalanceOf(ctx context.Context, asset, owner string) (*big.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if owners, ok := s.balances[asset]; ok {
		if balance, ok := owners[owner]; ok {
			return new(big.Int).Set(balance), nil
		}
	}
	return new(big.Int), nil
}

// Transfer moves amount of the asset between accounts. Fails with
// ErrInsufficientBalance when the sender cannot cover the amount; a failed
// transfer leaves both accounts unchanged.
func (s *MemoryService) Transfer(ctx context.Context, asset, from, to string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	owners, ok := s.balances[asset]
	if !ok {
		return ErrInsufficientBalance
	}
	fromBalance, ok := owners[from]
	if !ok || fromBalance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}

	toBalance, ok := owners[to]
	if !ok {
		toBalance = new(big.Int)
		owners[to] = toBalance
	}

	fromBalance.Sub(fromBalance, amount)
	toBalance.Add(toBalance, amount)
	return nil
}

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

	"github.com/jeremyhahn/go-smartwallet/pkg/adapters/auth"
)

// Authorizer confirms that the caller of the current request is entitled
// to act as owner. A non-nil error aborts the operation before any side
// effect; unlike the orchestration-level rejections, there is no soft
// path here.
type Authorizer interface {
	RequireAuthorization(ctx context.Context, owner string) error
}

// identityAuthorizer checks the authenticated identity carried on the
// request context against the owner.
type identityAuthorizer struct{}

// NewIdentityAuthorizer returns the default context-identity Authorizer.
func NewIdentityAuthorizer() Authorizer {
	return identityAuthorizer{}
}

func (identityAuthorizer) RequireAuthorization(ctx context.Context, owner string) error {
	return auth.RequireAuthorization(ctx, owner)
}

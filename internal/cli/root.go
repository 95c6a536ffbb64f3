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

// Package cli implements the smartwallet command-line interface.
package cli

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "smartwallet",
	Short: "go-smartwallet - passkey-authorized custodial wallet",
	Long: `go-smartwallet runs a custodial wallet service whose deposit and
payment operations are authorized by WebAuthn passkey assertions.

Every state-changing operation requires a valid secp256r1 assertion
from the owner's registered passkey. Deposited funds are tracked in a
no-overdraft ledger backed by transactional storage.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
}

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

import "crypto/subtle"

// ValidateExpectedType requires the client data type field to be the
// authentication ceremony literal "webauthn.get".
func ValidateExpectedType(clientData *ClientData) error {
	if clientData.Type != ExpectedType {
		return ErrTypeFieldInvalid
	}
	return nil
}

// ValidateChallenge requires byte-exact equality between the client data
// challenge and the challenge derived from the signature payload.
func ValidateChallenge(clientData *ClientData, signaturePayload []byte) error {
	expected, err := ExpectedChallenge(signaturePayload)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(clientData.Challenge), []byte(expected)) != 1 {
		return ErrChallengeInvalid
	}
	return nil
}

// ValidateUserPresent requires the User Present (UP) bit.
func ValidateUserPresent(flags byte) error {
	if flags&FlagUserPresent == 0 {
		return ErrPresentBitNotSet
	}
	return nil
}

// ValidateUserVerified requires the User Verified (UV) bit.
func ValidateUserVerified(flags byte) error {
	if flags&FlagUserVerified == 0 {
		return ErrVerifiedBitNotSet
	}
	return nil
}

// ValidateBackupEligibilityAndState rejects the inconsistent combination of
// Backup State (BS) set while Backup Eligibility (BE) is unset: a credential
// cannot be backed up without being backup eligible. Every other BE/BS
// combination is valid.
func ValidateBackupEligibilityAndState(flags byte) error {
	if flags&FlagBackupEligible == 0 && flags&FlagBackupState != 0 {
		return ErrBackupEligibilityAndState
	}
	return nil
}

// validateAssertion applies every business rule to the parsed fields.
// The first failing rule aborts with its fault.
func validateAssertion(clientData *ClientData, flags byte, signaturePayload []byte) error {
	if err := ValidateExpectedType(clientData); err != nil {
		return err
	}
	if err := ValidateChallenge(clientData, signaturePayload); err != nil {
		return err
	}
	if err := ValidateUserPresent(flags); err != nil {
		return err
	}
	if err := ValidateUserVerified(flags); err != nil {
		return err
	}
	return ValidateBackupEligibilityAndState(flags)
}

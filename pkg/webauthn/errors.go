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

import (
	"errors"
	"fmt"
)

// FaultCode identifies a specific assertion verification fault. The numeric
// values are stable and surface unchanged across the REST boundary.
type FaultCode uint32

const (
	// CodeSignaturePayloadInvalid indicates the signature payload is
	// shorter than the 32 bytes needed to derive the challenge.
	CodeSignaturePayloadInvalid FaultCode = 3110

	// CodeClientDataTooLong indicates the client data exceeds the
	// maximum allowed length.
	CodeClientDataTooLong FaultCode = 3111

	// CodeJSONParse indicates the client data is not a JSON object with
	// string "challenge" and "type" fields.
	CodeJSONParse FaultCode = 3112

	// CodeTypeFieldInvalid indicates the type field is not "webauthn.get".
	CodeTypeFieldInvalid FaultCode = 3113

	// CodeChallengeInvalid indicates the challenge in client data does
	// not match the expected value.
	CodeChallengeInvalid FaultCode = 3114

	// CodeAuthDataFormatInvalid indicates the authenticator data is
	// shorter than the minimum layout.
	CodeAuthDataFormatInvalid FaultCode = 3115

	// CodePresentBitNotSet indicates the User Present (UP) bit is not set.
	CodePresentBitNotSet FaultCode = 3116

	// CodeVerifiedBitNotSet indicates the User Verified (UV) bit is not set.
	CodeVerifiedBitNotSet FaultCode = 3117

	// CodeBackupEligibilityAndState indicates the Backup State (BS) bit
	// is set while Backup Eligibility (BE) is not.
	CodeBackupEligibilityAndState FaultCode = 3118

	// CodeSignatureVerificationFailed indicates the secp256r1 signature
	// check failed.
	CodeSignatureVerificationFailed FaultCode = 3119
)

// FaultError is a hard verification fault. Any FaultError aborts the
// enclosing wallet operation before it can produce side effects; it is
// never folded into the boolean rejection path.
type FaultError struct {
	Code   FaultCode
	Reason string
}

// Error returns the fault message.
func (e *FaultError) Error() string {
	return fmt.Sprintf("webauthn: %s (fault %d)", e.Reason, e.Code)
}

// Is reports whether target is a FaultError with the same code, so
// errors.Is(err, ErrChallengeInvalid) matches wrapped faults.
func (e *FaultError) Is(target error) bool {
	var fault *FaultError
	if !errors.As(target, &fault) {
		return false
	}
	return e.Code == fault.Code
}

// Verification faults. Comparable with errors.Is.
var (
	ErrSignaturePayloadInvalid = &FaultError{CodeSignaturePayloadInvalid, "signature payload shorter than challenge"}
	ErrClientDataTooLong       = &FaultError{CodeClientDataTooLong, "client data exceeds maximum length"}
	ErrJSONParse               = &FaultError{CodeJSONParse, "client data is not valid JSON"}
	ErrTypeFieldInvalid        = &FaultError{CodeTypeFieldInvalid, "client data type is not webauthn.get"}
	ErrChallengeInvalid        = &FaultError{CodeChallengeInvalid, "challenge does not match signature payload"}
	ErrAuthDataFormatInvalid   = &FaultError{CodeAuthDataFormatInvalid, "authenticator data too short"}
	ErrPresentBitNotSet        = &FaultError{CodePresentBitNotSet, "user present bit not set"}
	ErrVerifiedBitNotSet       = &FaultError{CodeVerifiedBitNotSet, "user verified bit not set"}
	ErrBackupEligibilityAndState = &FaultError{CodeBackupEligibilityAndState, "backup state set without backup eligibility"}
	ErrSignatureVerification   = &FaultError{CodeSignatureVerificationFailed, "signature verification failed"}
)

// Sentinel errors for malformed key material. These are hard failures of
// the call but are not protocol faults, so they carry no fault code.
var (
	// ErrInvalidPublicKey is returned when the public key is not a valid
	// 65-byte uncompressed P-256 point.
	ErrInvalidPublicKey = errors.New("webauthn: invalid public key")

	// ErrInvalidSignatureLength is returned when the signature is not
	// exactly 64 bytes (r||s).
	ErrInvalidSignatureLength = errors.New("webauthn: invalid signature length")
)

// FaultCodeOf extracts the fault code from an error, returning 0 and false
// when err is not a verification fault.
func FaultCodeOf(err error) (FaultCode, bool) {
	var fault *FaultError
	if errors.As(err, &fault) {
		return fault.Code, true
	}
	return 0, false
}

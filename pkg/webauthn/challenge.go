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

// base64URLAlphabet is the base64url alphabet (RFC 4648 §5, no padding).
const base64URLAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// EncodeBase64URL encodes src to padding-free base64url. Input is processed
// in 3-byte groups mapped to 4 output characters; a trailing group of 1 or 2
// bytes produces 2 or 3 characters with the unused low bits zero-filled.
func EncodeBase64URL(src []byte) string {
	if len(src) == 0 {
		return ""
	}

	dst := make([]byte, encodedLen(len(src)))
	di, si := 0, 0
	n := (len(src) / 3) * 3

	for si < n {
		val := uint(src[si])<<16 | uint(src[si+1])<<8 | uint(src[si+2])
		dst[di+0] = base64URLAlphabet[val>>18&0x3F]
		dst[di+1] = base64URLAlphabet[val>>12&0x3F]
		dst[di+2] = base64URLAlphabet[val>>6&0x3F]
		dst[di+3] = base64URLAlphabet[val&0x3F]
		si += 3
		di += 4
	}

	remain := len(src) - si
	if remain == 0 {
		return string(dst)
	}

	val := uint(src[si]) << 16
	if remain == 2 {
		val |= uint(src[si+1]) << 8
	}

	dst[di+0] = base64URLAlphabet[val>>18&0x3F]
	dst[di+1] = base64URLAlphabet[val>>12&0x3F]
	if remain == 2 {
		dst[di+2] = base64URLAlphabet[val>>6&0x3F]
	}

	return string(dst)
}

// encodedLen returns the padding-free base64url length for n input bytes.
func encodedLen(n int) int {
	return (n*8 + 5) / 6
}

// ExpectedChallenge derives the challenge string a client must echo for the
// given signature payload: the base64url encoding of its first 32 bytes.
// Returns ErrSignaturePayloadInvalid when fewer than 32 bytes are available.
func ExpectedChallenge(signaturePayload []byte) (string, error) {
	if len(signaturePayload) < 32 {
		return "", ErrSignaturePayloadInvalid
	}
	return EncodeBase64URL(signaturePayload[:32]), nil
}

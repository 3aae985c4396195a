// Package fingerprint derives the stable identifier of a recipient public key.
//
// A fingerprint is the standard padded base64 encoding of SHA-256 over the raw
// public key bytes. It is embedded in every blob header and used as the lookup
// key of the key manager. Fingerprints are not secret.
package fingerprint

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

const (
	// MinLength and MaxLength bound the accepted textual length.
	MinLength = 43
	MaxLength = 44
)

// ErrInvalidFingerprint is returned for values outside the fingerprint alphabet or length.
var ErrInvalidFingerprint = errors.New("fingerprint: invalid fingerprint")

// Compute returns the fingerprint of publicKey. Any input length is accepted
// and the result is deterministic.
func Compute(publicKey []byte) string {
	sum := sha256.Sum256(publicKey)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Validate checks length and alphabet: [A-Za-z0-9+/] with '=' allowed only as
// the final character.
func Validate(fp string) error {
	if len(fp) < MinLength || len(fp) > MaxLength {
		return ErrInvalidFingerprint
	}

	for i := 0; i < len(fp); i++ {
		c := fp[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '+', c == '/':
		case c == '=' && i == len(fp)-1:
		default:
			return ErrInvalidFingerprint
		}
	}
	return nil
}

// IsValid reports whether fp passes Validate.
func IsValid(fp string) bool {
	return Validate(fp) == nil
}

package box

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"

	"golang.org/x/crypto/curve25519"
	naclbox "golang.org/x/crypto/nacl/box"
)

// PublicKey is an X25519 public key.
type PublicKey [KeySize]byte

// Bytes returns a copy of the raw key bytes.
func (pub *PublicKey) Bytes() []byte {
	b := make([]byte, KeySize)
	copy(b, pub[:])
	return b
}

// String returns the key in standard base64.
func (pub *PublicKey) String() string {
	return base64.StdEncoding.EncodeToString(pub[:])
}

// Equals compares two public keys.
func (pub *PublicKey) Equals(other *PublicKey) bool {
	if pub == nil || other == nil {
		return pub == other
	}
	return subtle.ConstantTimeCompare(pub[:], other[:]) == 1
}

// SecretKey is an X25519 secret key.
type SecretKey [KeySize]byte

// Bytes returns a copy of the raw key bytes. The caller owns the copy and
// should zero it when done.
func (sec *SecretKey) Bytes() []byte {
	b := make([]byte, KeySize)
	copy(b, sec[:])
	return b
}

// String never prints key material.
func (sec *SecretKey) String() string {
	return "box.SecretKey(REDACTED)"
}

// Public derives the public key of sec.
func (sec *SecretKey) Public() (*PublicKey, error) {
	if sec == nil {
		return nil, ErrSecretKeyEmpty
	}

	b, err := curve25519.X25519(sec[:], curve25519.Basepoint)
	if err != nil {
		return nil, ErrInvalidSecretKey
	}

	var pub PublicKey
	copy(pub[:], b)
	return &pub, nil
}

// Equals compares two secret keys in constant time.
func (sec *SecretKey) Equals(other *SecretKey) bool {
	if sec == nil || other == nil {
		return sec == other
	}
	return subtle.ConstantTimeCompare(sec[:], other[:]) == 1
}

// Destroy zeroes the key. The key must not be used afterwards.
func (sec *SecretKey) Destroy() {
	if sec == nil {
		return
	}
	clear(sec[:])
}

// KeyPair holds a recipient key pair.
type KeyPair struct {
	Public *PublicKey
	Secret *SecretKey
}

// GenerateKeyPair generates a new X25519 key pair.
func GenerateKeyPair() (*KeyPair, error) {
	pub, sec, err := naclbox.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &KeyPair{Public: (*PublicKey)(pub), Secret: (*SecretKey)(sec)}, nil
}

// PublicKeyFromBytes copies b into a PublicKey.
func PublicKeyFromBytes(b []byte) (*PublicKey, error) {
	if len(b) != KeySize {
		return nil, ErrInvalidPublicKey
	}
	var pub PublicKey
	copy(pub[:], b)
	return &pub, nil
}

// SecretKeyFromBytes copies b into a SecretKey. b is left untouched.
func SecretKeyFromBytes(b []byte) (*SecretKey, error) {
	if len(b) != KeySize {
		return nil, ErrInvalidSecretKey
	}
	var sec SecretKey
	copy(sec[:], b)
	return &sec, nil
}

package keyfile

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

// KDFParams are the argon2id cost parameters recorded in the PEM header.
type KDFParams struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
}

// DefaultKDFParams follow the argon2id recommendation of RFC 9106 for
// memory-constrained environments.
var DefaultKDFParams = KDFParams{Time: 1, Memory: 64 * 1024, Threads: 4}

func (p KDFParams) String() string {
	return fmt.Sprintf("t=%d,m=%d,p=%d", p.Time, p.Memory, p.Threads)
}

func parseKDFParams(s string) (KDFParams, error) {
	var p KDFParams
	if _, err := fmt.Sscanf(s, "t=%d,m=%d,p=%d", &p.Time, &p.Memory, &p.Threads); err != nil {
		return p, fmt.Errorf("%w: params %q", ErrUnsupportedKDF, s)
	}
	if p.Time == 0 || p.Memory == 0 || p.Threads == 0 {
		return p, fmt.Errorf("%w: params %q", ErrUnsupportedKDF, s)
	}
	return p, nil
}

func deriveKey(passphrase, salt []byte, p KDFParams) *[32]byte {
	var key [32]byte
	copy(key[:], argon2.IDKey(passphrase, salt, p.Time, p.Memory, p.Threads, 32))
	return &key
}

// seal encrypts secret under passphrase and returns the body plus PEM headers.
func seal(secret, passphrase []byte, p KDFParams) ([]byte, map[string]string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, err
	}
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, nil, err
	}

	key := deriveKey(passphrase, salt, p)
	defer clear(key[:])

	headers := map[string]string{
		headerKDF:    kdfArgon2id,
		headerSalt:   base64.StdEncoding.EncodeToString(salt),
		headerNonce:  base64.StdEncoding.EncodeToString(nonce[:]),
		headerParams: p.String(),
	}
	return secretbox.Seal(nil, secret, &nonce, key), headers, nil
}

// unseal reverses seal. A failed open is reported as ErrWrongPassphrase.
func unseal(body, passphrase []byte, headers map[string]string) ([]byte, error) {
	if headers[headerKDF] != kdfArgon2id {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKDF, headers[headerKDF])
	}

	p, err := parseKDFParams(headers[headerParams])
	if err != nil {
		return nil, err
	}
	salt, err := base64.StdEncoding.DecodeString(headers[headerSalt])
	if err != nil {
		return nil, fmt.Errorf("%w: salt: %v", ErrInvalidPEMBlock, err)
	}
	rawNonce, err := base64.StdEncoding.DecodeString(headers[headerNonce])
	if err != nil || len(rawNonce) != 24 {
		return nil, fmt.Errorf("%w: nonce", ErrInvalidPEMBlock)
	}
	nonce := [24]byte(rawNonce)

	key := deriveKey(passphrase, salt, p)
	defer clear(key[:])

	secret, ok := secretbox.Open(nil, body, &nonce, key)
	if !ok {
		return nil, ErrWrongPassphrase
	}
	return secret, nil
}

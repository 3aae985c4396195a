package box

import (
	"crypto/rand"
	"fmt"
	"io"

	naclbox "golang.org/x/crypto/nacl/box"
)

// Encrypt seals plaintext for the recipient. A fresh ephemeral key pair and a
// fresh nonce are generated for every call; the ephemeral secret is zeroed
// before returning. Empty plaintext is allowed.
func Encrypt(recipient *PublicKey, plaintext []byte) ([]byte, error) {
	return encrypt(rand.Reader, recipient, plaintext)
}

func encrypt(random io.Reader, recipient *PublicKey, plaintext []byte) ([]byte, error) {
	if recipient == nil {
		return nil, ErrPublicKeyEmpty
	}

	ephPub, ephSec, err := naclbox.GenerateKey(random)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}
	defer clear(ephSec[:])

	var nonce [NonceSize]byte
	if _, err := io.ReadFull(random, nonce[:]); err != nil {
		return nil, fmt.Errorf("%w: failed to generate nonce: %v", ErrEncryptionFailed, err)
	}

	out := make([]byte, HeaderSize, HeaderSize+len(plaintext)+Overhead)
	copy(out[offsetEphemeralKey:], ephPub[:])
	copy(out[offsetNonce:], nonce[:])

	recipientKey := [KeySize]byte(*recipient)
	return naclbox.Seal(out, plaintext, &nonce, &recipientKey, ephSec), nil
}

// Open authenticates and decrypts ciphertext. ok is false for any failure,
// including input shorter than MinCiphertextSize; Open never panics.
func Open(sec *SecretKey, ciphertext []byte) (plaintext []byte, ok bool) {
	if sec == nil || len(ciphertext) < MinCiphertextSize {
		return nil, false
	}

	var (
		ephPub [KeySize]byte
		nonce  [NonceSize]byte
	)
	copy(ephPub[:], ciphertext[offsetEphemeralKey:offsetNonce])
	copy(nonce[:], ciphertext[offsetNonce:offsetSealed])

	secretKey := [KeySize]byte(*sec)
	defer clear(secretKey[:])

	return naclbox.Open(nil, ciphertext[offsetSealed:], &nonce, &ephPub, &secretKey)
}

// Decrypt is Open with an error result. Every failure is ErrDecryptionFailed.
func Decrypt(sec *SecretKey, ciphertext []byte) ([]byte, error) {
	if sec == nil {
		return nil, ErrSecretKeyEmpty
	}

	plaintext, ok := Open(sec, ciphertext)
	if !ok {
		return nil, ErrDecryptionFailed
	}
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}

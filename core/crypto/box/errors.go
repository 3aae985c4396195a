package box

import "errors"

// Key-related errors
var (
	// ErrInvalidPublicKey indicates a public key of the wrong length
	ErrInvalidPublicKey = errors.New("box: invalid public key")

	// ErrInvalidSecretKey indicates a secret key of the wrong length
	ErrInvalidSecretKey = errors.New("box: invalid secret key")

	// ErrPublicKeyEmpty indicates that the public key is nil
	ErrPublicKeyEmpty = errors.New("box: public key is empty")

	// ErrSecretKeyEmpty indicates that the secret key is nil
	ErrSecretKeyEmpty = errors.New("box: secret key is empty")
)

// Encryption/Decryption errors
var (
	// ErrEncryptionFailed indicates that randomness or key generation failed
	ErrEncryptionFailed = errors.New("box: encryption failed")

	// ErrDecryptionFailed is the only error Decrypt returns for a bad ciphertext.
	// It does not distinguish a wrong key from truncation or tampering.
	ErrDecryptionFailed = errors.New("box: decryption failed")
)

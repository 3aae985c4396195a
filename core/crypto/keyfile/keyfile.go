// Package keyfile persists box key pairs as PEM files. Secret keys may be
// sealed with a passphrase (argon2id + secretbox).
//
//	// Generate and save a key pair
//	err := keyfile.GenerateKeyPair(
//	    keyfile.WithDir("./keys"),
//	    keyfile.WithName("backup"),
//	    keyfile.WithPassphrase(pass),
//	)
//
//	// Load every secret key of a directory into a key manager
//	n, err := keyfile.LoadDir("./keys", pass, km)
package keyfile

import (
	"errors"
)

const (
	PublicKeyBlockType = "SEALSTORE PUBLIC KEY"
	SecretKeyBlockType = "SEALSTORE SECRET KEY"

	PublicKeyExt = ".pub"
	SecretKeyExt = ".key"
)

// PEM headers of a sealed secret key
const (
	headerKDF    = "KDF"
	headerSalt   = "Salt"
	headerNonce  = "Nonce"
	headerParams = "Params"

	kdfArgon2id = "argon2id"
)

var (
	// ErrInvalidPEMBlock indicates a missing or mistyped PEM block
	ErrInvalidPEMBlock = errors.New("keyfile: invalid PEM block")

	// ErrKeyFileRead indicates a failure to read or write the key file
	ErrKeyFileRead = errors.New("keyfile: key file not accessible")

	// ErrWrongPassphrase indicates that a sealed key could not be opened
	ErrWrongPassphrase = errors.New("keyfile: wrong passphrase")

	// ErrPassphraseRequired indicates a sealed key loaded without a passphrase
	ErrPassphraseRequired = errors.New("keyfile: passphrase required")

	// ErrUnsupportedKDF indicates unknown sealing parameters
	ErrUnsupportedKDF = errors.New("keyfile: unsupported key derivation")
)

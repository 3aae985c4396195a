package box

import (
	naclbox "golang.org/x/crypto/nacl/box"
)

// Algorithm is the metadata tag recorded for blobs sealed by this package.
const Algorithm = "x25519-xsalsa20-poly1305"

const (
	// KeySize is the size of X25519 public and secret keys
	KeySize = 32

	// NonceSize is the size of the XSalsa20 nonce
	NonceSize = 24

	// Overhead is the size of the Poly1305 authentication tag
	Overhead = naclbox.Overhead
)

// Ciphertext format parameters
const (
	// HeaderSize is the envelope before the sealed data: [ephemeral_pubkey:32][nonce:24]
	HeaderSize = KeySize + NonceSize

	// MinCiphertextSize is the envelope plus tag, i.e. the ciphertext of an empty plaintext
	MinCiphertextSize = HeaderSize + Overhead

	offsetEphemeralKey = 0
	offsetNonce        = offsetEphemeralKey + KeySize
	offsetSealed       = offsetNonce + NonceSize
)

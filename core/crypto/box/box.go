// Package box seals plaintext for a recipient public key using ephemeral-key
// public-key authenticated encryption.
//
// This implementation uses:
//   - X25519 key agreement between a fresh ephemeral key and the recipient key
//   - XSalsa20-Poly1305 authenticated encryption (golang.org/x/crypto/nacl/box)
//   - a fresh random 24-byte nonce per call
//
// Ciphertext layout:
//
//	ephemeralPublicKey(32) || nonce(24) || sealed(len(plaintext)+16)
//
// Every call produces different bytes, even for identical plaintext and
// recipient. Decryption failures are reported as a single ErrDecryptionFailed.
//
// Example usage:
//
//	kp, err := box.GenerateKeyPair()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer kp.Secret.Destroy()
//
//	ciphertext, err := box.Encrypt(kp.Public, []byte("secret data"))
//	plaintext, err := box.Decrypt(kp.Secret, ciphertext)
package box

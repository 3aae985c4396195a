package box

import (
	"crypto/rand"
	"testing"
)

// BenchmarkEncrypt benchmarks sealing 1 KB
func BenchmarkEncrypt(b *testing.B) {
	kp := mustKeyPair(b)
	plaintext := make([]byte, 1024)
	rand.Read(plaintext)

	b.ReportAllocs()
	for b.Loop() {
		if _, err := Encrypt(kp.Public, plaintext); err != nil {
			b.Fatalf("Encryption failed: %v", err)
		}
	}
}

// BenchmarkDecrypt benchmarks opening 1 KB
func BenchmarkDecrypt(b *testing.B) {
	kp := mustKeyPair(b)
	plaintext := make([]byte, 1024)
	rand.Read(plaintext)

	ciphertext, err := Encrypt(kp.Public, plaintext)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	for b.Loop() {
		if _, err := Decrypt(kp.Secret, ciphertext); err != nil {
			b.Fatalf("Decryption failed: %v", err)
		}
	}
}

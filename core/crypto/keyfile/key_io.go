package keyfile

import (
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kochabx/sealstore/core/crypto/box"
	"github.com/kochabx/sealstore/core/tag"
)

// KeyOption contains options for key generation.
type KeyOption struct {
	Dir        string `json:"dir" default:"."`
	Name       string `json:"name" default:"sealstore"`
	Passphrase []byte `json:"-"`
	KDF        KDFParams
}

// WithDir sets the output directory.
func WithDir(dir string) func(*KeyOption) {
	return func(o *KeyOption) {
		o.Dir = dir
	}
}

// WithName sets the base file name; the pair is written to {name}.pub and {name}.key.
func WithName(name string) func(*KeyOption) {
	return func(o *KeyOption) {
		o.Name = name
	}
}

// WithPassphrase seals the secret key with passphrase.
func WithPassphrase(passphrase []byte) func(*KeyOption) {
	return func(o *KeyOption) {
		o.Passphrase = passphrase
	}
}

// WithKDFParams overrides the argon2id cost parameters.
func WithKDFParams(p KDFParams) func(*KeyOption) {
	return func(o *KeyOption) {
		o.KDF = p
	}
}

// GenerateKeyPair generates a new key pair and saves it under the configured
// directory. It returns the generated pair; the caller should Destroy the secret.
func GenerateKeyPair(opts ...func(*KeyOption)) (*box.KeyPair, error) {
	option := &KeyOption{KDF: DefaultKDFParams}
	if err := tag.ApplyDefaults(option); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	for _, opt := range opts {
		opt(option)
	}

	if err := os.MkdirAll(option.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyFileRead, err)
	}

	kp, err := box.GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	secretPath := filepath.Join(option.Dir, option.Name+SecretKeyExt)
	if err := saveSecretKey(secretPath, kp.Secret, option.Passphrase, option.KDF); err != nil {
		kp.Secret.Destroy()
		return nil, fmt.Errorf("failed to save secret key: %w", err)
	}

	publicPath := filepath.Join(option.Dir, option.Name+PublicKeyExt)
	if err := SavePublicKey(publicPath, kp.Public); err != nil {
		kp.Secret.Destroy()
		return nil, fmt.Errorf("failed to save public key: %w", err)
	}

	return kp, nil
}

// SavePublicKey writes pub to path in PEM format.
func SavePublicKey(path string, pub *box.PublicKey) error {
	if pub == nil {
		return box.ErrPublicKeyEmpty
	}
	return writePEM(path, &pem.Block{Type: PublicKeyBlockType, Bytes: pub.Bytes()}, 0o644)
}

// SaveSecretKey writes sec to path. An empty passphrase writes the key unsealed.
func SaveSecretKey(path string, sec *box.SecretKey, passphrase []byte) error {
	return saveSecretKey(path, sec, passphrase, DefaultKDFParams)
}

func saveSecretKey(path string, sec *box.SecretKey, passphrase []byte, p KDFParams) error {
	if sec == nil {
		return box.ErrSecretKeyEmpty
	}

	raw := sec.Bytes()
	defer clear(raw)

	block := &pem.Block{Type: SecretKeyBlockType}
	if len(passphrase) == 0 {
		block.Bytes = raw
	} else {
		body, headers, err := seal(raw, passphrase, p)
		if err != nil {
			return fmt.Errorf("failed to seal secret key: %w", err)
		}
		block.Bytes = body
		block.Headers = headers
	}
	return writePEM(path, block, 0o600)
}

// LoadPublicKey reads a public key PEM file.
func LoadPublicKey(path string) (*box.PublicKey, error) {
	block, err := readPEM(path, PublicKeyBlockType)
	if err != nil {
		return nil, err
	}
	return box.PublicKeyFromBytes(block.Bytes)
}

// LoadSecretKey reads a secret key PEM file, unsealing it when it carries KDF headers.
func LoadSecretKey(path string, passphrase []byte) (*box.SecretKey, error) {
	block, err := readPEM(path, SecretKeyBlockType)
	if err != nil {
		return nil, err
	}

	raw := block.Bytes
	if _, sealed := block.Headers[headerKDF]; sealed {
		if len(passphrase) == 0 {
			return nil, ErrPassphraseRequired
		}
		if raw, err = unseal(block.Bytes, passphrase, block.Headers); err != nil {
			return nil, err
		}
	}
	defer clear(raw)

	return box.SecretKeyFromBytes(raw)
}

func writePEM(path string, block *pem.Block, perm os.FileMode) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKeyFileRead, err)
	}
	defer file.Close()

	if err := pem.Encode(file, block); err != nil {
		return fmt.Errorf("failed to encode PEM: %w", err)
	}
	return file.Sync()
}

func readPEM(path, blockType string) (*pem.Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyFileRead, err)
	}

	block, _ := pem.Decode(data)
	if block == nil || block.Type != blockType {
		return nil, ErrInvalidPEMBlock
	}
	return block, nil
}

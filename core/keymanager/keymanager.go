// Package keymanager maps key fingerprints to recipient secret keys so blobs
// can be opened without the caller tracking which key sealed them.
//
// Secret keys are kept in memguard enclaves: encrypted at rest in memory and
// decrypted only for the duration of a lookup.
package keymanager

import (
	"slices"
	"sync"

	"github.com/awnumar/memguard"

	"github.com/kochabx/sealstore/core/crypto/box"
	"github.com/kochabx/sealstore/core/crypto/fingerprint"
	"github.com/kochabx/sealstore/errors"
	"github.com/kochabx/sealstore/log"
)

type entry struct {
	public *box.PublicKey
	secret *memguard.Enclave
}

// Manager is an in-memory fingerprint -> key table. It is safe for concurrent use.
type Manager struct {
	mu     sync.RWMutex
	keys   map[string]entry
	logger *log.Logger
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the logger, defaults to log.G
func WithLogger(logger *log.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// New creates an empty Manager
func New(opts ...Option) *Manager {
	m := &Manager{
		keys:   make(map[string]entry),
		logger: log.G,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddKey stores the pair under the fingerprint of pub and returns it. Adding
// the same public key again replaces the stored secret.
func (m *Manager) AddKey(pub *box.PublicKey, sec *box.SecretKey) (string, error) {
	if pub == nil || sec == nil {
		return "", errors.InvalidArgument("key pair is incomplete")
	}
	derived, err := sec.Public()
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInvalidArgument, "derive public key")
	}
	if !derived.Equals(pub) {
		return "", errors.InvalidArgument("public key does not match secret key")
	}

	fp := fingerprint.Compute(pub[:])

	// NewEnclave wipes its input, so seal a copy
	enclave := memguard.NewEnclave(sec.Bytes())
	if enclave == nil {
		return "", errors.InvalidArgument("secret key is empty")
	}

	pubCopy := *pub

	m.mu.Lock()
	m.keys[fp] = entry{public: &pubCopy, secret: enclave}
	m.mu.Unlock()

	m.logger.Debug().Str("fingerprint", fp).Msg("key added")
	return fp, nil
}

// AddSecretKey derives the public key from sec and stores the pair.
func (m *Manager) AddSecretKey(sec *box.SecretKey) (string, error) {
	pub, err := sec.Public()
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInvalidArgument, "derive public key")
	}
	return m.AddKey(pub, sec)
}

// GetPrivateKey returns a fresh copy of the secret key for fp. The caller
// should Destroy it when done.
func (m *Manager) GetPrivateKey(fp string) (*box.SecretKey, error) {
	m.mu.RLock()
	e, ok := m.keys[fp]
	m.mu.RUnlock()

	if !ok {
		return nil, errors.KeyNotFoundWithMetadata(map[string]string{"fingerprint": fp}, "key not found")
	}

	buf, err := e.secret.Open()
	if err != nil {
		return nil, errors.WrapWithMetadata(err, errors.CodeKeyNotFound,
			map[string]string{"fingerprint": fp}, "key enclave could not be opened")
	}
	defer buf.Destroy()

	sec, err := box.SecretKeyFromBytes(buf.Bytes())
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeKeyNotFound, "stored key is malformed")
	}
	return sec, nil
}

// GetPublicKey returns the public key stored for fp.
func (m *Manager) GetPublicKey(fp string) (*box.PublicKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.keys[fp]
	if !ok {
		return nil, errors.KeyNotFoundWithMetadata(map[string]string{"fingerprint": fp}, "key not found")
	}
	pub := *e.public
	return &pub, nil
}

// HasKey reports whether fp is known. It never fails.
func (m *Manager) HasKey(fp string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.keys[fp]
	return ok
}

// RemoveKey forgets fp and reports whether it was present.
func (m *Manager) RemoveKey(fp string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.keys[fp]; !ok {
		return false
	}
	delete(m.keys, fp)
	m.logger.Debug().Str("fingerprint", fp).Msg("key removed")
	return true
}

// Fingerprints returns the known fingerprints in sorted order.
func (m *Manager) Fingerprints() []string {
	m.mu.RLock()
	fps := make([]string, 0, len(m.keys))
	for fp := range m.keys {
		fps = append(fps, fp)
	}
	m.mu.RUnlock()

	slices.Sort(fps)
	return fps
}

// Len returns the number of stored keys.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.keys)
}

// Purge drops every key.
func (m *Manager) Purge() {
	m.mu.Lock()
	m.keys = make(map[string]entry)
	m.mu.Unlock()
}

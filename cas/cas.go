// Package cas seals plaintext for a recipient key and stores the result
// under the SHA-256 of the sealed blob.
//
// A blob is header ‖ ciphertext, where the header (see package header)
// carries the recipient key fingerprint and clear-text metadata. Every read
// re-hashes the blob before anything else looks at it.
package cas

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/kochabx/sealstore/core/crypto/box"
	"github.com/kochabx/sealstore/core/crypto/fingerprint"
	"github.com/kochabx/sealstore/core/header"
	"github.com/kochabx/sealstore/core/keymanager"
	"github.com/kochabx/sealstore/errors"
	"github.com/kochabx/sealstore/log"
	"github.com/kochabx/sealstore/metrics"
	"github.com/kochabx/sealstore/store"
)

const (
	opPut         = "put"
	opGet         = "get"
	opGetMetadata = "get_metadata"
	opVerify      = "verify"
	opExists      = "exists"
	opDelete      = "delete"
)

// Store is the encrypted, content-addressed front of a store.Adapter.
// It holds no state of its own and is safe for concurrent use.
type Store struct {
	adapter  store.Adapter
	keys     *keymanager.Manager
	logger   *log.Logger
	metrics  *metrics.Collector
	notifier store.Notifier
	now      func() time.Time
	seal     func(*box.PublicKey, []byte) ([]byte, error)
	checksum bool
}

// New returns a Store over adapter. keys may be nil, in which case Get
// needs an explicit secret key.
func New(adapter store.Adapter, keys *keymanager.Manager, opts ...Option) (*Store, error) {
	if adapter == nil {
		return nil, errors.InvalidArgument("storage adapter is required")
	}

	s := &Store{
		adapter: adapter,
		keys:    keys,
		logger:  log.G,
		now:     time.Now,
		seal:    box.Encrypt,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// ContentAddress returns the lowercase hex SHA-256 of blob.
func ContentAddress(blob []byte) string {
	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:])
}

// Put seals plaintext for pub and stores it. md may be nil; algorithm and
// timestamp are filled in when absent. The caller's md is not modified.
func (s *Store) Put(ctx context.Context, plaintext []byte, pub *box.PublicKey, md *header.Metadata) (addr string, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe(opPut, start, err) }()

	if pub == nil {
		return "", errors.InvalidArgument("recipient public key is required")
	}

	var meta header.Metadata
	if md != nil {
		meta = *md
	}
	if meta.Algorithm == "" {
		meta.Algorithm = box.Algorithm
	}
	if meta.Timestamp == 0 {
		meta.Timestamp = s.now().UnixMilli()
	}
	if s.checksum && meta.PlaintextChecksum == "" {
		meta.PlaintextChecksum = ContentAddress(plaintext)
	}

	fp := fingerprint.Compute(pub.Bytes())
	hdr, err := header.Build(&meta, fp)
	if err != nil {
		return "", err
	}

	ciphertext, err := s.seal(pub, plaintext)
	if err != nil {
		return "", errors.Wrap(err, errors.UnknownCode, "encryption failed")
	}

	blob := make([]byte, 0, len(hdr)+len(ciphertext))
	blob = append(blob, hdr...)
	blob = append(blob, ciphertext...)
	addr = ContentAddress(blob)

	if err := s.adapter.Put(ctx, addr, blob); err != nil {
		return "", storageError(err, opPut, addr)
	}

	s.logger.Debug().Str("op", opPut).Str("address", addr).Str("fingerprint", fp).Int("size", len(blob)).Msg("blob stored")

	if err := s.notify(ctx, store.Event{
		Type:        store.EventPut,
		Address:     addr,
		Fingerprint: fp,
		Size:        len(blob),
		Timestamp:   meta.Timestamp,
	}); err != nil {
		return addr, err
	}
	return addr, nil
}

// Get fetches, verifies and opens the blob at addr. An explicit sec takes
// precedence over a Key Manager lookup by the header fingerprint.
func (s *Store) Get(ctx context.Context, addr string, sec *box.SecretKey) (plaintext []byte, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe(opGet, start, err) }()

	blob, h, offset, err := s.load(ctx, addr)
	if err != nil {
		return nil, err
	}

	key := sec
	if key == nil {
		if key, err = s.lookup(h.KeyFingerprint); err != nil {
			return nil, err
		}
		defer key.Destroy()
	}

	plaintext, err = box.Decrypt(key, blob[offset:])
	if err != nil {
		s.metrics.AuthenticationFailure()
		s.logger.Warn().Str("op", opGet).Str("address", addr).Str("fingerprint", h.KeyFingerprint).Msg("decryption failed")
		return nil, errors.NewWithMetadata(errors.CodeAuthentication, map[string]string{"address": addr}, "decryption failed")
	}

	if want := h.Metadata.PlaintextChecksum; want != "" {
		if got := ContentAddress(plaintext); got != want {
			s.metrics.IntegrityFailure(metrics.ReasonChecksum)
			s.logger.Warn().Str("op", opGet).Str("address", addr).Str("expected", want).Str("actual", got).Msg("plaintext checksum mismatch")
			return nil, errors.IntegrityWithMetadata(map[string]string{
				"address":  addr,
				"expected": want,
				"actual":   got,
			}, "plaintext checksum mismatch")
		}
	}

	s.logger.Debug().Str("op", opGet).Str("address", addr).Str("fingerprint", h.KeyFingerprint).Int("size", len(plaintext)).Msg("blob opened")
	return plaintext, nil
}

// GetMetadata returns the clear-text metadata of the blob at addr without
// touching any key material.
func (s *Store) GetMetadata(ctx context.Context, addr string) (md *header.Metadata, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe(opGetMetadata, start, err) }()

	_, h, _, err := s.load(ctx, addr)
	if err != nil {
		return nil, err
	}
	return &h.Metadata, nil
}

// Verify checks that the blob at addr hashes to addr and carries a valid
// header. No key is needed.
func (s *Store) Verify(ctx context.Context, addr string) (h *header.Header, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe(opVerify, start, err) }()

	_, h, _, err = s.load(ctx, addr)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Exists reports whether addr is present in the adapter.
func (s *Store) Exists(ctx context.Context, addr string) (ok bool, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe(opExists, start, err) }()

	if err := validateAddress(addr); err != nil {
		return false, err
	}
	ok, err = s.adapter.Exists(ctx, addr)
	if err != nil {
		return false, storageError(err, opExists, addr)
	}
	return ok, nil
}

// Delete removes addr. Deleting an absent blob is not an error.
func (s *Store) Delete(ctx context.Context, addr string) (err error) {
	start := time.Now()
	defer func() { s.metrics.Observe(opDelete, start, err) }()

	if err := validateAddress(addr); err != nil {
		return err
	}
	if err := s.adapter.Delete(ctx, addr); err != nil {
		return storageError(err, opDelete, addr)
	}

	s.logger.Debug().Str("op", opDelete).Str("address", addr).Msg("blob deleted")
	return s.notify(ctx, store.Event{
		Type:      store.EventDelete,
		Address:   addr,
		Timestamp: s.now().UnixMilli(),
	})
}

// load fetches the blob, checks its address and parses the header.
func (s *Store) load(ctx context.Context, addr string) ([]byte, *header.Header, int, error) {
	if err := validateAddress(addr); err != nil {
		return nil, nil, 0, err
	}

	blob, err := s.adapter.Get(ctx, addr)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, 0, errors.BlobNotFoundWithMetadata(map[string]string{"address": addr}, "blob not found").WithCause(err)
		}
		return nil, nil, 0, storageError(err, opGet, addr)
	}

	if actual := ContentAddress(blob); actual != addr {
		s.metrics.IntegrityFailure(metrics.ReasonAddress)
		s.logger.Warn().Str("address", addr).Str("actual", actual).Msg("content address mismatch")
		return nil, nil, 0, errors.IntegrityWithMetadata(map[string]string{
			"expected": addr,
			"actual":   actual,
		}, "content address mismatch")
	}

	h, offset, err := header.Parse(blob)
	if err != nil {
		s.metrics.FormatFailure()
		s.logger.Warn().Err(err).Str("address", addr).Msg("malformed blob header")
		return nil, nil, 0, err
	}
	return blob, h, offset, nil
}

// lookup resolves a secret key by fingerprint through the Key Manager.
func (s *Store) lookup(fp string) (*box.SecretKey, error) {
	if s.keys == nil {
		s.metrics.LookupFailure()
		return nil, errors.KeyNotFoundWithMetadata(map[string]string{"fingerprint": fp}, "no key manager configured and no key given")
	}
	sec, err := s.keys.GetPrivateKey(fp)
	if err != nil {
		s.metrics.LookupFailure()
		return nil, err
	}
	return sec, nil
}

func (s *Store) notify(ctx context.Context, ev store.Event) error {
	if s.notifier == nil {
		return nil
	}
	if err := s.notifier.Notify(ctx, ev); err != nil {
		s.logger.Warn().Err(err).Str("address", ev.Address).Str("type", string(ev.Type)).Msg("notify failed")
		return errors.WrapWithMetadata(err, errors.CodeStorage, map[string]string{"address": ev.Address}, "notify %s event", ev.Type)
	}
	return nil
}

func validateAddress(addr string) error {
	if err := store.ValidateKey(addr); err != nil {
		return errors.InvalidArgumentWithMetadata(map[string]string{"address": addr}, "invalid content address").WithCause(err)
	}
	return nil
}

func storageError(err error, op, addr string) error {
	return errors.WrapWithMetadata(err, errors.CodeStorage, map[string]string{"op": op, "address": addr}, "adapter %s failed", op)
}

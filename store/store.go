// Package store defines the byte-level contract every backing store
// implements. Keys are content addresses; adapters must return exactly the
// bytes they were given.
package store

import (
	"context"
	"errors"
	"fmt"
)

// KeySize is the length of a content address (hex SHA-256)
const KeySize = 64

var (
	// ErrNotFound is returned by Get when the key is absent
	ErrNotFound = errors.New("store: not found")

	// ErrInvalidKey is returned for keys that are not content addresses
	ErrInvalidKey = errors.New("store: invalid key")

	// ErrClosed is returned after Close
	ErrClosed = errors.New("store: closed")
)

// Adapter is a four-operation byte store.
type Adapter interface {
	// Put stores data under key, replacing any previous value.
	Put(ctx context.Context, key string, data []byte) error
	// Get returns the data stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// ValidateKey checks that key is 64 lowercase hex characters.
func ValidateKey(key string) error {
	if len(key) != KeySize {
		return fmt.Errorf("%w: length %d", ErrInvalidKey, len(key))
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return fmt.Errorf("%w: character %q at %d", ErrInvalidKey, c, i)
		}
	}
	return nil
}

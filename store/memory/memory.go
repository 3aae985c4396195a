// Package memory is an in-process map adapter, mainly for tests and the CLI's
// memory backend.
package memory

import (
	"bytes"
	"context"
	"sync"

	"github.com/kochabx/sealstore/store"
)

// Store is a map-backed store.Adapter. Values are copied on the way in and out.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ store.Adapter = (*Store)(nil)

// New creates an empty Store
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.data[key] = bytes.Clone(data)
	s.mu.Unlock()
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	v, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return nil, store.ErrNotFound
	}
	if v == nil {
		return []byte{}, nil
	}
	return bytes.Clone(v), nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[key]
	return ok, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored keys
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Set writes raw bytes without key validation. Tests use it to plant corrupt blobs.
func (s *Store) Set(key string, data []byte) {
	s.mu.Lock()
	s.data[key] = bytes.Clone(data)
	s.mu.Unlock()
}

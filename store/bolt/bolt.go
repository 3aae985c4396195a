// Package bolt stores blobs in a single bbolt bucket.
package bolt

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/kochabx/sealstore/core/tag"
	"github.com/kochabx/sealstore/store"
)

// Config bbolt 存储配置
type Config struct {
	Path    string        `mapstructure:"path" json:"path" default:"./data/sealstore.db"`
	Bucket  string        `mapstructure:"bucket" json:"bucket" default:"blobs"`
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" default:"1s"`
	NoSync  bool          `mapstructure:"no_sync" json:"noSync"`
}

// Store is a bbolt-backed store.Adapter.
type Store struct {
	db     *bbolt.DB
	bucket []byte
}

var _ store.Adapter = (*Store)(nil)

// Open opens or creates the database and its bucket.
// The parent directory is created if it does not exist.
func Open(config *Config) (*Store, error) {
	if config == nil {
		config = &Config{}
	}
	if err := tag.ApplyDefaults(config); err != nil {
		return nil, fmt.Errorf("bolt store: apply defaults: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(config.Path), 0o700); err != nil {
		return nil, fmt.Errorf("bolt store: create directory: %w", err)
	}
	db, err := bbolt.Open(config.Path, 0o600, &bbolt.Options{Timeout: config.Timeout, NoSync: config.NoSync})
	if err != nil {
		return nil, fmt.Errorf("bolt store: open: %w", err)
	}

	bucket := []byte(config.Bucket)
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bolt store: create bucket %q: %w", bucket, err)
	}

	return &Store{db: db, bucket: bucket}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		// bbolt 不接受 nil 值
		if data == nil {
			data = []byte{}
		}
		return tx.Bucket(s.bucket).Put([]byte(key), data)
	})
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(s.bucket).Get([]byte(key))
		if v == nil {
			return store.ErrNotFound
		}
		// v 只在事务内有效
		out = bytes.Clone(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var ok bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		ok = tx.Bucket(s.bucket).Get([]byte(key)) != nil
		return nil
	})
	return ok, err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
}

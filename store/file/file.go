// Package file stores blobs on the local filesystem, sharded by the first two
// characters of the key: {root}/{key[:2]}/{key}.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kochabx/sealstore/core/tag"
	"github.com/kochabx/sealstore/store"
)

// Config 文件存储配置
type Config struct {
	Root     string      `mapstructure:"root" json:"root" default:"./data"`
	DirMode  fs.FileMode `mapstructure:"dir_mode" json:"dirMode" default:"0700"`
	FileMode fs.FileMode `mapstructure:"file_mode" json:"fileMode" default:"0600"`
}

// Store is a filesystem store.Adapter. Writes are atomic: the blob is written
// to a temporary file in the shard directory, synced and renamed into place.
type Store struct {
	config *Config
}

var _ store.Adapter = (*Store)(nil)

// New creates the root directory if needed
func New(config *Config) (*Store, error) {
	if config == nil {
		config = &Config{}
	}
	if err := tag.ApplyDefaults(config); err != nil {
		return nil, fmt.Errorf("file store: apply defaults: %w", err)
	}
	if err := os.MkdirAll(config.Root, config.DirMode); err != nil {
		return nil, fmt.Errorf("file store: create root: %w", err)
	}
	return &Store{config: config}, nil
}

// Root returns the root directory
func (s *Store) Root() string {
	return s.config.Root
}

func (s *Store) path(key string) string {
	return filepath.Join(s.config.Root, key[:2], key)
}

func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dst := s.path(key)
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, s.config.DirMode); err != nil {
		return fmt.Errorf("file store: create shard %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+key+".tmp-*")
	if err != nil {
		return fmt.Errorf("file store: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("file store: write %q: %w", tmpName, err)
	}
	if err := tmp.Chmod(s.config.FileMode); err != nil {
		return fmt.Errorf("file store: chmod %q: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("file store: sync %q: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file store: close %q: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return fmt.Errorf("file store: rename into %q: %w", dst, err)
	}
	committed = true
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := store.ValidateKey(key); err != nil {
		return nil, store.ErrNotFound
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("file store: read: %w", err)
	}
	return data, nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if store.ValidateKey(key) != nil {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := os.Stat(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("file store: stat: %w", err)
	}
	return true, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if store.ValidateKey(key) != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("file store: remove: %w", err)
	}
	return nil
}

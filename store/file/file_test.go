package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/sealstore/store"
	"github.com/kochabx/sealstore/store/storetest"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(&Config{Root: filepath.Join(t.TempDir(), "blobs")})
	require.NoError(t, err)
	return s
}

func TestAdapter(t *testing.T) {
	storetest.Run(t, newStore(t))
}

func TestShardedLayout(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	data, key := storetest.RandomBlob(t, 100)

	require.NoError(t, s.Put(ctx, key, data))

	path := filepath.Join(s.Root(), key[:2], key)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	dirInfo, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), dirInfo.Mode().Perm())

	// 没有遗留临时文件
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDefaults(t *testing.T) {
	c := &Config{Root: t.TempDir()}
	_, err := New(c)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), c.DirMode)
	assert.Equal(t, os.FileMode(0o600), c.FileMode)
}

func TestGetRejectsTraversal(t *testing.T) {
	s := newStore(t)
	_, err := s.Get(context.Background(), "../../etc/passwd")
	assert.ErrorIs(t, err, store.ErrNotFound)

	ok, err := s.Exists(context.Background(), "../../etc/passwd")
	require.NoError(t, err)
	assert.False(t, ok)
}

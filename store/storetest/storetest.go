// Package storetest holds the behaviour every store.Adapter must share.
package storetest

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/sealstore/store"
)

// Key returns the content address of data
func Key(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// RandomBlob returns n random bytes and their content address
func RandomBlob(t testing.TB, n int) ([]byte, string) {
	t.Helper()
	data := make([]byte, n)
	_, err := rand.Read(data)
	require.NoError(t, err)
	return data, Key(data)
}

// Run exercises a.
func Run(t *testing.T, a store.Adapter) {
	ctx := context.Background()

	t.Run("PutGet", func(t *testing.T) {
		data, key := RandomBlob(t, 1024)
		require.NoError(t, a.Put(ctx, key, data))

		got, err := a.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, data, got)

		ok, err := a.Exists(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("BinarySafe", func(t *testing.T) {
		data := []byte{0x00, 0xFF, 0x00, '\n', '\r', 0x7F, 0x80}
		key := Key(data)
		require.NoError(t, a.Put(ctx, key, data))

		got, err := a.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, key := RandomBlob(t, 16)

		_, err := a.Get(ctx, key)
		assert.ErrorIs(t, err, store.ErrNotFound)

		ok, err := a.Exists(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Delete", func(t *testing.T) {
		data, key := RandomBlob(t, 64)
		require.NoError(t, a.Put(ctx, key, data))
		require.NoError(t, a.Delete(ctx, key))

		ok, err := a.Exists(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = a.Get(ctx, key)
		assert.ErrorIs(t, err, store.ErrNotFound)

		// 删除不存在的 key 不是错误
		assert.NoError(t, a.Delete(ctx, key))
	})

	t.Run("Overwrite", func(t *testing.T) {
		_, key := RandomBlob(t, 8)
		require.NoError(t, a.Put(ctx, key, []byte("first")))
		require.NoError(t, a.Put(ctx, key, []byte("second")))

		got, err := a.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), got)
	})

	t.Run("InvalidKey", func(t *testing.T) {
		for _, key := range []string{"", "../../etc/passwd", Key(nil)[:63], "A" + Key(nil)[1:]} {
			assert.ErrorIs(t, a.Put(ctx, key, []byte("x")), store.ErrInvalidKey, "key %q", key)
		}
	})

	t.Run("Concurrent", func(t *testing.T) {
		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				data, key := RandomBlob(t, 256)
				if !assert.NoError(t, a.Put(ctx, key, data)) {
					return
				}
				got, err := a.Get(ctx, key)
				if assert.NoError(t, err) {
					assert.Equal(t, data, got)
				}
			}()
		}
		wg.Wait()
	})
}

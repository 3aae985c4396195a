package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/sealstore/store/storetest"
)

func TestAdapter(t *testing.T) {
	storetest.Run(t, New())
}

func TestCopiesData(t *testing.T) {
	ctx := context.Background()
	s := New()
	data, key := storetest.RandomBlob(t, 32)

	require.NoError(t, s.Put(ctx, key, data))
	data[0] ^= 0xFF

	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.NotEqual(t, data[0], got[0])

	got[1] ^= 0xFF
	again, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.NotEqual(t, got[1], again[1])
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, key := storetest.RandomBlob(t, 8)
	assert.ErrorIs(t, New().Put(ctx, key, nil), context.Canceled)
}

package redis

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/sealstore/log"
	"github.com/kochabx/sealstore/store"
	"github.com/kochabx/sealstore/store/storetest"
)

// setupTestStore 连接本地 Redis，不可用时跳过
func setupTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cfg := Single("localhost:6379")
	cfg.DB = 15
	cfg.DialTimeout = time.Second

	s, err := New(ctx, cfg, opts...)
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.ApplyDefaults())

	assert.Equal(t, []string{"localhost:6379"}, cfg.Addrs)
	assert.Equal(t, 3, cfg.Protocol)
	assert.Equal(t, "sealstore:blob:", cfg.Prefix)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
	assert.Equal(t, 8*time.Millisecond, cfg.MinRetryBackoff)
	assert.Equal(t, 5*time.Minute, cfg.MaxIdleTime)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	assert.ErrorIs(t, (&Config{}).Validate(), ErrEmptyAddrs)
	assert.ErrorIs(t, (&Config{Addrs: []string{"x:1"}, TTL: -time.Second}).Validate(), ErrInvalidTimeout)
	assert.ErrorIs(t, (&Config{Addrs: []string{"x:1"}, ReadTimeout: -1}).Validate(), ErrInvalidTimeout)
}

func TestConfigMode(t *testing.T) {
	assert.False(t, Single("a:1").IsCluster())
	assert.True(t, Cluster("a:1", "b:1").IsCluster())
	assert.True(t, Sentinel("mymaster", "a:1", "b:1").IsSentinel())
	assert.False(t, Sentinel("mymaster", "a:1", "b:1").IsCluster())
}

func TestOptionOverrides(t *testing.T) {
	cfg := &Config{Prefix: "p:"}
	collect(cfg, []Option{WithPrefix(""), WithTTL(time.Hour), WithDB(2), WithPoolSize(7), nil})

	assert.Equal(t, "", cfg.Prefix)
	assert.Equal(t, time.Hour, cfg.TTL)
	assert.Equal(t, 2, cfg.DB)
	assert.Equal(t, 7, cfg.PoolSize)
}

func TestNewNilConfig(t *testing.T) {
	_, err := New(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestAdapter(t *testing.T) {
	storetest.Run(t, setupTestStore(t))
}

func TestPrefix(t *testing.T) {
	s := setupTestStore(t, WithPrefix("sealstore-test:"))
	ctx := context.Background()

	data, key := storetest.RandomBlob(t, 32)
	require.NoError(t, s.Put(ctx, key, data))
	t.Cleanup(func() { _ = s.Delete(ctx, key) })

	n, err := s.UniversalClient().Exists(ctx, "sealstore-test:"+key).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestDebugHookOmitsValue(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWriter(&buf, log.WithLevel(zerolog.DebugLevel))
	s := setupTestStore(t, WithLogger(logger), WithDebug(time.Nanosecond))
	ctx := context.Background()

	data := []byte("blob-content-should-not-be-logged")
	key := storetest.Key(data)
	require.NoError(t, s.Put(ctx, key, data))
	t.Cleanup(func() { _ = s.Delete(ctx, key) })

	assert.Contains(t, buf.String(), key)
	assert.NotContains(t, buf.String(), string(data))

	_, err := s.Get(ctx, storetest.Key([]byte("absent")))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

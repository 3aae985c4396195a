package etcd

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/sealstore/store"
	"github.com/kochabx/sealstore/store/storetest"
)

// getTestEndpoint 获取测试用的 etcd 端点
func getTestEndpoint() string {
	if endpoint := os.Getenv("ETCD_ENDPOINT"); endpoint != "" {
		return endpoint
	}
	return "localhost:2379"
}

// setupTestStore 连接 etcd，不可用时跳过
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	e, err := New(ctx, &Config{
		Endpoints:      []string{getTestEndpoint()},
		DialTimeout:    time.Second,
		RequestTimeout: 2 * time.Second,
		Prefix:         "/sealstore-test/",
	})
	if err != nil {
		t.Skipf("etcd not available: %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestConfigInit(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		check  func(t *testing.T, c *Config)
	}{
		{
			name:   "empty config should set defaults",
			config: &Config{},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, []string{"localhost:2379"}, c.Endpoints)
				assert.Equal(t, 5*time.Second, c.DialTimeout)
				assert.Equal(t, 30*time.Second, c.KeepAliveTime)
				assert.Equal(t, 2097152, c.MaxSendMsgSize)
				assert.Equal(t, "/sealstore/blobs/", c.Prefix)
				assert.Empty(t, c.Username)
			},
		},
		{
			name:   "partial config should keep existing values",
			config: &Config{Endpoints: []string{"custom:2379"}, DialTimeout: time.Second},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, []string{"custom:2379"}, c.Endpoints)
				assert.Equal(t, time.Second, c.DialTimeout)
				assert.Equal(t, 4194304, c.MaxRecvMsgSize)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.config.init())
			tt.check(t, tt.config)
		})
	}
}

func TestNewNilConfig(t *testing.T) {
	_, err := New(context.Background(), nil)
	assert.ErrorIs(t, err, ErrConfigRequired)
}

func TestClosedStore(t *testing.T) {
	e := &Store{config: &Config{}}
	key := storetest.Key([]byte("x"))

	assert.ErrorIs(t, e.Put(context.Background(), key, []byte("x")), store.ErrClosed)
	_, err := e.Get(context.Background(), key)
	assert.ErrorIs(t, err, store.ErrClosed)
	assert.ErrorIs(t, e.Ping(context.Background()), ErrEtcdNotInitialized)
	assert.NoError(t, e.Close())
}

func TestAdapter(t *testing.T) {
	storetest.Run(t, setupTestStore(t))
}

func TestPrefix(t *testing.T) {
	e := setupTestStore(t)
	ctx := context.Background()

	data, key := storetest.RandomBlob(t, 16)
	require.NoError(t, e.Put(ctx, key, data))
	t.Cleanup(func() { _ = e.Delete(ctx, key) })

	resp, err := e.Client().Get(ctx, "/sealstore-test/"+key)
	require.NoError(t, err)
	require.Len(t, resp.Kvs, 1)
	assert.Equal(t, data, resp.Kvs[0].Value)
}

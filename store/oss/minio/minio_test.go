package minio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/sealstore/store/storetest"
)

const (
	testEndpoint  = "localhost:9000"
	testAccessKey = "minioadmin"
	testSecretKey = "minioadmin"
	testBucket    = "sealstore-test"
)

// setupTestStore 连接本地 MinIO，不可用时跳过
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	s, err := New(ctx, &Config{
		Endpoint:        testEndpoint,
		AccessKeyID:     testAccessKey,
		SecretAccessKey: testSecretKey,
		Bucket:          testBucket,
		Prefix:          "blobs/",
	}, WithUseSSL(false), WithCreateBucket(true), WithRequestTimeout(10*time.Second))
	if err != nil {
		t.Skipf("minio not available: %v", err)
	}
	return s
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
	}{
		{
			name:   "valid config",
			config: Config{Endpoint: testEndpoint, AccessKeyID: testAccessKey, SecretAccessKey: testSecretKey, Bucket: testBucket},
		},
		{
			name:        "empty endpoint",
			config:      Config{AccessKeyID: testAccessKey, SecretAccessKey: testSecretKey, Bucket: testBucket},
			expectError: true,
		},
		{
			name:        "empty access key",
			config:      Config{Endpoint: testEndpoint, SecretAccessKey: testSecretKey, Bucket: testBucket},
			expectError: true,
		},
		{
			name:        "empty secret key",
			config:      Config{Endpoint: testEndpoint, AccessKeyID: testAccessKey, Bucket: testBucket},
			expectError: true,
		},
		{
			name:        "empty bucket",
			config:      Config{Endpoint: testEndpoint, AccessKeyID: testAccessKey, SecretAccessKey: testSecretKey},
			expectError: true,
		},
		{
			name:        "negative timeout",
			config:      Config{Endpoint: testEndpoint, AccessKeyID: testAccessKey, SecretAccessKey: testSecretKey, Bucket: testBucket, RequestTimeout: -time.Second},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(context.Background(), &Config{Endpoint: testEndpoint})
	require.Error(t, err)
}

func TestObjectName(t *testing.T) {
	s := &Store{config: &Config{Prefix: "blobs/"}}
	_, key := storetest.RandomBlob(t, 8)
	assert.Equal(t, "blobs/"+key, s.objectName(key))
}

func TestAdapter(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	storetest.Run(t, s)
}

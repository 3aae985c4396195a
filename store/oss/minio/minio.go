// Package minio stores blobs as objects in a MinIO or S3 compatible bucket.
package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/kochabx/sealstore/core/tag"
	"github.com/kochabx/sealstore/store"
)

const contentType = "application/octet-stream"

// Store 对象存储适配器
type Store struct {
	config *Config
	client *minio.Client
}

var _ store.Adapter = (*Store)(nil)

// New 创建对象存储适配器。CreateBucket 为 true 时确保存储桶存在
func New(ctx context.Context, config *Config, opts ...Option) (*Store, error) {
	if config == nil {
		config = &Config{}
	}
	if err := tag.ApplyDefaults(config); err != nil {
		return nil, fmt.Errorf("minio: apply defaults: %w", err)
	}
	for _, opt := range opts {
		opt(config)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:      credentials.NewStaticV4(config.AccessKeyID, config.SecretAccessKey, ""),
		Secure:     config.UseSSL,
		Region:     config.Region,
		MaxRetries: config.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	s := &Store{config: config, client: client}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureBucket(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	exists, err := s.client.BucketExists(ctx, s.config.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if !s.config.CreateBucket {
		return fmt.Errorf("%w: %s", ErrBucketNotFound, s.config.Bucket)
	}

	err = s.client.MakeBucket(ctx, s.config.Bucket, minio.MakeBucketOptions{Region: s.config.Region})
	if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
		return fmt.Errorf("failed to create bucket %s: %w", s.config.Bucket, err)
	}
	return nil
}

// Client 返回底层 minio 客户端
func (s *Store) Client() *minio.Client {
	return s.client
}

// Close 当前 minio.Client 没有需要清理的资源
func (s *Store) Close() error {
	return nil
}

func (s *Store) objectName(key string) string {
	return s.config.Prefix + key
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.RequestTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.config.RequestTimeout)
}

func (s *Store) objectError(op, key string, err error) error {
	return &ObjectError{Op: op, Bucket: s.config.Bucket, Object: s.objectName(key), Err: err}
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}

func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.PutObject(ctx, s.config.Bucket, s.objectName(key),
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return s.objectError("put", key, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	obj, err := s.client.GetObject(ctx, s.config.Bucket, s.objectName(key), minio.GetObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, store.ErrNotFound
		}
		return nil, s.objectError("get", key, err)
	}
	defer obj.Close()

	// GetObject 是惰性的，不存在的错误在第一次读取时返回
	data, err := io.ReadAll(obj)
	if err != nil {
		if isNotFound(err) {
			return nil, store.ErrNotFound
		}
		return nil, s.objectError("get", key, err)
	}
	return data, nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.StatObject(ctx, s.config.Bucket, s.objectName(key), minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, s.objectError("stat", key, err)
	}
	return true, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.client.RemoveObject(ctx, s.config.Bucket, s.objectName(key), minio.RemoveObjectOptions{})
	if err != nil && !isNotFound(err) {
		return s.objectError("delete", key, err)
	}
	return nil
}

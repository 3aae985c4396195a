package minio

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEmptyBucketName = errors.New("minio: bucket name is required")
	ErrBucketNotFound  = errors.New("minio: bucket does not exist")
)

// ObjectError 单个对象请求失败，Err 为 minio 返回的原始错误
type ObjectError struct {
	Op     string
	Bucket string
	Object string
	Err    error
}

func (e *ObjectError) Error() string {
	return fmt.Sprintf("minio: %s %s/%s: %v", e.Op, e.Bucket, e.Object, e.Err)
}

func (e *ObjectError) Unwrap() error { return e.Err }

// Config MinIO / S3 兼容存储配置
type Config struct {
	// 连接配置
	Endpoint        string `mapstructure:"endpoint" json:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id" json:"accessKeyID"`
	SecretAccessKey string `mapstructure:"secret_access_key" json:"-"`
	UseSSL          bool   `mapstructure:"use_ssl" json:"useSSL"`
	Region          string `mapstructure:"region" json:"region"`

	// 存储位置
	Bucket       string `mapstructure:"bucket" json:"bucket" default:"sealstore"`
	Prefix       string `mapstructure:"prefix" json:"prefix"`
	CreateBucket bool   `mapstructure:"create_bucket" json:"createBucket"`

	// 单次请求超时，0 表示只使用调用方的 context
	RequestTimeout time.Duration `mapstructure:"request_timeout" json:"requestTimeout" default:"30s"`
	MaxRetries     int           `mapstructure:"max_retries" json:"maxRetries" default:"3"`
}

// Validate 检查必填项
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("minio: endpoint is required")
	}
	if c.AccessKeyID == "" {
		return errors.New("minio: access key id is required")
	}
	if c.SecretAccessKey == "" {
		return errors.New("minio: secret access key is required")
	}
	if c.Bucket == "" {
		return ErrEmptyBucketName
	}
	if c.RequestTimeout < 0 {
		return errors.New("minio: negative request timeout")
	}
	return nil
}

// Option 在默认值之后覆盖配置
type Option func(*Config)

// WithUseSSL 是否通过 HTTPS 访问
func WithUseSSL(useSSL bool) Option {
	return func(c *Config) {
		c.UseSSL = useSSL
	}
}

// WithRegion 设置区域
func WithRegion(region string) Option {
	return func(c *Config) {
		c.Region = region
	}
}

// WithPrefix 设置对象名前缀
func WithPrefix(prefix string) Option {
	return func(c *Config) {
		c.Prefix = prefix
	}
}

// WithCreateBucket 启动时自动创建存储桶
func WithCreateBucket(create bool) Option {
	return func(c *Config) {
		c.CreateBucket = create
	}
}

// WithRequestTimeout 设置请求超时时间
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.RequestTimeout = timeout
	}
}

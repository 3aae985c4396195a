// Package mongo stores sealed blobs as binary documents keyed by content
// address.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/kochabx/sealstore/log"
)

var (
	// ErrConfigRequired nil 配置
	ErrConfigRequired = errors.New("mongo: config is required")
	// ErrConnectionFailed 建立连接失败，原始错误保留在链上
	ErrConnectionFailed = errors.New("mongo: connect failed")
)

// Option 调整 Client 的构造行为
type Option func(*Client)

// WithLogger 设置日志记录器，默认使用 log.G
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// Client 持有 mongo.Client 与对应配置
type Client struct {
	client *mongo.Client
	config *Config
	logger *log.Logger
}

// New 连接 MongoDB 并在 config.Timeout 内完成 Ping
func New(ctx context.Context, config *Config, opts ...Option) (*Client, error) {
	if config == nil {
		return nil, ErrConfigRequired
	}
	if err := config.Init(); err != nil {
		return nil, err
	}

	c := &Client{config: config, logger: log.G}
	for _, opt := range opts {
		opt(c)
	}

	co := options.Client().
		ApplyURI(config.uri()).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetBSONOptions(&options.BSONOptions{UseJSONStructTags: true, NilSliceAsEmpty: true}).
		SetMaxPoolSize(uint64(config.MaxPoolSize)).
		SetConnectTimeout(config.Timeout).
		SetServerSelectionTimeout(config.Timeout)

	client, err := mongo.Connect(ctx, co)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	c.client = client

	pingCtx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		_ = c.Close()
		return nil, err
	}

	c.logger.Debug().Str("host", config.Host).Int("port", config.Port).Str("database", config.Database).Msg("mongo client created")
	return c, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Close 断开连接，可重复调用
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	err := c.client.Disconnect(context.Background())
	c.client = nil
	return err
}

// Collection 返回对象所在集合
func (c *Client) Collection() *mongo.Collection {
	return c.client.Database(c.config.Database).Collection(c.config.Collection)
}

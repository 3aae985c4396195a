package redis

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kochabx/sealstore/log"
)

// Option 调整 Store 的构造行为
type Option func(*settings)

type settings struct {
	logger    *log.Logger
	overrides []func(*Config)
	hooks     []redis.Hook
	telemetry bool
	debug     bool
	slow      time.Duration
}

// WithLogger 设置日志记录器，默认使用 log.G
func WithLogger(logger *log.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithPrefix 覆盖键前缀，空字符串表示不加前缀
func WithPrefix(prefix string) Option {
	return override(func(c *Config) { c.Prefix = prefix })
}

// WithTTL 覆盖对象过期时间
func WithTTL(ttl time.Duration) Option {
	return override(func(c *Config) { c.TTL = ttl })
}

// WithDB 覆盖数据库索引，集群模式下无效
func WithDB(db int) Option {
	return override(func(c *Config) { c.DB = db })
}

func WithPoolSize(n int) Option {
	return override(func(c *Config) { c.PoolSize = n })
}

// WithHooks 追加自定义 redis.Hook
func WithHooks(hooks ...redis.Hook) Option {
	return func(s *settings) { s.hooks = append(s.hooks, hooks...) }
}

// WithTelemetry 通过 redisotel 接入 OpenTelemetry 追踪与指标
func WithTelemetry() Option {
	return func(s *settings) { s.telemetry = true }
}

// WithDebug 以 debug 级别记录每条命令；threshold > 0 时超时命令以 warn 级别上报
func WithDebug(threshold time.Duration) Option {
	return func(s *settings) {
		s.debug = true
		s.slow = threshold
	}
}

func override(fn func(*Config)) Option {
	return func(s *settings) { s.overrides = append(s.overrides, fn) }
}

// collect 执行所有选项，并把配置覆盖项写回 cfg
func collect(cfg *Config, opts []Option) *settings {
	s := &settings{}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	for _, fn := range s.overrides {
		fn(cfg)
	}
	return s
}

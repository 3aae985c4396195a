// Package redis stores sealed blobs as plain string values in Redis.
package redis

import (
	"context"
	"errors"
	"runtime"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/kochabx/sealstore/log"
	"github.com/kochabx/sealstore/store"
)

// Store Redis 对象存储（支持单机/集群/哨兵模式）
type Store struct {
	client redis.UniversalClient
	config *Config
	logger *log.Logger
}

var _ store.Adapter = (*Store)(nil)

// New 创建 Redis 存储
// 根据配置自动选择单机/集群/哨兵模式，创建后立即 Ping
func New(ctx context.Context, cfg *Config, opts ...Option) (*Store, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}

	st := collect(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := st.logger
	if logger == nil {
		logger = log.G
	}

	s := &Store{
		config: cfg,
		logger: logger,
		client: redis.NewUniversalClient(buildUniversalOptions(cfg)),
	}

	var success bool
	defer func() {
		if !success {
			s.client.Close()
		}
	}()

	if err := s.instrument(st); err != nil {
		return nil, err
	}
	if err := s.Ping(ctx); err != nil {
		return nil, err
	}

	success = true
	s.logger.Debug().Str("mode", s.mode()).Strs("addrs", cfg.Addrs).Str("prefix", cfg.Prefix).Msg("redis store created")
	return s, nil
}

// buildUniversalOptions 构建 redis.UniversalOptions
func buildUniversalOptions(cfg *Config) *redis.UniversalOptions {
	poolSize := cfg.PoolSize
	if poolSize == 0 {
		poolSize = 10 * runtime.GOMAXPROCS(0)
	}

	return &redis.UniversalOptions{
		Addrs:      cfg.Addrs,
		MasterName: cfg.MasterName,
		Username:   cfg.Username,
		Password:   cfg.Password,
		DB:         cfg.DB,
		Protocol:   cfg.Protocol,

		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,

		PoolSize:        poolSize,
		MinIdleConns:    cfg.MinIdleConns,
		ConnMaxIdleTime: cfg.MaxIdleTime,
		ConnMaxLifetime: cfg.MaxLifetime,
		PoolTimeout:     cfg.PoolTimeout,

		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: cfg.MinRetryBackoff,
		MaxRetryBackoff: cfg.MaxRetryBackoff,

		MaxRedirects:   cfg.MaxRedirects,
		ReadOnly:       cfg.ReadOnly,
		RouteByLatency: cfg.RouteByLatency,
		RouteRandomly:  cfg.RouteRandomly,
	}
}

// instrument 挂载自定义钩子、OpenTelemetry 与命令日志
func (s *Store) instrument(st *settings) error {
	for _, hook := range st.hooks {
		s.client.AddHook(hook)
	}
	if st.telemetry || s.config.Telemetry {
		if err := redisotel.InstrumentTracing(s.client); err != nil {
			return err
		}
		if err := redisotel.InstrumentMetrics(s.client); err != nil {
			return err
		}
	}
	if st.debug || s.config.SlowThreshold > 0 {
		slow := st.slow
		if slow == 0 {
			slow = s.config.SlowThreshold
		}
		s.client.AddHook(&commandHook{logger: s.logger, slow: slow})
	}
	return nil
}

// UniversalClient 获取底层 redis.UniversalClient
func (s *Store) UniversalClient() redis.UniversalClient {
	return s.client
}

// Ping 测试连接
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close 关闭客户端
func (s *Store) Close() error {
	err := s.client.Close()
	s.logger.Debug().Msg("redis store closed")
	return err
}

func (s *Store) mode() string {
	switch {
	case s.config.IsSentinel():
		return "sentinel"
	case s.config.IsCluster():
		return "cluster"
	default:
		return "single"
	}
}

func (s *Store) redisKey(key string) string {
	return s.config.Prefix + key
}

// Put 写入对象，已存在时覆盖
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}
	return s.client.Set(ctx, s.redisKey(key), data, s.config.TTL).Err()
}

// Get 读取对象
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if store.ValidateKey(key) != nil {
		return nil, store.ErrNotFound
	}
	data, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Exists 检查对象是否存在
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if store.ValidateKey(key) != nil {
		return false, nil
	}
	n, err := s.client.Exists(ctx, s.redisKey(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete 删除对象，不存在时不报错
func (s *Store) Delete(ctx context.Context, key string) error {
	if store.ValidateKey(key) != nil {
		return nil
	}
	return s.client.Del(ctx, s.redisKey(key)).Err()
}

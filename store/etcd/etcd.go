// Package etcd stores sealed blobs as etcd values. etcd caps request size
// (1.5 MiB by default on the server), so it suits small objects only.
package etcd

import (
	"context"
	"errors"
	"fmt"
	"sync"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/kochabx/sealstore/log"
	"github.com/kochabx/sealstore/store"
)

var (
	ErrConfigRequired     = errors.New("etcd: config is required")
	ErrConnectionFailed   = errors.New("etcd: connect failed")
	ErrEtcdNotInitialized = errors.New("etcd: no client")
)

// Store 以 <Prefix><content address> 为键保存对象
type Store struct {
	config *Config
	logger *log.Logger

	mu     sync.RWMutex
	client *clientv3.Client
}

var _ store.Adapter = (*Store)(nil)

type Option func(*Store)

// WithLogger 设置日志记录器，默认使用 log.G
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New 连接 etcd 并通过第一个 endpoint 的 Status 确认可用
func New(ctx context.Context, config *Config, opts ...Option) (*Store, error) {
	if config == nil {
		return nil, ErrConfigRequired
	}
	if err := config.init(); err != nil {
		return nil, err
	}

	s := &Store{config: config, logger: log.G}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	client, err := clientv3.New(clientv3.Config{
		Endpoints:            config.Endpoints,
		Username:             config.Username,
		Password:             config.Password,
		DialTimeout:          config.DialTimeout,
		DialKeepAliveTime:    config.KeepAliveTime,
		DialKeepAliveTimeout: config.KeepAliveTimeout,
		AutoSyncInterval:     config.AutoSyncInterval,
		MaxCallSendMsgSize:   config.MaxSendMsgSize,
		MaxCallRecvMsgSize:   config.MaxRecvMsgSize,
		RejectOldCluster:     config.RejectOldCluster,
		PermitWithoutStream:  config.PermitWithoutStream,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	s.client = client

	if err := s.Ping(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	s.logger.Debug().Strs("endpoints", config.Endpoints).Str("prefix", config.Prefix).Msg("etcd store created")
	return s, nil
}

func (s *Store) Ping(ctx context.Context) error {
	c := s.Client()
	if c == nil {
		return ErrEtcdNotInitialized
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	_, err := c.Status(ctx, s.config.Endpoints[0])
	return err
}

// Client 返回底层客户端，Close 之后为 nil
func (s *Store) Client() *clientv3.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

// Close 可重复调用
func (s *Store) Close() error {
	s.mu.Lock()
	c := s.client
	s.client = nil
	s.mu.Unlock()

	if c == nil {
		return nil
	}
	return c.Close()
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.config.RequestTimeout)
}

// kv 返回键值客户端与完整键；Close 之后返回 store.ErrClosed
func (s *Store) kv(key string) (clientv3.KV, string, error) {
	c := s.Client()
	if c == nil {
		return nil, "", store.ErrClosed
	}
	return c, s.config.Prefix + key, nil
}

func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}
	kv, k, err := s.kv(key)
	if err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err = kv.Put(ctx, k, string(data))
	return err
}

// Get 空值返回非 nil 的空切片
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if store.ValidateKey(key) != nil {
		return nil, store.ErrNotFound
	}
	kv, k, err := s.kv(key)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := kv.Get(ctx, k)
	switch {
	case err != nil:
		return nil, err
	case len(resp.Kvs) == 0:
		return nil, store.ErrNotFound
	case resp.Kvs[0].Value == nil:
		return []byte{}, nil
	}
	return resp.Kvs[0].Value, nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if store.ValidateKey(key) != nil {
		return false, nil
	}
	kv, k, err := s.kv(key)
	if err != nil {
		return false, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := kv.Get(ctx, k, clientv3.WithCountOnly())
	if err != nil {
		return false, err
	}
	return resp.Count > 0, nil
}

// Delete 键不存在时不报错
func (s *Store) Delete(ctx context.Context, key string) error {
	if store.ValidateKey(key) != nil {
		return nil
	}
	kv, k, err := s.kv(key)
	if err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err = kv.Delete(ctx, k)
	return err
}

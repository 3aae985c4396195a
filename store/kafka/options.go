package kafka

import (
	"github.com/segmentio/kafka-go"

	"github.com/kochabx/sealstore/log"
)

// Option 调整 Client 的构造行为
type Option func(*settings)

type settings struct {
	logger    *log.Logger
	dialer    *kafka.Dialer
	overrides []func(*Config)
}

func WithLogger(logger *log.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithDialer 替换消费者使用的 Dialer，认证与超时配置随之失效
func WithDialer(dialer *kafka.Dialer) Option {
	return func(s *settings) { s.dialer = dialer }
}

// WithBrokers 覆盖 Broker 地址
func WithBrokers(brokers ...string) Option {
	return override(func(c *Config) { c.Brokers = brokers })
}

// WithTopic 覆盖事件主题
func WithTopic(topic string) Option {
	return override(func(c *Config) { c.Topic = topic })
}

// WithAuth 启用 SASL/PLAIN 认证
func WithAuth(username, password string) Option {
	return override(func(c *Config) {
		c.Username = username
		c.Password = password
	})
}

func WithBalancer(b Balancer) Option {
	return override(func(c *Config) { c.Balancer = b })
}

func override(fn func(*Config)) Option {
	return func(s *settings) { s.overrides = append(s.overrides, fn) }
}

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

// Package kafka publishes and consumes store change events.
package kafka

import (
	"context"
	"sync"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"golang.org/x/sync/errgroup"

	"github.com/kochabx/sealstore/log"
)

// Client Kafka 客户端封装，按主题缓存生产者和消费者
type Client struct {
	config    *Config
	dialer    *kafka.Dialer
	transport *kafka.Transport
	logger    *log.Logger

	mu        sync.Mutex
	producers map[string]*kafka.Writer
	consumers map[string]*kafka.Reader
	closed    bool
}

// New 创建新的 Kafka 客户端实例，不会立即连接 Broker
func New(cfg *Config, opts ...Option) (*Client, error) {
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
	dialer := st.dialer
	if dialer == nil {
		dialer = &kafka.Dialer{Timeout: cfg.Timeout, DualStack: true}
	}
	transport := &kafka.Transport{DialTimeout: cfg.Timeout}

	// 用户名和密码同时设置才启用 SASL
	if cfg.Username != "" && cfg.Password != "" {
		mech := plain.Mechanism{Username: cfg.Username, Password: cfg.Password}
		transport.SASL = mech
		if st.dialer == nil {
			dialer.SASLMechanism = mech
		}
	}

	return &Client{
		config:    cfg,
		dialer:    dialer,
		transport: transport,
		logger:    logger,
		producers: make(map[string]*kafka.Writer),
		consumers: make(map[string]*kafka.Reader),
	}, nil
}

// Config 返回客户端配置
func (c *Client) Config() *Config {
	return c.config
}

// Producer 返回主题对应的同步生产者，首次调用时创建
func (c *Client) Producer(topic string) (*kafka.Writer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClientClosed
	}
	w, ok := c.producers[topic]
	if !ok {
		w = &kafka.Writer{
			Addr:                   kafka.TCP(c.config.Brokers...),
			Topic:                  topic,
			Balancer:               c.config.balancer(),
			Transport:              c.transport,
			AllowAutoTopicCreation: c.config.AllowAutoTopicCreation,
			WriteTimeout:           c.config.WriteTimeout,
			RequiredAcks:           kafka.RequireAll,
		}
		c.producers[topic] = w
	}
	return w, nil
}

// Consumer 返回主题与消费者组对应的 Reader；groupID 为空时读取 Config.Partition
func (c *Client) Consumer(topic, groupID string) (*kafka.Reader, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClientClosed
	}
	key := topic + "/" + groupID
	if r, ok := c.consumers[key]; ok {
		return r, nil
	}

	rc := kafka.ReaderConfig{
		Brokers:  c.config.Brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: c.config.MinBytes,
		MaxBytes: c.config.MaxBytes,
		Dialer:   c.dialer,
	}
	if groupID == "" {
		rc.Partition = c.config.Partition
	}
	r := kafka.NewReader(rc)
	c.consumers[key] = r
	return r, nil
}

// Close 并行关闭所有的生产者和消费者
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	ctx, cancel := context.WithTimeout(context.Background(), c.config.CloseTimeout)
	defer cancel()

	var eg errgroup.Group
	for _, w := range c.producers {
		eg.Go(w.Close)
	}
	for _, r := range c.consumers {
		eg.Go(r.Close)
	}

	done := make(chan error, 1)
	go func() { done <- eg.Wait() }()

	select {
	case err := <-done:
		c.logger.Debug().Int("producers", len(c.producers)).Int("consumers", len(c.consumers)).Msg("kafka client closed")
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

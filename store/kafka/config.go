package kafka

import (
	"errors"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/kochabx/sealstore/core/tag"
)

var (
	// ErrClientClosed 客户端关闭后不再创建生产者或消费者
	ErrClientClosed = errors.New("kafka: use of closed client")
	// ErrInvalidConfig nil 配置
	ErrInvalidConfig = errors.New("kafka: config is required")
	// ErrEmptyBrokers 未配置 Broker
	ErrEmptyBrokers = errors.New("kafka: no broker configured")
	// ErrEmptyTopic 未配置事件主题
	ErrEmptyTopic = errors.New("kafka: no topic configured")
)

// Config Kafka 客户端配置
type Config struct {
	// Brokers Kafka Broker 地址列表
	Brokers []string `json:"brokers" mapstructure:"brokers" default:"localhost:9092"`

	// SASL/PLAIN 认证，用户名和密码都设置时启用
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`

	// Topic 事件主题
	Topic string `json:"topic" mapstructure:"topic" default:"sealstore.events"`

	// Balancer 负载均衡策略
	// 0: LeastBytes (默认)
	// 1: Hash，同一内容地址的事件落在同一分区
	Balancer Balancer `json:"balancer" mapstructure:"balancer"`

	// Partition 指定分区 (仅用于 Consumer，ConsumerGroup 忽略)
	Partition int `json:"partition" mapstructure:"partition"`

	// AllowAutoTopicCreation 是否允许自动创建 Topic
	AllowAutoTopicCreation bool `json:"allowAutoTopicCreation" mapstructure:"allow_auto_topic_creation"`

	// Timeout 连接超时时间
	Timeout time.Duration `json:"timeout" mapstructure:"timeout" default:"3s"`

	// WriteTimeout 单次写入超时时间
	WriteTimeout time.Duration `json:"writeTimeout" mapstructure:"write_timeout" default:"10s"`

	// CloseTimeout 关闭超时时间
	CloseTimeout time.Duration `json:"closeTimeout" mapstructure:"close_timeout" default:"5s"`

	// MinBytes 最小批处理字节数
	MinBytes int `json:"minBytes" mapstructure:"min_bytes" default:"1"`

	// MaxBytes 最大批处理字节数
	MaxBytes int `json:"maxBytes" mapstructure:"max_bytes" default:"1048576"` // 1MB
}

// Balancer 负载均衡策略枚举
type Balancer int

const (
	BalancerLeastBytes Balancer = iota
	BalancerHash
)

// ApplyDefaults 应用默认值
func (c *Config) ApplyDefaults() error {
	return tag.ApplyDefaults(c)
}

// Validate 校验配置
func (c *Config) Validate() error {
	if len(c.Brokers) == 0 {
		return ErrEmptyBrokers
	}
	if c.Topic == "" {
		return ErrEmptyTopic
	}
	return nil
}

// balancer 获取 kafka-go 的 Balancer 实现
func (c *Config) balancer() kafka.Balancer {
	switch c.Balancer {
	case BalancerHash:
		return &kafka.Hash{}
	default:
		return &kafka.LeastBytes{}
	}
}

package redis

import (
	"errors"
	"time"

	"github.com/kochabx/sealstore/core/tag"
)

var (
	// ErrInvalidConfig nil 配置
	ErrInvalidConfig = errors.New("redis: config is required")
	// ErrEmptyAddrs 未配置任何地址
	ErrEmptyAddrs = errors.New("redis: no address configured")
	// ErrInvalidTimeout 超时或 TTL 为负
	ErrInvalidTimeout = errors.New("redis: negative timeout or ttl")
)

// Config Redis 统一配置（支持单机/集群/哨兵模式）
type Config struct {
	// Addrs Redis 地址列表
	// 单机模式: ["localhost:6379"]
	// 集群模式: ["node1:6379", "node2:6379", "node3:6379"]
	// 哨兵模式: ["sentinel1:26379", "sentinel2:26379"]
	Addrs []string `json:"addrs" mapstructure:"addrs" default:"localhost:6379"`

	// MasterName 哨兵模式的主节点名称
	MasterName string `json:"masterName" mapstructure:"master_name"`

	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`

	// DB 数据库索引，集群模式忽略此字段
	DB int `json:"db" mapstructure:"db"`

	// Protocol RESP 协议版本
	Protocol int `json:"protocol" mapstructure:"protocol" default:"3"`

	// Prefix 对象键前缀，键格式为 <prefix><content address>
	Prefix string `json:"prefix" mapstructure:"prefix" default:"sealstore:blob:"`

	// TTL 对象过期时间，0 表示永不过期
	TTL time.Duration `json:"ttl" mapstructure:"ttl"`

	DialTimeout  time.Duration `json:"dialTimeout" mapstructure:"dial_timeout" default:"5s"`
	ReadTimeout  time.Duration `json:"readTimeout" mapstructure:"read_timeout" default:"3s"`
	WriteTimeout time.Duration `json:"writeTimeout" mapstructure:"write_timeout" default:"3s"`

	// PoolSize 连接池最大连接数，0 表示 10 * GOMAXPROCS
	PoolSize     int           `json:"poolSize" mapstructure:"pool_size"`
	MinIdleConns int           `json:"minIdleConns" mapstructure:"min_idle_conns"`
	MaxIdleTime  time.Duration `json:"maxIdleTime" mapstructure:"max_idle_time" default:"5m"`
	MaxLifetime  time.Duration `json:"maxLifetime" mapstructure:"max_lifetime"`
	PoolTimeout  time.Duration `json:"poolTimeout" mapstructure:"pool_timeout" default:"4s"`

	// MaxRetries -1 禁用重试，0 使用默认值 3
	MaxRetries      int           `json:"maxRetries" mapstructure:"max_retries"`
	MinRetryBackoff time.Duration `json:"minRetryBackoff" mapstructure:"min_retry_backoff" default:"8ms"`
	MaxRetryBackoff time.Duration `json:"maxRetryBackoff" mapstructure:"max_retry_backoff" default:"512ms"`

	// Telemetry 启用 redisotel 追踪与指标
	Telemetry bool `json:"telemetry" mapstructure:"telemetry"`
	// SlowThreshold 大于 0 时记录命令日志并上报慢命令
	SlowThreshold time.Duration `json:"slowThreshold" mapstructure:"slow_threshold"`

	// 集群特有配置
	MaxRedirects   int  `json:"maxRedirects" mapstructure:"max_redirects" default:"3"`
	ReadOnly       bool `json:"readOnly" mapstructure:"read_only"`
	RouteByLatency bool `json:"routeByLatency" mapstructure:"route_by_latency"`
	RouteRandomly  bool `json:"routeRandomly" mapstructure:"route_randomly"`
}

// ApplyDefaults 应用默认值
func (c *Config) ApplyDefaults() error {
	return tag.ApplyDefaults(c)
}

// Validate 校验配置
func (c *Config) Validate() error {
	if len(c.Addrs) == 0 {
		return ErrEmptyAddrs
	}
	if c.DialTimeout < 0 || c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.PoolTimeout < 0 {
		return ErrInvalidTimeout
	}
	if c.TTL < 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// Single 创建单机模式配置
func Single(addr string) *Config {
	return &Config{Addrs: []string{addr}}
}

// Cluster 创建集群模式配置
func Cluster(addrs ...string) *Config {
	return &Config{Addrs: addrs}
}

// Sentinel 创建哨兵模式配置
func Sentinel(masterName string, addrs ...string) *Config {
	return &Config{Addrs: addrs, MasterName: masterName}
}

// IsSentinel 是否为哨兵模式
func (c *Config) IsSentinel() bool {
	return c.MasterName != ""
}

// IsCluster 是否为集群模式
func (c *Config) IsCluster() bool {
	return c.MasterName == "" && len(c.Addrs) > 1
}

package etcd

import (
	"time"

	"github.com/kochabx/sealstore/core/tag"
)

// Config etcd 连接与键前缀配置
type Config struct {
	Endpoints           []string      `json:"endpoints" mapstructure:"endpoints" default:"localhost:2379"`
	Username            string        `json:"username" mapstructure:"username"`
	Password            string        `json:"password" mapstructure:"password"`
	DialTimeout         time.Duration `json:"dialTimeout" mapstructure:"dial_timeout" default:"5s"`
	KeepAliveTime       time.Duration `json:"keepAliveTime" mapstructure:"keep_alive_time" default:"30s"`
	KeepAliveTimeout    time.Duration `json:"keepAliveTimeout" mapstructure:"keep_alive_timeout" default:"5s"`
	AutoSyncInterval    time.Duration `json:"autoSyncInterval" mapstructure:"auto_sync_interval"`
	RequestTimeout      time.Duration `json:"requestTimeout" mapstructure:"request_timeout" default:"5s"`
	MaxSendMsgSize      int           `json:"maxSendMsgSize" mapstructure:"max_send_msg_size" default:"2097152"` // 2MB
	MaxRecvMsgSize      int           `json:"maxRecvMsgSize" mapstructure:"max_recv_msg_size" default:"4194304"` // 4MB
	RejectOldCluster    bool          `json:"rejectOldCluster" mapstructure:"reject_old_cluster"`
	PermitWithoutStream bool          `json:"permitWithoutStream" mapstructure:"permit_without_stream"`

	// Prefix 对象键前缀
	Prefix string `json:"prefix" mapstructure:"prefix" default:"/sealstore/blobs/"`
}

func (c *Config) init() error {
	return tag.ApplyDefaults(c)
}

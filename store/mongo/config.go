package mongo

import (
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/kochabx/sealstore/core/tag"
)

// Config MongoDB 连接与对象集合配置
type Config struct {
	Host        string        `json:"host" mapstructure:"host" default:"localhost"`
	Port        int           `json:"port" mapstructure:"port" default:"27017"`
	User        string        `json:"user" mapstructure:"user" default:"root"`
	Password    string        `json:"password" mapstructure:"password"`
	MaxPoolSize int           `json:"maxPoolSize" mapstructure:"max_pool_size" default:"10"`
	Timeout     time.Duration `json:"timeout" mapstructure:"timeout" default:"3s"`

	// 对象所在库与集合
	Database   string `json:"database" mapstructure:"database" default:"sealstore"`
	Collection string `json:"collection" mapstructure:"collection" default:"blobs"`
}

// uri 拼接连接串；只有用户名和密码都设置时才带认证信息
func (c *Config) uri() string {
	u := url.URL{
		Scheme:   "mongodb",
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/",
		RawQuery: "maxPoolSize=" + strconv.Itoa(c.MaxPoolSize),
	}
	if c.User != "" && c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}
	return u.String()
}

// Init 填充默认值
func (c *Config) Init() error {
	return tag.ApplyDefaults(c)
}

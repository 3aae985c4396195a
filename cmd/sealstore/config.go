package main

import (
	"io/fs"
	"time"

	"github.com/rs/zerolog"

	"github.com/kochabx/sealstore/config"
	"github.com/kochabx/sealstore/core/tag"
	"github.com/kochabx/sealstore/core/validator"
	"github.com/kochabx/sealstore/errors"
	"github.com/kochabx/sealstore/log"
	"github.com/kochabx/sealstore/store/bolt"
	"github.com/kochabx/sealstore/store/db"
	"github.com/kochabx/sealstore/store/etcd"
	"github.com/kochabx/sealstore/store/file"
	"github.com/kochabx/sealstore/store/kafka"
	"github.com/kochabx/sealstore/store/mongo"
	"github.com/kochabx/sealstore/store/oss/minio"
	"github.com/kochabx/sealstore/store/redis"
)

// Config 命令行配置，对应 sealstore.yaml
type Config struct {
	Log     log.Config    `mapstructure:"log" json:"log"`
	Backend BackendConfig `mapstructure:"backend" json:"backend"`
	Events  EventsConfig  `mapstructure:"events" json:"events"`
	Keys    KeysConfig    `mapstructure:"keys" json:"keys"`
	Metrics MetricsConfig `mapstructure:"metrics" json:"metrics"`

	// put 与 verify 的并发度
	Workers      int           `mapstructure:"workers" json:"workers" default:"4" validate:"gte=1,lte=256"`
	CloseTimeout time.Duration `mapstructure:"close_timeout" json:"closeTimeout" default:"10s"`
}

// BackendConfig 存储后端配置，只有 Type 指定的那一段生效
type BackendConfig struct {
	Type  string       `mapstructure:"type" json:"type" default:"file" validate:"oneof=memory file bolt minio redis db mongo etcd"`
	File  file.Config  `mapstructure:"file" json:"file"`
	Bolt  bolt.Config  `mapstructure:"bolt" json:"bolt"`
	Minio minio.Config `mapstructure:"minio" json:"minio"`
	Redis redis.Config `mapstructure:"redis" json:"redis"`
	DB    db.Config    `mapstructure:"db" json:"db"`
	Mongo mongo.Config `mapstructure:"mongo" json:"mongo"`
	Etcd  etcd.Config  `mapstructure:"etcd" json:"etcd"`
}

// EventsConfig 事件发布配置
type EventsConfig struct {
	Enabled bool         `mapstructure:"enabled" json:"enabled"`
	Kafka   kafka.Config `mapstructure:"kafka" json:"kafka"`
}

// KeysConfig 私钥目录，目录下所有 *.key 在启动时载入 key manager
type KeysConfig struct {
	Dir string `mapstructure:"dir" json:"dir" default:"./keys"`
}

// MetricsConfig 指标输出配置
type MetricsConfig struct {
	// Textfile 非空时，命令结束后把指标写入该文件（node_exporter textfile 格式）
	Textfile  string `mapstructure:"textfile" json:"textfile"`
	Namespace string `mapstructure:"namespace" json:"namespace" default:"sealstore"`
}

// loadConfig reads path into a Config. A missing file is not an error: the
// defaults are used and validated instead.
func loadConfig(path string) (*Config, *config.Config, error) {
	cfg := &Config{}
	loader := config.New(cfg,
		config.WithPath(path),
		config.WithOnChange(func() { applyLogLevel(cfg) }),
	)

	err := loader.Load()
	if err == nil {
		return cfg, loader, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, err
	}

	cfg = &Config{}
	if err := tag.ApplyDefaults(cfg); err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeInvalidArgument, "failed to apply defaults")
	}
	if err := validator.Validate.Struct(cfg); err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeInvalidArgument, "config validation failed")
	}
	return cfg, nil, nil
}

// applyLogLevel re-applies the configured level after a reload.
func applyLogLevel(cfg *Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Warn().Str("level", cfg.Log.Level).Msg("ignoring invalid log level")
		return
	}
	log.SetGlobalLevel(level)
	log.Info().Str("level", level.String()).Msg("log level updated")
}

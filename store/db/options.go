package db

import (
	"time"

	"github.com/kochabx/sealstore/log"
)

// Option 客户端选项
type Option func(*clientOptions)

type clientOptions struct {
	logger          *log.Logger
	connectTimeout  time.Duration
	slowQueryThresh time.Duration // 0 关闭慢查询日志
	table           string
	autoMigrate     bool
}

func defaultOptions() *clientOptions {
	return &clientOptions{
		connectTimeout: 10 * time.Second,
		table:          DefaultTable,
		autoMigrate:    true,
	}
}

// WithLogger 设置日志记录器，默认 log.G
func WithLogger(l *log.Logger) Option {
	return func(o *clientOptions) {
		o.logger = l
	}
}

// WithConnectTimeout 设置首次 Ping 的超时
func WithConnectTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		if d > 0 {
			o.connectTimeout = d
		}
	}
}

// WithSlowQuery 记录超过 threshold 的语句
func WithSlowQuery(threshold time.Duration) Option {
	return func(o *clientOptions) {
		o.slowQueryThresh = threshold
	}
}

// WithTable 设置对象表名
func WithTable(name string) Option {
	return func(o *clientOptions) {
		if name != "" {
			o.table = name
		}
	}
}

// WithAutoMigrate 打开存储时是否自动建表，默认开启
func WithAutoMigrate(enabled bool) Option {
	return func(o *clientOptions) {
		o.autoMigrate = enabled
	}
}

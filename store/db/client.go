package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kochabx/sealstore/log"
)

var (
	// ErrUnsupportedDriver 不支持的数据库驱动
	ErrUnsupportedDriver = errors.New("db: unsupported driver")

	// ErrInvalidConfig 缺少驱动配置
	ErrInvalidConfig = errors.New("db: invalid config")

	// ErrNotInitialized 客户端未连接
	ErrNotInitialized = errors.New("db: not initialized")
)

// Client 持有 GORM 连接及其连接池
type Client struct {
	driver  Driver
	db      *gorm.DB
	options *clientOptions
	logger  *log.Logger
}

// New 按驱动配置建立连接并在 connectTimeout 内完成一次 Ping
func New(ctx context.Context, cfg DriverConfig, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if err := cfg.Init(); err != nil {
		return nil, err
	}

	options := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	c := &Client{driver: cfg.Driver(), options: options, logger: options.logger}
	if c.logger == nil {
		c.logger = log.G
	}

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: c.gormLogger(cfg.LogLevel())})
	if err != nil {
		return nil, fmt.Errorf("db: open %s: %w", c.driver, err)
	}
	c.db = db

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	pool := cfg.Pool()
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(pool.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, options.connectTimeout)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("db: ping %s: %w", c.driver, err)
	}

	c.logger.Debug().Str("driver", c.driver.String()).Msg("database connected")
	return c, nil
}

func dialectorFor(cfg DriverConfig) (gorm.Dialector, error) {
	switch cfg.Driver() {
	case DriverMySQL:
		return mysql.Open(cfg.DSN()), nil
	case DriverPostgres:
		return postgres.Open(cfg.DSN()), nil
	case DriverSQLite:
		return sqlite.Open(cfg.DSN()), nil
	default:
		return nil, ErrUnsupportedDriver
	}
}

// gormLogger 把 GORM 日志转到 zerolog，不记录 RecordNotFound
func (c *Client) gormLogger(level LogLevel) gormlogger.Interface {
	return gormlogger.New(gormWriter{c.logger}, gormlogger.Config{
		LogLevel:                  level,
		SlowThreshold:             c.options.slowQueryThresh,
		IgnoreRecordNotFoundError: true,
	})
}

// DB 返回 GORM 实例
func (c *Client) DB() *gorm.DB {
	return c.db
}

// Driver 返回驱动名
func (c *Client) Driver() Driver {
	return c.driver
}

// Ping 检查连接
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.db == nil {
		return ErrNotInitialized
	}
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close 关闭连接池
func (c *Client) Close() error {
	if c.db == nil {
		return nil
	}
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type gormWriter struct {
	logger *log.Logger
}

func (w gormWriter) Printf(format string, args ...any) {
	w.logger.Debug().Str("component", "gorm").Msgf(format, args...)
}

package db

import (
	"fmt"
	"strings"
	"time"

	gormlogger "gorm.io/gorm/logger"

	"github.com/kochabx/sealstore/core/tag"
)

// Driver 数据库驱动名，与配置文件中的 driver 字段一致
type Driver string

const (
	DriverMySQL    Driver = "mysql"
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

func (d Driver) String() string { return string(d) }

// LogLevel 即 GORM 日志级别
type LogLevel = gormlogger.LogLevel

const (
	LogLevelSilent = gormlogger.Silent
	LogLevelError  = gormlogger.Error
	LogLevelWarn   = gormlogger.Warn
	LogLevelInfo   = gormlogger.Info
)

// ParseLogLevel 不区分大小写，无法识别时返回 LogLevelSilent
func ParseLogLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "error":
		return LogLevelError
	case "warn":
		return LogLevelWarn
	case "info":
		return LogLevelInfo
	default:
		return LogLevelSilent
	}
}

// PoolConfig database/sql 连接池参数
type PoolConfig struct {
	MaxIdleConns    int           `json:"maxIdleConns" mapstructure:"max_idle_conns" default:"10"`
	MaxOpenConns    int           `json:"maxOpenConns" mapstructure:"max_open_conns" default:"100"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" mapstructure:"conn_max_lifetime" default:"1h"`
	ConnMaxIdleTime time.Duration `json:"connMaxIdleTime" mapstructure:"conn_max_idle_time" default:"10m"`
}

// DriverConfig 单个驱动的连接配置
type DriverConfig interface {
	Driver() Driver
	DSN() string
	Pool() *PoolConfig
	// Init 填充默认值，可重复调用
	Init() error
	LogLevel() LogLevel
}

// Tuning 各驱动共有的连接池与日志级别
type Tuning struct {
	PoolConfig `json:"pool" mapstructure:"pool"`
	Level      string `json:"level" mapstructure:"level" default:"silent"`
}

func (c *Tuning) Pool() *PoolConfig { return &c.PoolConfig }

func (c *Tuning) LogLevel() LogLevel { return ParseLogLevel(c.Level) }

// MySQLConfig 生成 user:password@tcp(host:port)/database?... 形式的 DSN
type MySQLConfig struct {
	Host      string        `json:"host" mapstructure:"host" default:"localhost"`
	Port      int           `json:"port" mapstructure:"port" default:"3306"`
	User      string        `json:"user" mapstructure:"user" default:"root"`
	Password  string        `json:"password" mapstructure:"password"`
	Database  string        `json:"database" mapstructure:"database"`
	Charset   string        `json:"charset" mapstructure:"charset" default:"utf8mb4"`
	Collation string        `json:"collation" mapstructure:"collation" default:"utf8mb4_unicode_ci"`
	Loc       string        `json:"loc" mapstructure:"loc" default:"Local"`
	Timeout   time.Duration `json:"timeout" mapstructure:"timeout" default:"10s"`
	Tuning    `mapstructure:",squash"`
}

func (c *MySQLConfig) Driver() Driver { return DriverMySQL }
func (c *MySQLConfig) Init() error    { return tag.ApplyDefaults(c) }

func (c *MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&collation=%s&parseTime=true&loc=%s&timeout=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.Charset, c.Collation, c.Loc, c.Timeout)
}

// PostgresConfig 生成 key=value 形式的 DSN
type PostgresConfig struct {
	Host           string `json:"host" mapstructure:"host" default:"localhost"`
	Port           int    `json:"port" mapstructure:"port" default:"5432"`
	User           string `json:"user" mapstructure:"user" default:"postgres"`
	Password       string `json:"password" mapstructure:"password"`
	Database       string `json:"database" mapstructure:"database"`
	SSLMode        string `json:"sslmode" mapstructure:"sslmode" default:"disable"`
	TimeZone       string `json:"timezone" mapstructure:"timezone" default:"UTC"`
	ConnectTimeout int    `json:"connectTimeout" mapstructure:"connect_timeout" default:"10"`
	Tuning         `mapstructure:",squash"`
}

func (c *PostgresConfig) Driver() Driver { return DriverPostgres }
func (c *PostgresConfig) Init() error    { return tag.ApplyDefaults(c) }

func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s connect_timeout=%d",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode, c.TimeZone, c.ConnectTimeout)
}

// SQLiteConfig 单文件数据库，连接数固定为 1
type SQLiteConfig struct {
	FilePath    string `json:"filePath" mapstructure:"file_path" default:"./data/sealstore.db"`
	JournalMode string `json:"journalMode" mapstructure:"journal_mode" default:"WAL"`
	BusyTimeout int    `json:"busyTimeout" mapstructure:"busy_timeout" default:"5000"`
	SyncMode    string `json:"syncMode" mapstructure:"sync_mode" default:"NORMAL"`
	Tuning      `mapstructure:",squash"`
}

func (c *SQLiteConfig) Driver() Driver { return DriverSQLite }
func (c *SQLiteConfig) Init() error    { return tag.ApplyDefaults(c) }

func (c *SQLiteConfig) DSN() string {
	return fmt.Sprintf("file:%s?_journal_mode=%s&_busy_timeout=%d&_synchronous=%s",
		c.FilePath, c.JournalMode, c.BusyTimeout, c.SyncMode)
}

// Pool SQLite 同一时间只允许一个写连接
func (c *SQLiteConfig) Pool() *PoolConfig {
	c.MaxOpenConns = 1
	c.MaxIdleConns = 1
	return &c.PoolConfig
}

// Config 配置文件中的 db 段，按 Driver 选择具体驱动配置
type Config struct {
	Driver   Driver         `json:"driver" mapstructure:"driver" default:"sqlite" validate:"oneof=mysql postgres sqlite"`
	Table    string         `json:"table" mapstructure:"table" default:"sealstore_blobs"`
	MySQL    MySQLConfig    `json:"mysql" mapstructure:"mysql"`
	Postgres PostgresConfig `json:"postgres" mapstructure:"postgres"`
	SQLite   SQLiteConfig   `json:"sqlite" mapstructure:"sqlite"`
}

// DriverConfig 返回当前驱动对应的配置，Driver 为空时按 sqlite 处理
func (c *Config) DriverConfig() (DriverConfig, error) {
	switch c.Driver {
	case DriverMySQL:
		return &c.MySQL, nil
	case DriverPostgres:
		return &c.Postgres, nil
	case DriverSQLite, "":
		return &c.SQLite, nil
	default:
		return nil, ErrUnsupportedDriver
	}
}

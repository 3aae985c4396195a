package log

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	"github.com/kochabx/sealstore/core/tag"
	"github.com/kochabx/sealstore/log/desensitize"
	"github.com/kochabx/sealstore/log/writer"
)

// Logger 日志记录器
type Logger struct {
	zerolog.Logger
	desensitizeHook *desensitize.Hook
	writer          io.Writer
	closer          io.Closer
}

// Desensitizer 返回脱敏钩子，未启用时为 nil
func (l *Logger) Desensitizer() *desensitize.Hook {
	return l.desensitizeHook
}

// Close 关闭日志记录器，释放文件句柄
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

func init() {
	zerolog.TimeFieldFormat = time.DateTime
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
}

// newLogger 统一的 Logger 构建方法
func newLogger(w io.Writer, opts ...Option) *Logger {
	logger := &Logger{writer: w}

	// 先收集脱敏钩子，再决定底层 writer
	for _, opt := range opts {
		opt(logger)
	}

	out := w
	if logger.desensitizeHook != nil {
		out = desensitize.NewWriter(w, logger.desensitizeHook)
	}
	logger.Logger = zerolog.New(out).With().Timestamp().Logger()

	for _, opt := range opts {
		opt(logger)
	}
	return logger
}

// New 创建输出到 stderr 控制台的 Logger
func New(opts ...Option) *Logger {
	return newLogger(writer.Console(), opts...)
}

// NewWriter 创建输出到任意 writer 的 Logger，主要用于测试
func NewWriter(w io.Writer, opts ...Option) *Logger {
	return newLogger(w, opts...)
}

// NewFile 创建只写文件的 Logger
func NewFile(c FileConfig, opts ...Option) (*Logger, error) {
	return fileLogger(c, false, opts)
}

// NewMulti 创建同时写文件和 stderr 的 Logger
func NewMulti(c FileConfig, opts ...Option) (*Logger, error) {
	return fileLogger(c, true, opts)
}

func fileLogger(c FileConfig, console bool, opts []Option) (*Logger, error) {
	if err := tag.ApplyDefaults(&c); err != nil {
		return nil, fmt.Errorf("log: file defaults: %w", err)
	}
	fw, err := writer.File(c.toWriterConfig())
	if err != nil {
		return nil, fmt.Errorf("log: open %s: %w", c.Filepath, err)
	}

	var out io.Writer = fw
	if console {
		out = zerolog.MultiLevelWriter(fw, writer.Console())
	}
	logger := newLogger(out, opts...)
	logger.closer = fw
	return logger, nil
}

// NewWithConfig 按配置创建 Logger。开启脱敏时加载全部内置规则
func NewWithConfig(c Config) (*Logger, error) {
	if err := tag.ApplyDefaults(&c); err != nil {
		return nil, fmt.Errorf("log: defaults: %w", err)
	}

	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("log: level %q: %w", c.Level, err)
	}

	opts := []Option{WithLevel(level)}
	if c.Caller {
		opts = append(opts, WithCaller())
	}
	if !c.DisableDesensitize {
		opts = append(opts, WithDesensitize(desensitize.NewHook(desensitize.BuiltinRules()...)))
	}

	switch c.Output {
	case "", "console":
		return New(opts...), nil
	case "file":
		return NewFile(c.File, opts...)
	case "multi":
		return NewMulti(c.File, opts...)
	default:
		return nil, fmt.Errorf("log: unknown output %q", c.Output)
	}
}

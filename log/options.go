package log

import (
	"github.com/rs/zerolog"

	"github.com/kochabx/sealstore/log/desensitize"
)

// Option 在 zerolog.Logger 创建前后各执行一次
type Option func(*Logger)

// WithLevel 设置最低输出级别
func WithLevel(level zerolog.Level) Option {
	return func(l *Logger) { l.Logger = l.Logger.Level(level) }
}

// WithCaller 在每条日志中记录调用位置
func WithCaller() Option {
	return func(l *Logger) { l.Logger = l.Logger.With().Caller().Logger() }
}

// WithDesensitize 输出前按 hook 中的规则脱敏
func WithDesensitize(hook *desensitize.Hook) Option {
	return func(l *Logger) { l.desensitizeHook = hook }
}

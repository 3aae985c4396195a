package log

import "github.com/rs/zerolog"

// G 进程级 Logger，Setup 之前输出到 stderr
var G = New()

// Setup 按配置创建 Logger 并替换 G，调用方负责在退出前 Close
func Setup(c Config) (*Logger, error) {
	logger, err := NewWithConfig(c)
	if err != nil {
		return nil, err
	}
	G = logger
	return logger, nil
}

// SetGlobalLevel 调整 G 的级别，配置热更新时使用
func SetGlobalLevel(level zerolog.Level) {
	G.Logger = G.Logger.Level(level)
}

func Debug() *zerolog.Event { return G.Debug() }
func Info() *zerolog.Event  { return G.Info() }
func Warn() *zerolog.Event  { return G.Warn() }

// Error 附带堆栈，仅对 pkg/errors 风格的错误生效
func Error() *zerolog.Event { return G.Error().Stack() }

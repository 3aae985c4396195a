package redis

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kochabx/sealstore/log"
)

// commandHook 记录命令名与键，从不记录对象内容
type commandHook struct {
	logger *log.Logger
	slow   time.Duration
}

var _ redis.Hook = (*commandHook)(nil)

func firstKey(cmd redis.Cmder) string {
	if args := cmd.Args(); len(args) > 1 {
		if k, ok := args[1].(string); ok {
			return k
		}
	}
	return ""
}

func (h *commandHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		start := time.Now()
		conn, err := next(ctx, network, addr)
		h.event(time.Since(start), err).Str("network", network).Str("addr", addr).Msg("redis dial")
		return conn, err
	}
}

func (h *commandHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.event(time.Since(start), err).Str("cmd", cmd.FullName()).Str("key", firstKey(cmd)).Msg("redis command")
		return err
	}
}

func (h *commandHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		h.event(time.Since(start), err).Int("commands", len(cmds)).Msg("redis pipeline")
		return err
	}
}

// event 选择日志级别：失败或慢命令用 warn，其余用 debug；redis.Nil 不算失败
func (h *commandHook) event(elapsed time.Duration, err error) *zerolog.Event {
	var ev *zerolog.Event
	switch {
	case err != nil && !errors.Is(err, redis.Nil):
		ev = h.logger.Warn().Err(err)
	case h.slow > 0 && elapsed > h.slow:
		ev = h.logger.Warn().Dur("threshold", h.slow)
	default:
		ev = h.logger.Debug()
	}
	return ev.Dur("elapsed", elapsed)
}

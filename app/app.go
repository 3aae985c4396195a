// Package app runs one command under a signal-aware context and releases
// registered resources afterwards.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kochabx/sealstore/log"
)

var (
	ErrAlreadyStarted = errors.New("app: already started")
	ErrClosePanic     = errors.New("app: close panicked")
	ErrNilClose       = errors.New("app: nil close function")
)

const defaultCloseTimeout = 10 * time.Second

type closeTask struct {
	name    string
	fn      func(context.Context) error
	timeout time.Duration
}

// Application 一次命令执行的生命周期：运行、响应信号、释放资源
type Application struct {
	ctx     context.Context
	cancel  context.CancelFunc
	signals []os.Signal
	timeout time.Duration
	logger  *log.Logger

	mu      sync.Mutex
	tasks   []closeTask
	started bool
}

type Option func(*Application)

// WithContext 以 ctx 为根上下文
func WithContext(ctx context.Context) Option {
	return func(a *Application) {
		if ctx != nil {
			a.ctx, a.cancel = context.WithCancel(ctx)
		}
	}
}

// WithCloseTimeout 未指定超时的关闭函数使用 d
func WithCloseTimeout(d time.Duration) Option {
	return func(a *Application) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithSignals 替换默认的 SIGINT、SIGTERM
func WithSignals(sigs ...os.Signal) Option {
	return func(a *Application) {
		if len(sigs) > 0 {
			a.signals = append([]os.Signal(nil), sigs...)
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(a *Application) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithClose 同 RegisterClose，nil 函数被忽略
func WithClose(name string, fn func(context.Context) error, timeout time.Duration) Option {
	return func(a *Application) {
		if err := a.RegisterClose(name, fn, timeout); err != nil {
			a.logger.Warn().Str("close", name).Err(err).Msg("close function ignored")
		}
	}
}

func New(opts ...Option) *Application {
	a := &Application{
		signals: []os.Signal{os.Interrupt, syscall.SIGTERM},
		timeout: defaultCloseTimeout,
		logger:  log.G,
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Context 收到信号、Stop 或 Run 结束后取消
func (a *Application) Context() context.Context {
	return a.ctx
}

// Stop 取消 Context，不等待 Run 返回
func (a *Application) Stop() {
	a.cancel()
}

// RegisterClose 添加关闭函数；timeout 为 0 时使用 WithCloseTimeout 的值
func (a *Application) RegisterClose(name string, fn func(context.Context) error, timeout time.Duration) error {
	if fn == nil {
		return ErrNilClose
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if timeout <= 0 {
		timeout = a.timeout
	}
	a.tasks = append(a.tasks, closeTask{name: name, fn: fn, timeout: timeout})
	return nil
}

// RegisterCloser 注册 c.Close
func (a *Application) RegisterCloser(name string, c interface{ Close() error }) error {
	if c == nil {
		return ErrNilClose
	}
	return a.RegisterClose(name, func(context.Context) error { return c.Close() }, 0)
}

// Run 执行 fn，然后并发执行全部关闭函数。fn 的错误优先于关闭错误
func (a *Application) Run(fn func(ctx context.Context) error) error {
	a.mu.Lock()
	if a.started {
		a.mu.Unlock()
		return ErrAlreadyStarted
	}
	a.started = true
	a.mu.Unlock()

	sigCtx, stop := signal.NotifyContext(a.ctx, a.signals...)
	defer stop()
	context.AfterFunc(sigCtx, func() {
		if a.ctx.Err() == nil {
			a.logger.Info().Msg("shutdown signal received")
			a.cancel()
		}
	})

	err := fn(a.ctx)
	a.cancel()

	if cerr := a.closeAll(); err == nil {
		err = cerr
	}
	return err
}

func (a *Application) closeAll() error {
	a.mu.Lock()
	tasks := append([]closeTask(nil), a.tasks...)
	a.mu.Unlock()

	var g errgroup.Group
	for _, t := range tasks {
		g.Go(func() error { return a.close(t) })
	}
	return g.Wait()
}

// close 在独立 goroutine 中执行 t，超时后不再等待其返回
func (a *Application) close(t closeTask) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("%w: %s: %v", ErrClosePanic, t.name, r)
			}
		}()
		done <- t.fn(ctx)
	}()

	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	ev := a.logger.Debug()
	if err != nil {
		ev = a.logger.Error().Err(err)
	}
	ev.Str("close", t.name).Msg("resource closed")
	return err
}

// Info 生命周期快照
func (a *Application) Info() Info {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Info{Started: a.started, CloseCount: len(a.tasks)}
}

type Info struct {
	Started    bool `json:"started"`
	CloseCount int  `json:"closeCount"`
}

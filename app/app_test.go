package app

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/kochabx/sealstore/log"
)

func quiet() Option {
	var buf bytes.Buffer
	return WithLogger(log.NewWriter(&buf))
}

func TestRunClosesResources(t *testing.T) {
	var closed atomic.Int32
	app := New(quiet(), WithClose("first", func(context.Context) error {
		closed.Add(1)
		return nil
	}, time.Second))
	if err := app.RegisterClose("second", func(context.Context) error {
		closed.Add(1)
		return nil
	}, 0); err != nil {
		t.Fatal(err)
	}

	if info := app.Info(); info.CloseCount != 2 || info.Started {
		t.Fatalf("unexpected info %+v", info)
	}

	if err := app.Run(func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if closed.Load() != 2 {
		t.Fatalf("expected 2 close calls, got %d", closed.Load())
	}
	if app.Context().Err() == nil {
		t.Fatal("context should be cancelled after Run")
	}
}

func TestRunReturnsCommandError(t *testing.T) {
	want := errors.New("command failed")
	closeErr := errors.New("close failed")
	app := New(quiet(), WithClose("c", func(context.Context) error { return closeErr }, time.Second))

	if err := app.Run(func(context.Context) error { return want }); !errors.Is(err, want) {
		t.Fatalf("expected command error, got %v", err)
	}
}

func TestRunReturnsCloseError(t *testing.T) {
	closeErr := errors.New("close failed")
	app := New(quiet(), WithClose("c", func(context.Context) error { return closeErr }, time.Second))

	if err := app.Run(func(context.Context) error { return nil }); !errors.Is(err, closeErr) {
		t.Fatalf("expected close error, got %v", err)
	}
}

func TestRunTwice(t *testing.T) {
	app := New(quiet())
	_ = app.Run(func(context.Context) error { return nil })
	if err := app.Run(func(context.Context) error { return nil }); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("expected ErrAlreadyStarted, got %v", err)
	}
}

func TestCloseTimeoutAndPanic(t *testing.T) {
	app := New(quiet(),
		WithClose("slow", func(ctx context.Context) error {
			<-ctx.Done()
			time.Sleep(50 * time.Millisecond)
			return nil
		}, 20*time.Millisecond),
	)
	if err := app.Run(func(context.Context) error { return nil }); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	app = New(quiet(), WithClose("boom", func(context.Context) error { panic("boom") }, time.Second))
	if err := app.Run(func(context.Context) error { return nil }); !errors.Is(err, ErrClosePanic) {
		t.Fatalf("expected ErrClosePanic, got %v", err)
	}
}

func TestSignalCancelsContext(t *testing.T) {
	app := New(quiet(), WithSignals(syscall.SIGUSR1))

	err := app.Run(func(ctx context.Context) error {
		if err := syscall.Kill(syscall.Getpid(), syscall.SIGUSR1); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(5 * time.Second):
			return errors.New("context not cancelled by signal")
		}
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestStopAndNilClose(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := New(quiet(), WithContext(ctx), WithCloseTimeout(time.Second))
	if err := app.RegisterClose("nil", nil, 0); !errors.Is(err, ErrNilClose) {
		t.Fatalf("expected ErrNilClose, got %v", err)
	}
	if err := app.RegisterCloser("nil", nil); !errors.Is(err, ErrNilClose) {
		t.Fatalf("expected ErrNilClose, got %v", err)
	}

	app.Stop()
	if app.Context().Err() == nil {
		t.Fatal("Stop should cancel the context")
	}
}

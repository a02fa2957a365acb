package research

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"deepresearch/config"
)

// Scheduler is the concurrency model the polling loop runs on. It owns the
// two points where the loop blocks: the sleep between ticks and each remote
// call. The detection and status logic never blocks on its own.
type Scheduler interface {
	// Sleep waits d before the next tick.
	Sleep(ctx context.Context, d time.Duration) error
	// Call performs one remote call and waits for it to finish.
	Call(ctx context.Context, fn func(context.Context) error) error
}

const (
	ModeSync  = "sync"
	ModeAsync = "async"
)

// NewScheduler returns the scheduler for a mode name.
func NewScheduler(mode string) (Scheduler, error) {
	switch mode {
	case ModeSync, "":
		return SyncScheduler{}, nil
	case ModeAsync:
		return AsyncScheduler{}, nil
	default:
		return nil, fmt.Errorf("unknown scheduling mode: %s", mode)
	}
}

// SyncScheduler issues blocking calls on the caller's goroutine and sleeps
// with a blocking sleep.
type SyncScheduler struct{}

func (SyncScheduler) Sleep(ctx context.Context, d time.Duration) error {
	if d > 0 {
		time.Sleep(d)
	}
	return ctx.Err()
}

func (SyncScheduler) Call(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// AsyncScheduler runs each remote call on its own goroutine and suspends the
// loop until the call completes or the context is cancelled. Calls are still
// awaited one at a time, so two ticks never overlap.
type AsyncScheduler struct{}

func (AsyncScheduler) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (AsyncScheduler) Call(ctx context.Context, fn func(context.Context) error) error {
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				config.Debugf("remote call panic: %v, stack: %s", r, debug.Stack())
				done <- fmt.Errorf("remote call panicked: %v", r)
			}
		}()
		done <- fn(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// call runs fn through s and returns its value. The value is only read once
// the call has completed without error.
func call[T any](ctx context.Context, s Scheduler, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := s.Call(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

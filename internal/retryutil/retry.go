package retryutil

import (
	"context"
	"log/slog"
	"time"
)

const (
	defaultRetryDelay   = 2 * time.Second
	defaultRetryTimeout = 12 * time.Second
	maxRetryAfter       = 30 * time.Second
)

// AsyncRetry runs fn once more after delay in the background. The attempt is
// abandoned when parent is canceled.
func AsyncRetry(parent context.Context, logger *slog.Logger, name string, delay, timeout time.Duration, fn func(ctx context.Context) error) {
	if fn == nil {
		return
	}
	if parent == nil {
		parent = context.Background()
	}
	if delay <= 0 {
		delay = defaultRetryDelay
	}
	if timeout <= 0 {
		timeout = defaultRetryTimeout
	}
	if logger != nil {
		logger.Info(name+"_retry_scheduled", "delay", delay.String(), "timeout", timeout.String())
	}
	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-parent.Done():
			return
		case <-timer.C:
		}
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			if logger != nil {
				logger.Warn(name+"_retry_failed", "error", err.Error())
			}
			return
		}
		if logger != nil {
			logger.Info(name + "_retry_ok")
		}
	}()
}

// DoRetryAfter calls fn and, while it fails with an error for which
// retryAfter reports a wait, sleeps and tries again up to attempts times.
// Waits longer than 30s or past the ctx deadline are not attempted.
func DoRetryAfter(ctx context.Context, attempts int, retryAfter func(error) (time.Duration, bool), fn func(ctx context.Context) error) error {
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		err = fn(ctx)
		if err == nil || retryAfter == nil || i == attempts-1 {
			return err
		}
		wait, ok := retryAfter(err)
		if !ok || wait <= 0 || wait > maxRetryAfter {
			return err
		}
		if deadline, has := ctx.Deadline(); has && time.Until(deadline) < wait {
			return err
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
	return err
}

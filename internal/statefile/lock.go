package statefile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const lockRetryWait = 50 * time.Millisecond

// Lock is an exclusive advisory lock held on a file until Release.
type Lock struct {
	release func() error
}

func (l *Lock) Release() error {
	if l == nil || l.release == nil {
		return nil
	}
	err := l.release()
	l.release = nil
	return err
}

// Acquire takes the lock at path, retrying until ctx is done.
func Acquire(ctx context.Context, path string) (*Lock, error) {
	normalized, err := normalizePath(path)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := os.MkdirAll(filepath.Dir(normalized), dirPerm); err != nil {
		return nil, fmt.Errorf("%w: create dir for %s: %v", ErrLockUnavailable, normalized, err)
	}
	release, err := acquireFile(ctx, normalized)
	if err != nil {
		return nil, err
	}
	return &Lock{release: release}, nil
}

func writeOwner(file *os.File) {
	host, _ := os.Hostname()
	data, err := json.Marshal(map[string]any{
		"pid":         os.Getpid(),
		"hostname":    host,
		"acquired_at": time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return
	}
	_ = file.Truncate(0)
	_, _ = file.Seek(0, 0)
	_, _ = file.Write(append(data, '\n'))
	_ = file.Sync()
}

func waitForRetry(ctx context.Context, path string) error {
	timer := time.NewTimer(lockRetryWait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %s: %v", ErrLockTimeout, path, ctx.Err())
	case <-timer.C:
		return nil
	}
}

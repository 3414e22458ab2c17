//go:build !windows

package statefile

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

func acquireFile(ctx context.Context, path string) (func() error, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, filePerm)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrLockUnavailable, path, err)
	}
	fd := int(file.Fd())
	for {
		err = unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			break
		}
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EAGAIN) {
			if waitErr := waitForRetry(ctx, path); waitErr != nil {
				_ = file.Close()
				return nil, waitErr
			}
			continue
		}
		_ = file.Close()
		return nil, fmt.Errorf("%w: flock %s: %v", ErrLockUnavailable, path, err)
	}
	writeOwner(file)
	return func() error {
		_ = unix.Flock(fd, unix.LOCK_UN)
		return file.Close()
	}, nil
}

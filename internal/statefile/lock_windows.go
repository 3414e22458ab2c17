//go:build windows

package statefile

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func acquireFile(ctx context.Context, path string) (func() error, error) {
	for {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, filePerm)
		if err == nil {
			writeOwner(file)
			return func() error {
				err := file.Close()
				_ = os.Remove(path)
				return err
			}, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w: open %s: %v", ErrLockUnavailable, path, err)
		}
		if waitErr := waitForRetry(ctx, path); waitErr != nil {
			return nil, waitErr
		}
	}
}

package statefile

import "errors"

var (
	ErrInvalidPath       = errors.New("statefile: invalid path")
	ErrLockTimeout       = errors.New("statefile: lock timeout")
	ErrLockUnavailable   = errors.New("statefile: lock unavailable")
	ErrEncodeFailed      = errors.New("statefile: encode failed")
	ErrDecodeFailed      = errors.New("statefile: decode failed")
	ErrAtomicWriteFailed = errors.New("statefile: atomic write failed")
)

package linkstore

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

var (
	ErrStoreUnavailable = errors.New("linkstore: store unavailable")
	ErrSerialization    = errors.New("linkstore: serialization failed")
	ErrDeserialization  = errors.New("linkstore: deserialization failed")
	ErrInvalidURL       = errors.New("linkstore: invalid store url")
)

// Store maps the id of a message copy in the operator chat to the Origin of
// the message it was copied from. Entries are written once and never updated.
type Store interface {
	// Put encodes origin and writes it under copyID.
	Put(ctx context.Context, copyID int64, origin Origin) error
	// Get returns the origin stored under copyID. A missing key and an empty
	// stored value both report ok=false with a nil error.
	Get(ctx context.Context, copyID int64) (origin Origin, ok bool, err error)
	Ping(ctx context.Context) error
	Close() error
}

func buildKey(prefix string, copyID int64) string {
	return strings.TrimSpace(prefix) + strconv.FormatInt(copyID, 10)
}

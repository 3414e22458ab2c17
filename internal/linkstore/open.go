package linkstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

type OpenOptions struct {
	URL         string
	PoolSize    int
	KeyPrefix   string
	TTL         time.Duration
	DialTimeout time.Duration
	// WriteProbe additionally writes and reads a key after the ping.
	WriteProbe bool
}

// Open builds a Store from a connection URL and verifies that the backend is
// reachable. Supported schemes: redis, rediss, unix, memory.
func Open(ctx context.Context, opts OpenOptions) (Store, error) {
	rawURL := strings.TrimSpace(opts.URL)
	if rawURL == "" {
		return nil, fmt.Errorf("%w: empty url", ErrInvalidURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	var store Store
	switch strings.ToLower(u.Scheme) {
	case "redis", "rediss", "unix":
		rs, err := NewRedisStore(RedisOptions{
			URL:         rawURL,
			PoolSize:    opts.PoolSize,
			KeyPrefix:   opts.KeyPrefix,
			TTL:         opts.TTL,
			DialTimeout: opts.DialTimeout,
		})
		if err != nil {
			return nil, err
		}
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, err
		}
		if opts.WriteProbe {
			if err := rs.WriteProbe(ctx); err != nil {
				_ = rs.Close()
				return nil, err
			}
		}
		store = rs
	case "memory":
		store = NewMemoryStore(MemoryOptions{TTL: opts.TTL})
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	return store, nil
}

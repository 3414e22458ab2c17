package linkstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPoolSize    = 10
	defaultRedisDialTimeout = 5 * time.Second
)

type RedisOptions struct {
	URL         string
	PoolSize    int
	KeyPrefix   string
	TTL         time.Duration
	DialTimeout time.Duration
}

// RedisStore keeps links as plain string values under the decimal copy id.
// Concurrent callers share a pool of at most PoolSize connections.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	rawURL := strings.TrimSpace(opts.URL)
	if rawURL == "" {
		return nil, fmt.Errorf("%w: empty url", ErrInvalidURL)
	}
	redisOpts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	redisOpts.PoolSize = opts.PoolSize
	if redisOpts.PoolSize <= 0 {
		redisOpts.PoolSize = defaultRedisPoolSize
	}
	redisOpts.DialTimeout = opts.DialTimeout
	if redisOpts.DialTimeout <= 0 {
		redisOpts.DialTimeout = defaultRedisDialTimeout
	}
	ttl := opts.TTL
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{
		client:    redis.NewClient(redisOpts),
		keyPrefix: opts.KeyPrefix,
		ttl:       ttl,
	}, nil
}

func (s *RedisStore) Put(ctx context.Context, copyID int64, origin Origin) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("%w: redis store is not initialized", ErrStoreUnavailable)
	}
	value, err := EncodeOrigin(origin)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, buildKey(s.keyPrefix, copyID), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %d: %v", ErrStoreUnavailable, copyID, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, copyID int64) (Origin, bool, error) {
	if s == nil || s.client == nil {
		return Origin{}, false, fmt.Errorf("%w: redis store is not initialized", ErrStoreUnavailable)
	}
	raw, err := s.client.Get(ctx, buildKey(s.keyPrefix, copyID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Origin{}, false, nil
		}
		return Origin{}, false, fmt.Errorf("%w: get %d: %v", ErrStoreUnavailable, copyID, err)
	}
	if raw == "" {
		return Origin{}, false, nil
	}
	origin, err := DecodeOrigin(raw)
	if err != nil {
		return Origin{}, false, err
	}
	return origin, true, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("%w: redis store is not initialized", ErrStoreUnavailable)
	}
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: ping: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// WriteProbe stores and reads back a throwaway key.
func (s *RedisStore) WriteProbe(ctx context.Context) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("%w: redis store is not initialized", ErrStoreUnavailable)
	}
	key := s.keyPrefix + "probe"
	if err := s.client.Set(ctx, key, "probe", time.Minute).Err(); err != nil {
		return fmt.Errorf("%w: write probe: %v", ErrStoreUnavailable, err)
	}
	if err := s.client.Get(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: read probe: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

package linkstore

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is a process-local Store. Links are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[int64]memoryEntry
	ttl     time.Duration
	nowFn   func() time.Time
}

type MemoryOptions struct {
	TTL time.Duration
	Now func() time.Time
}

func NewMemoryStore(opts MemoryOptions) *MemoryStore {
	nowFn := opts.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	ttl := opts.TTL
	if ttl < 0 {
		ttl = 0
	}
	return &MemoryStore{
		entries: make(map[int64]memoryEntry),
		ttl:     ttl,
		nowFn:   nowFn,
	}
}

func (s *MemoryStore) Put(ctx context.Context, copyID int64, origin Origin) error {
	if s == nil {
		return fmt.Errorf("%w: memory store is not initialized", ErrStoreUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	value, err := EncodeOrigin(origin)
	if err != nil {
		return err
	}
	s.PutRaw(copyID, value)
	return nil
}

// PutRaw stores value as-is, bypassing encoding.
func (s *MemoryStore) PutRaw(copyID int64, value string) {
	entry := memoryEntry{value: value}
	if s.ttl > 0 {
		entry.expiresAt = s.nowFn().Add(s.ttl)
	}
	s.mu.Lock()
	s.entries[copyID] = entry
	s.mu.Unlock()
}

func (s *MemoryStore) Get(ctx context.Context, copyID int64) (Origin, bool, error) {
	if s == nil {
		return Origin{}, false, fmt.Errorf("%w: memory store is not initialized", ErrStoreUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return Origin{}, false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	s.mu.RLock()
	entry, ok := s.entries[copyID]
	s.mu.RUnlock()
	if !ok || entry.value == "" {
		return Origin{}, false, nil
	}
	if !entry.expiresAt.IsZero() && !s.nowFn().Before(entry.expiresAt) {
		s.mu.Lock()
		if cur, ok := s.entries[copyID]; ok && cur.expiresAt.Equal(entry.expiresAt) {
			delete(s.entries, copyID)
		}
		s.mu.Unlock()
		return Origin{}, false, nil
	}
	origin, err := DecodeOrigin(entry.value)
	if err != nil {
		return Origin{}, false, err
	}
	return origin, true, nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("%w: memory store is not initialized", ErrStoreUnavailable)
	}
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

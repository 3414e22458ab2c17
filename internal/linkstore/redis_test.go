package linkstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedisStore(t *testing.T, prefix string, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(RedisOptions{
		URL:       "redis://" + mr.Addr(),
		KeyPrefix: prefix,
		TTL:       ttl,
	})
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStorePutWritesLegacyLayout(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t, "", 0)
	if err := store.Put(context.Background(), 555, NewOrigin(100, 0, 7)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err := mr.Get("555")
	if err != nil {
		t.Fatalf("miniredis Get() error = %v", err)
	}
	want := `{"original_chat_id":100,"original_tread_id":null,"original_message_id":7}`
	if got != want {
		t.Fatalf("stored value = %s, want %s", got, want)
	}
	if ttl := mr.TTL("555"); ttl != 0 {
		t.Fatalf("ttl = %v, want none", ttl)
	}
}

func TestRedisStoreRoundTripWithThread(t *testing.T) {
	t.Parallel()

	store, _ := newTestRedisStore(t, "anonbot:link:", 0)
	ctx := context.Background()
	want := NewOrigin(-100777, 15, 42)
	if err := store.Put(ctx, 9000, want); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	first, ok, err := store.Get(ctx, 9000)
	if err != nil || !ok {
		t.Fatalf("Get() = ok %v err %v, want ok true", ok, err)
	}
	second, ok, err := store.Get(ctx, 9000)
	if err != nil || !ok {
		t.Fatalf("second Get() = ok %v err %v, want ok true", ok, err)
	}
	if !first.Equal(want) || !second.Equal(first) {
		t.Fatalf("Get() = %+v then %+v, want %+v", first, second, want)
	}
}

func TestRedisStoreAbsentEmptyAndMalformed(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t, "", 0)
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, 1); ok || err != nil {
		t.Fatalf("Get(missing) = ok %v err %v, want ok false err nil", ok, err)
	}
	if err := mr.Set("2", ""); err != nil {
		t.Fatalf("miniredis Set() error = %v", err)
	}
	if _, ok, err := store.Get(ctx, 2); ok || err != nil {
		t.Fatalf("Get(empty) = ok %v err %v, want ok false err nil", ok, err)
	}
	if err := mr.Set("3", "not-json"); err != nil {
		t.Fatalf("miniredis Set() error = %v", err)
	}
	if _, _, err := store.Get(ctx, 3); !errors.Is(err, ErrDeserialization) {
		t.Fatalf("Get(malformed) error = %v, want ErrDeserialization", err)
	}
}

func TestRedisStoreAppliesTTL(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t, "", 48*time.Hour)
	ctx := context.Background()
	if err := store.Put(ctx, 77, NewOrigin(1, 0, 2)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if ttl := mr.TTL("77"); ttl != 48*time.Hour {
		t.Fatalf("ttl = %v, want 48h", ttl)
	}
	mr.FastForward(49 * time.Hour)
	if _, ok, err := store.Get(ctx, 77); ok || err != nil {
		t.Fatalf("Get(expired) = ok %v err %v, want ok false err nil", ok, err)
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t, "", 0)
	mr.SetError("LOADING redis is loading the dataset")
	ctx := context.Background()
	if err := store.Put(ctx, 1, NewOrigin(1, 0, 1)); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("Put() error = %v, want ErrStoreUnavailable", err)
	}
	if _, _, err := store.Get(ctx, 1); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("Get() error = %v, want ErrStoreUnavailable", err)
	}
	if err := store.Ping(ctx); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("Ping() error = %v, want ErrStoreUnavailable", err)
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem, err := Open(ctx, OpenOptions{URL: "memory://"})
	if err != nil {
		t.Fatalf("Open(memory) error = %v", err)
	}
	if _, ok := mem.(*MemoryStore); !ok {
		t.Fatalf("Open(memory) = %T, want *MemoryStore", mem)
	}

	mr := miniredis.RunT(t)
	rs, err := Open(ctx, OpenOptions{URL: "redis://" + mr.Addr(), WriteProbe: true})
	if err != nil {
		t.Fatalf("Open(redis) error = %v", err)
	}
	defer rs.Close()
	if _, ok := rs.(*RedisStore); !ok {
		t.Fatalf("Open(redis) = %T, want *RedisStore", rs)
	}

	for _, raw := range []string{"", "ftp://example.com", "://bad"} {
		if _, err := Open(ctx, OpenOptions{URL: raw}); !errors.Is(err, ErrInvalidURL) {
			t.Fatalf("Open(%q) error = %v, want ErrInvalidURL", raw, err)
		}
	}
}

package relaymetrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vandi37/anonimus-bot/internal/linkstore"
	"github.com/vandi37/anonimus-bot/internal/relay"
)

func TestResult(t *testing.T) {
	t.Parallel()

	cases := map[string]error{
		"ok":                nil,
		"transport_error":   fmt.Errorf("%w: copy: boom", relay.ErrTransport),
		"store_unavailable": fmt.Errorf("%w: get: refused", linkstore.ErrStoreUnavailable),
		"malformed_link":    fmt.Errorf("%w: bad", linkstore.ErrDeserialization),
		"error":             errors.New("other"),
	}
	for want, err := range cases {
		if got := Result(err); got != want {
			t.Fatalf("Result(%v) = %q, want %q", err, got, want)
		}
	}
}

func TestObserveEvent(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveEvent(relay.KindUserMessage, nil, 10*time.Millisecond)
	m.ObserveEvent(relay.KindUserMessage, relay.ErrTransport, time.Millisecond)
	if got := testutil.ToFloat64(m.events.WithLabelValues("user_message", "ok")); got != 1 {
		t.Fatalf("ok events = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.events.WithLabelValues("user_message", "transport_error")); got != 1 {
		t.Fatalf("transport_error events = %v, want 1", got)
	}

	var nilMetrics *Metrics
	nilMetrics.ObserveEvent(relay.KindCommand, nil, 0)
	nilMetrics.PollFailed()
}

func TestInstrumentStore(t *testing.T) {
	t.Parallel()

	m := New()
	store := InstrumentStore(linkstore.NewMemoryStore(linkstore.MemoryOptions{}), m)
	ctx := context.Background()
	if err := store.Put(ctx, 1, linkstore.NewOrigin(2, 0, 3)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, _, err := store.Get(ctx, 1); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if _, _, err := store.Get(ctx, 99); err != nil {
		t.Fatalf("Get(missing) error = %v", err)
	}
	if got := testutil.ToFloat64(m.storeOps.WithLabelValues("get", "absent")); got != 1 {
		t.Fatalf("absent gets = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.storeOps.WithLabelValues("put", "ok")); got != 1 {
		t.Fatalf("ok puts = %v, want 1", got)
	}
}

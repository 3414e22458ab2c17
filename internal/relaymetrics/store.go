package relaymetrics

import (
	"context"

	"github.com/vandi37/anonimus-bot/internal/linkstore"
)

// InstrumentStore counts every call made to next.
func InstrumentStore(next linkstore.Store, m *Metrics) linkstore.Store {
	if m == nil {
		return next
	}
	return &instrumentedStore{next: next, metrics: m}
}

type instrumentedStore struct {
	next    linkstore.Store
	metrics *Metrics
}

func (s *instrumentedStore) Put(ctx context.Context, copyID int64, origin linkstore.Origin) error {
	err := s.next.Put(ctx, copyID, origin)
	s.metrics.storeOps.WithLabelValues("put", Result(err)).Inc()
	return err
}

func (s *instrumentedStore) Get(ctx context.Context, copyID int64) (linkstore.Origin, bool, error) {
	origin, ok, err := s.next.Get(ctx, copyID)
	result := Result(err)
	if err == nil && !ok {
		result = "absent"
	}
	s.metrics.storeOps.WithLabelValues("get", result).Inc()
	return origin, ok, err
}

func (s *instrumentedStore) Ping(ctx context.Context) error {
	err := s.next.Ping(ctx)
	s.metrics.storeOps.WithLabelValues("ping", Result(err)).Inc()
	return err
}

func (s *instrumentedStore) Close() error {
	return s.next.Close()
}

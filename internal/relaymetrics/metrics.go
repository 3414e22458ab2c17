package relaymetrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vandi37/anonimus-bot/internal/linkstore"
	"github.com/vandi37/anonimus-bot/internal/relay"
)

const namespace = "anonbot"

// Metrics holds the relay's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	events        *prometheus.CounterVec
	eventDuration *prometheus.HistogramVec
	inFlight      prometheus.Gauge
	storeOps      *prometheus.CounterVec
	pollErrors    prometheus.Counter
	updateOffset  prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Inbound messages by route kind and result.",
		}, []string{"kind", "result"}),
		eventDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "event_duration_seconds",
			Help:      "Time spent handling one inbound message.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "events_in_flight",
			Help:      "Messages currently being handled.",
		}),
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "link_store_operations_total",
			Help:      "Link store calls by operation and result.",
		}, []string{"op", "result"}),
		pollErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_errors_total",
			Help:      "Failed getUpdates calls.",
		}),
		updateOffset: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "update_offset",
			Help:      "Next Telegram update id requested.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.events,
		m.eventDuration,
		m.inFlight,
		m.storeOps,
		m.pollErrors,
		m.updateOffset,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveEvent records one handled message. A nil receiver is a no-op.
func (m *Metrics) ObserveEvent(kind relay.Kind, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(string(kind), Result(err)).Inc()
	m.eventDuration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
}

func (m *Metrics) EventStarted() {
	if m != nil {
		m.inFlight.Inc()
	}
}

func (m *Metrics) EventDone() {
	if m != nil {
		m.inFlight.Dec()
	}
}

func (m *Metrics) PollFailed() {
	if m != nil {
		m.pollErrors.Inc()
	}
}

func (m *Metrics) SetOffset(offset int64) {
	if m != nil {
		m.updateOffset.Set(float64(offset))
	}
}

// Result maps an error to a low-cardinality label value.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, relay.ErrTransport):
		return "transport_error"
	case errors.Is(err, linkstore.ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, linkstore.ErrDeserialization):
		return "malformed_link"
	case errors.Is(err, linkstore.ErrSerialization):
		return "serialization_error"
	default:
		return "error"
	}
}

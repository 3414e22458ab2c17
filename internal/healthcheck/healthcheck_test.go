package healthcheck

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNormalizeListen(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":               "",
		" 8080 ":         ":8080",
		"127.0.0.1:9000": "127.0.0.1:9000",
		":9100":          ":9100",
	}
	for in, want := range cases {
		if got := NormalizeListen(in); got != want {
			t.Fatalf("NormalizeListen(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHandlerEndpoints(t *testing.T) {
	t.Parallel()

	var readyErr error
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_counter_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	h := Handler(Options{
		Component: "relay",
		Ready:     func(context.Context) error { return readyErr },
		Registry:  reg,
	})
	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	if rec := get("/healthz"); rec.Code != http.StatusOK {
		t.Fatalf("/healthz code = %d", rec.Code)
	}
	if rec := get("/readyz"); rec.Code != http.StatusOK {
		t.Fatalf("/readyz code = %d", rec.Code)
	}
	readyErr = errors.New("store down")
	rec := get("/readyz")
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "store down") {
		t.Fatalf("/readyz = %d %s", rec.Code, rec.Body.String())
	}
	if rec := get("/metrics"); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "test_counter_total 1") {
		t.Fatalf("/metrics = %d %s", rec.Code, rec.Body.String())
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// counterValue reads the current value of a labeled counter.
func counterValue(t *testing.T, vec *prometheus.CounterVec, labels prometheus.Labels) float64 {
	t.Helper()
	counter, err := vec.GetMetricWith(labels)
	if err != nil {
		t.Fatalf("failed to get counter: %v", err)
	}
	var m dto.Metric
	if err := counter.(prometheus.Counter).Write(&m); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestHTTPMetricsRecordsRequest(t *testing.T) {
	metrics := NewMetrics()
	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		t.Fatalf("failed to register metrics: %v", err)
	}

	handler := HTTPMetrics(metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"ok":true}`)); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/search?q=informatique", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	got := counterValue(t, metrics.httpRequestsTotal, prometheus.Labels{
		"method": "GET",
		"path":   "/search",
		"status": "200",
	})
	if got != 1 {
		t.Errorf("expected 1 request recorded, got %f", got)
	}
}

func TestHTTPMetricsSkipsHealthEndpoints(t *testing.T) {
	metrics := NewMetrics()

	handler := HTTPMetrics(metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/health", "/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
	}

	var m dto.Metric
	counter, err := metrics.httpRequestsTotal.GetMetricWith(prometheus.Labels{
		"method": "GET", "path": "/health", "status": "200",
	})
	if err != nil {
		t.Fatalf("failed to get counter: %v", err)
	}
	if err := counter.(prometheus.Counter).Write(&m); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if m.GetCounter().GetValue() != 0 {
		t.Errorf("expected health endpoint to be excluded from metrics")
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/search", "/search"},
		{"/universities", "/universities"},
		{"/universities/0b7f3c", "/universities/{id}"},
		{"/programs/42", "/programs/{id}"},
		{"/tests/results/9c2d", "/tests/results/{id}"},
		{"/tests/questions", "/tests/questions"},
		{"/unknown/route/deep", "/unknown/route/deep"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := normalizePath(tt.path); got != tt.expected {
				t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}

package providers

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"fmd/internal/structures"
)

func swapRegistry(t *testing.T) {
	t.Helper()
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
	t.Cleanup(func() {
		prometheus.DefaultRegisterer = prometheus.NewRegistry()
		prometheus.DefaultGatherer = prometheus.DefaultRegisterer.(prometheus.Gatherer)
	})
}

func TestNoopMetrics_WhenDisabled(t *testing.T) {
	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: false},
	}
	m := NewMetricsProvider(conf)
	_, ok := m.(*noopMetrics)
	assert.True(t, ok, "should return noopMetrics when disabled")

	// Ensure no-op methods don't panic
	m.IncRequestsTotal("/test", 200)
	m.ObserveRequestDuration("/test", time.Millisecond)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.IncSamplesIngested("esp-1")
	m.IncWarningsRaised("esp-1")
	m.IncStreamClients()
	m.DecStreamClients()
	m.RegisterGauge("noop", "noop", func() float64 { return 0 })
}

func TestMetricsProvider_WhenEnabled(t *testing.T) {
	swapRegistry(t)

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf)
	_, ok := m.(*MetricsProvider)
	assert.True(t, ok, "should return MetricsProvider when enabled")
}

func TestMetricsProvider_IncrementCounters(t *testing.T) {
	swapRegistry(t)

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf)

	// These should not panic
	m.IncRequestsTotal("/devices", 200)
	m.IncRequestsTotal("/devices", 404)
	m.ObserveRequestDuration("/devices", 5*time.Millisecond)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.IncSamplesIngested("esp-1")
	m.IncWarningsRaised("esp-1")
	m.IncStreamClients()
	m.DecStreamClients()
	m.RegisterGauge("fmd_test_gauge", "test", func() float64 { return 1 })
}

func TestHttpStatusBucket(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{201, "2xx"},
		{301, "3xx"},
		{400, "4xx"},
		{404, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, httpStatusBucket(tt.code))
	}
}

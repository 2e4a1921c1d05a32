package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"fmd/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncSamplesIngested(deviceID string)
	IncWarningsRaised(deviceID string)
	IncStreamClients()
	DecStreamClients()
	// RegisterGauge exposes a domain counter as a prometheus gauge; the
	// app wires these at startup so the provider stays decoupled from the
	// service layer.
	RegisterGauge(name, help string, fn func() float64)
}

type MetricsProvider struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	samplesIngested *prometheus.CounterVec
	warningsRaised  *prometheus.CounterVec
	streamClients   prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncSamplesIngested(deviceID string) {
	m.samplesIngested.WithLabelValues(deviceID).Inc()
}

func (m *MetricsProvider) IncWarningsRaised(deviceID string) {
	m.warningsRaised.WithLabelValues(deviceID).Inc()
}

func (m *MetricsProvider) IncStreamClients() {
	m.streamClients.Inc()
}

func (m *MetricsProvider) DecStreamClients() {
	m.streamClients.Dec()
}

func (m *MetricsProvider) RegisterGauge(name, help string, fn func() float64) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: help}, fn)
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fmd_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fmd_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fmd_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fmd_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		samplesIngested: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fmd_samples_ingested_total",
			Help: "Flow sensor samples accepted, per device",
		}, []string{"device"}),

		warningsRaised: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fmd_warnings_raised_total",
			Help: "Divergence warnings created, per device",
		}, []string{"device"}),

		streamClients: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "fmd_stream_clients",
			Help: "Connected websocket watchers",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncSamplesIngested(_ string)                      {}
func (n *noopMetrics) IncWarningsRaised(_ string)                       {}
func (n *noopMetrics) IncStreamClients()                                {}
func (n *noopMetrics) DecStreamClients()                                {}
func (n *noopMetrics) RegisterGauge(_, _ string, _ func() float64)      {}

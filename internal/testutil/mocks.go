package testutil

import (
	"sync"
	"time"

	"fmd/internal/providers"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// MockMetrics implements providers.MetricsProviderInterface and counts
// calls.
type MockMetrics struct {
	mu            sync.Mutex
	Requests      int
	CacheHits     int
	CacheMisses   int
	Samples       int
	Warnings      int
	StreamClients int
	Gauges        map[string]func() float64
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{Gauges: make(map[string]func() float64)}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) IncSamplesIngested(_ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Samples++
}

func (m *MockMetrics) IncWarningsRaised(_ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Warnings++
}

func (m *MockMetrics) IncStreamClients() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StreamClients++
}

func (m *MockMetrics) DecStreamClients() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StreamClients--
}

func (m *MockMetrics) RegisterGauge(name, _ string, fn func() float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gauges[name] = fn
}

// MockUploads implements providers.UploadProviderInterface in memory.
type MockUploads struct {
	mu    sync.Mutex
	Blobs map[string][]byte
}

func NewMockUploads() *MockUploads {
	return &MockUploads{Blobs: make(map[string][]byte)}
}

func (m *MockUploads) SaveBlob(data []byte, ext string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	url := "/uploads/blob" + ext
	m.Blobs[url] = data
	return url, nil
}

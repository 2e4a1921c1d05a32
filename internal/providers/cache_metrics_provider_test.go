package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type cacheMetricsTestInner struct {
	data map[string][]byte
}

func (c *cacheMetricsTestInner) Get(key string) ([]byte, bool) {
	v, ok := c.data[key]
	return v, ok
}
func (c *cacheMetricsTestInner) Set(key string, value []byte) {
	c.data[key] = value
}

func TestInstrumentedCache_CountsHit(t *testing.T) {
	inner := &cacheMetricsTestInner{data: map[string][]byte{"devices:u1": []byte(`[]`)}}
	metrics := &mockMetrics{}
	cache := &instrumentedCache{inner: inner, metrics: metrics}

	val, ok := cache.Get("devices:u1")
	assert.True(t, ok)
	assert.Equal(t, []byte(`[]`), val)
	assert.Equal(t, 1, metrics.cacheHits)
	assert.Equal(t, 0, metrics.cacheMisses)
}

func TestInstrumentedCache_CountsMiss(t *testing.T) {
	inner := &cacheMetricsTestInner{data: map[string][]byte{}}
	metrics := &mockMetrics{}
	cache := &instrumentedCache{inner: inner, metrics: metrics}

	val, ok := cache.Get("device:esp-1")
	assert.False(t, ok)
	assert.Nil(t, val)
	assert.Equal(t, 0, metrics.cacheHits)
	assert.Equal(t, 1, metrics.cacheMisses)
}

func TestInstrumentedCache_SetDelegatesUncounted(t *testing.T) {
	inner := &cacheMetricsTestInner{data: map[string][]byte{}}
	metrics := &mockMetrics{}
	cache := &instrumentedCache{inner: inner, metrics: metrics}

	cache.Set("device:esp-1", []byte(`{"id":"esp-1"}`))

	val, ok := inner.Get("device:esp-1")
	assert.True(t, ok)
	assert.Equal(t, []byte(`{"id":"esp-1"}`), val)
	assert.Equal(t, 0, metrics.cacheHits)
	assert.Equal(t, 0, metrics.cacheMisses)
}

func TestInstrumentedCache_CountsEveryLookup(t *testing.T) {
	inner := &cacheMetricsTestInner{data: map[string][]byte{"devices:u1": []byte(`[]`)}}
	metrics := &mockMetrics{}
	cache := &instrumentedCache{inner: inner, metrics: metrics}

	cache.Get("devices:u1")      // hit
	cache.Get("device:esp-1")    // miss
	cache.Get("devices:u1")      // hit
	cache.Get("history:esp-1:q") // miss

	assert.Equal(t, 2, metrics.cacheHits)
	assert.Equal(t, 2, metrics.cacheMisses)
}

func TestNewInstrumentedCacheProvider_DisabledSkipsWrapping(t *testing.T) {
	conf := cacheConfig(false, 10, 0)
	c := NewInstrumentedCacheProvider(conf, &cacheTestLogger{}, &mockMetrics{})
	assert.IsType(t, &noopCache{}, c)
}

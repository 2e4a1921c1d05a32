package providers

import "fmd/internal/structures"

// instrumentedCache decorates the response cache the read endpoints funnel
// through. Hit and miss counters are bumped here and nowhere else, so the
// controllers cannot double count a lookup.
type instrumentedCache struct {
	inner   CacheProviderInterface
	metrics MetricsProviderInterface
}

func (c *instrumentedCache) Get(key string) ([]byte, bool) {
	val, ok := c.inner.Get(key)
	if ok {
		c.metrics.IncCacheHits()
	} else {
		c.metrics.IncCacheMisses()
	}
	return val, ok
}

func (c *instrumentedCache) Set(key string, value []byte) {
	c.inner.Set(key, value)
}

// NewInstrumentedCacheProvider wraps the freecache provider with hit/miss
// counters. A disabled cache stays unwrapped; the noop misses every lookup
// and would report a phantom 0% hit rate for a feature that is off.
func NewInstrumentedCacheProvider(conf *structures.Config, logger Logger, metrics MetricsProviderInterface) CacheProviderInterface {
	inner := NewCacheProvider(conf, logger)
	if !conf.Cache.Enabled {
		return inner
	}
	return &instrumentedCache{
		inner:   inner,
		metrics: metrics,
	}
}

package providers

import "snapshotd/internal/structures"

// instrumentedCache counts snapshot cache hits and misses. Set and Del pass
// straight through to the embedded cache.
type instrumentedCache struct {
	CacheProviderInterface
	metrics MetricsProviderInterface
}

func (c *instrumentedCache) Get(key string) ([]byte, bool) {
	val, ok := c.CacheProviderInterface.Get(key)
	if ok {
		c.metrics.IncCacheHits()
	} else {
		c.metrics.IncCacheMisses()
	}
	return val, ok
}

// NewInstrumentedCacheProvider is the cache the snapshot store reads through.
// A disabled cache is returned bare so it does not report phantom misses.
func NewInstrumentedCacheProvider(conf *structures.Config, logger Logger, metrics MetricsProviderInterface) CacheProviderInterface {
	cache := NewCacheProvider(conf, logger)
	if _, disabled := cache.(*noopCache); disabled {
		return cache
	}
	return &instrumentedCache{CacheProviderInterface: cache, metrics: metrics}
}

package providers

import (
	"errors"
	"snapshotd/internal/structures"
	"unsafe"

	"github.com/coocood/freecache"
)

// minCacheBytes is the smallest size freecache accepts.
const minCacheBytes = 512 * 1024

// CacheProviderInterface holds encoded snapshots keyed by address.
type CacheProviderInterface interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Del(key string)
}

// CacheProvider is a freecache segment cache. freecache refuses entries larger
// than 1/1024 of its size, so large snapshots are simply not cached.
type CacheProvider struct {
	cache  *freecache.Cache
	ttl    int
	logger Logger
}

func NewCacheProvider(conf *structures.Config, logger Logger) CacheProviderInterface {
	if !conf.Cache.Enabled || conf.Cache.Size <= 0 {
		logger.Infof(TypeApp, "Snapshot cache disabled")
		return &noopCache{}
	}

	sizeBytes := max(conf.Cache.Size*1024*1024, minCacheBytes)
	ttl := max(int(conf.Cache.TTL.Seconds()), 1)

	logger.Infof(TypeApp, "Snapshot cache: %dMB, TTL=%ds, max entry %d bytes", conf.Cache.Size, ttl, sizeBytes/1024)

	return &CacheProvider{
		cache:  freecache.NewCache(sizeBytes),
		ttl:    ttl,
		logger: logger,
	}
}

// unsafeStringToBytes converts string to []byte without allocation.
// The result must stay read-only; freecache copies keys internally.
func unsafeStringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func (c *CacheProvider) Get(key string) ([]byte, bool) {
	val, err := c.cache.Get(unsafeStringToBytes(key))
	if err != nil {
		return nil, false
	}
	return val, true
}

// Set drops any previous value for key when the new one cannot be stored, so a
// stale snapshot is never served after a newer write.
func (c *CacheProvider) Set(key string, value []byte) {
	err := c.cache.Set(unsafeStringToBytes(key), value, c.ttl)
	if err == nil {
		return
	}
	c.cache.Del(unsafeStringToBytes(key))
	if errors.Is(err, freecache.ErrLargeEntry) {
		c.logger.Debugf(TypeStore, "Snapshot for %s not cached: %d bytes is over the entry limit", key, len(value))
		return
	}
	c.logger.Warnf(TypeStore, "Cache set for %s failed: %s", key, err)
}

func (c *CacheProvider) Del(key string) {
	c.cache.Del(unsafeStringToBytes(key))
}

type noopCache struct{}

func (n *noopCache) Get(_ string) ([]byte, bool) { return nil, false }
func (n *noopCache) Set(_ string, _ []byte)      {}
func (n *noopCache) Del(_ string)                {}

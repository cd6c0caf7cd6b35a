package providers

import (
	"time"
	"unsafe"

	"birdsong/internal/structures"

	"github.com/coocood/freecache"
)

type CacheProviderInterface interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	// SetWithTTL reports entries the cache refuses, e.g. freecache.ErrLargeEntry.
	SetWithTTL(key string, value []byte, ttl time.Duration) error
	Del(key string)
}

type CacheProvider struct {
	cache *freecache.Cache
	ttl   int
}

// NewCacheProvider sizes the cache in megabytes. Entries outlive their
// freshness window and are dropped after timeline.gcTime.
func NewCacheProvider(conf *structures.Config, logger Logger) CacheProviderInterface {
	if !conf.Cache.Enabled || conf.Cache.Size <= 0 {
		logger.Infof(TypeApp, "Cache disabled")
		return &noopCache{}
	}

	sizeBytes := conf.Cache.Size * 1024 * 1024
	ttl := ttlSeconds(conf.Timeline.GcTime)

	logger.Infof(TypeApp, "Cache initialized: %dMB, TTL=%ds", conf.Cache.Size, ttl)

	return &CacheProvider{
		cache: freecache.NewCache(sizeBytes),
		ttl:   ttl,
	}
}

func ttlSeconds(d time.Duration) int {
	return max(int(d.Seconds()), 1)
}

// unsafeStringToBytes converts string to []byte without allocation.
// Safe when the result is only read (not modified), which is the case
// for freecache, which copies keys internally.
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

func (c *CacheProvider) Set(key string, value []byte) {
	_ = c.cache.Set(unsafeStringToBytes(key), value, c.ttl)
}

func (c *CacheProvider) SetWithTTL(key string, value []byte, ttl time.Duration) error {
	return c.cache.Set(unsafeStringToBytes(key), value, ttlSeconds(ttl))
}

func (c *CacheProvider) Del(key string) {
	c.cache.Del(unsafeStringToBytes(key))
}

type noopCache struct{}

func (n *noopCache) Get(_ string) ([]byte, bool)                          { return nil, false }
func (n *noopCache) Set(_ string, _ []byte)                               {}
func (n *noopCache) SetWithTTL(_ string, _ []byte, _ time.Duration) error { return nil }
func (n *noopCache) Del(_ string)                                         {}

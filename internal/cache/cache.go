package cache

import (
	"crypto/md5"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ZanzyTHEbar/sentiment-o-meter/internal/monitoring"
)

// DefaultCapacity is used when a non-positive capacity is configured
const DefaultCapacity = 1000

// Cache is a thread-safe, size-bounded LRU keyed by exact text. Entries are
// write-once: adding a key that is already present keeps the original value.
type Cache[V any] struct {
	items    *lru.Cache[string, V]
	capacity int
	metrics  *monitoring.Metrics
	logger   *monitoring.Logger
}

// New creates a cache holding at most capacity entries. metrics and logger
// may be nil.
func New[V any](capacity int, metrics *monitoring.Metrics, logger *monitoring.Logger) (*Cache[V], error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	c := &Cache[V]{
		capacity: capacity,
		metrics:  metrics,
		logger:   logger,
	}

	items, err := lru.NewWithEvict[string, V](capacity, func(key string, _ V) {
		c.metrics.IncrementCacheEviction()
		if c.logger != nil {
			c.logger.CacheLogger("evict", KeyHash(key), false, capacity)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}
	c.items = items

	return c, nil
}

// KeyHash returns a short, log-safe fingerprint of a cache key
func KeyHash(key string) string {
	hash := md5.Sum([]byte(key))
	return fmt.Sprintf("%x", hash)[:8]
}

// Get retrieves an item and marks it most recently used
func (c *Cache[V]) Get(key string) (V, bool) {
	value, ok := c.items.Get(key)
	if ok {
		c.metrics.IncrementCacheHit()
	} else {
		c.metrics.IncrementCacheMiss()
	}
	if c.logger != nil {
		c.logger.CacheLogger("get", KeyHash(key), ok, c.items.Len())
	}
	return value, ok
}

// Peek retrieves an item without touching recency or metrics
func (c *Cache[V]) Peek(key string) (V, bool) {
	return c.items.Peek(key)
}

// Add stores value under key unless key is already cached. It reports
// whether the value was stored.
func (c *Cache[V]) Add(key string, value V) bool {
	present, _ := c.items.ContainsOrAdd(key, value)
	if c.logger != nil {
		c.logger.CacheLogger("add", KeyHash(key), present, c.items.Len())
	}
	return !present
}

// Len returns the number of cached items
func (c *Cache[V]) Len() int {
	return c.items.Len()
}

// Stats returns cache statistics
func (c *Cache[V]) Stats() map[string]interface{} {
	size := c.items.Len()
	return map[string]interface{}{
		"total_items": size,
		"capacity":    c.capacity,
		"free_slots":  c.capacity - size,
	}
}

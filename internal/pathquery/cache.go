package pathquery

import (
	"container/list"
	"sync"
)

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Cache keeps recently compiled queries. It is owned by the caller, bounded
// and safe for concurrent use. Failed compilations are not cached.
type Cache struct {
	mu       sync.Mutex
	capacity int
	opts     []Option
	order    *list.List
	entries  map[string]*list.Element
	stats    CacheStats
}

type cacheEntry struct {
	source string
	query  *Query
}

// NewCache returns a cache holding at most capacity queries, compiled
// with opts. A capacity below one is treated as one.
func NewCache(capacity int, opts ...Option) *Cache {
	return &Cache{
		capacity: max(capacity, 1),
		opts:     opts,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
	}
}

// Get returns the compiled form of query, compiling it on a miss.
func (c *Cache) Get(query string) (*Query, error) {
	c.mu.Lock()
	if el, ok := c.entries[query]; ok {
		c.order.MoveToFront(el)
		c.stats.Hits++
		q := el.Value.(*cacheEntry).query
		c.mu.Unlock()
		return q, nil
	}
	c.stats.Misses++
	c.mu.Unlock()

	q, err := Compile(query, c.opts...)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have compiled the same query meanwhile.
	if el, ok := c.entries[query]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*cacheEntry).query, nil
	}

	c.entries[query] = c.order.PushFront(&cacheEntry{source: query, query: q})
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).source)
		c.stats.Evictions++
	}

	return q, nil
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Package cache provides a thread-safe LRU cache for compiled ranking
// expressions.
//
// Hosts that re-evaluate the same expression text across many documents
// can use this to avoid re-parsing it every time; GetOrCompile parses
// only on a miss and keeps a successful result for later calls with the
// same key.
//
// # Example
//
//	c := cache.New(1024)
//	fn, err := c.GetOrCompile("price * 1.15", func() (*ast.Function, error) {
//		return parser.Compile("price * 1.15")
//	})
package cache

import (
	"container/list"
	"log/slog"
	"sync"

	"github.com/mlindqvist/rankexpr/ast"
)

// entry is a cache entry stored in the doubly-linked list.
type entry struct {
	key string
	fn  *ast.Function
}

// Cache is a thread-safe LRU (Least Recently Used) cache for compiled
// *ast.Function values, keyed by expression text (or any caller-chosen
// string combining expression text with a parameter signature).
//
// Safe for concurrent use by multiple goroutines.
type Cache struct {
	mu       sync.RWMutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
	logger   *slog.Logger
}

// New creates a new LRU cache with the given capacity. capacity must be
// > 0; if <= 0, a default of 256 is used.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 256
	}
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
		logger:   slog.Default(),
	}
}

// WithLogger overrides the cache's logger, used for debug-level eviction
// and compile-miss events.
func (c *Cache) WithLogger(logger *slog.Logger) *Cache {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = logger
	return c
}

// Get retrieves a compiled Function from the cache. Returns (fn, true)
// if found and moves the entry to front (MRU). Returns (nil, false) if
// not present.
func (c *Cache) Get(key string) (*ast.Function, bool) {
	c.mu.RLock()
	el, ok := c.items[key]
	alreadyFront := ok && c.ll.Front() == el
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !alreadyFront {
		c.mu.Lock()
		el, ok = c.items[key]
		if ok {
			c.ll.MoveToFront(el)
		}
		c.mu.Unlock()

		if !ok {
			return nil, false
		}
	}
	return el.Value.(*entry).fn, true
}

// Set inserts or replaces a Function in the cache. If at capacity, the
// least recently used entry is evicted first.
func (c *Cache) Set(key string, fn *ast.Function) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry).fn = fn
		c.ll.MoveToFront(el)
		return
	}

	if c.ll.Len() >= c.capacity {
		c.evictLocked()
	}

	el := c.ll.PushFront(&entry{key: key, fn: fn})
	c.items[key] = el
}

// GetOrCompile retrieves the Function for key from the cache, or calls
// compile() to produce it, caches the result, and returns it. compile is
// called only on a miss: after a successful compile, later calls with the
// same key return the cached Function until it is evicted or invalidated.
// A compile error is never cached, so a failing compile is retried on the
// next call. Concurrent misses on the same key may each call compile.
func (c *Cache) GetOrCompile(key string, compile func() (*ast.Function, error)) (*ast.Function, error) {
	if fn, ok := c.Get(key); ok {
		return fn, nil
	}
	c.logger.Debug("cache miss, compiling", "key", key)
	fn, err := compile()
	if err != nil {
		return nil, err
	}
	c.Set(key, fn)
	return fn, nil
}

// Len returns the number of entries currently in the cache.
func (c *Cache) Len() int {
	c.mu.RLock()
	n := len(c.items)
	c.mu.RUnlock()
	return n
}

// Capacity returns the maximum number of entries the cache can hold.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Invalidate removes a single entry from the cache.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.ll.Remove(el)
		delete(c.items, key)
	}
}

// Clear removes all entries from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element, c.capacity)
}

// evictLocked removes the least recently used entry. Must be called with
// c.mu held for writing.
func (c *Cache) evictLocked() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	evicted := el.Value.(*entry)
	c.logger.Debug("evicting cache entry", "key", evicted.key)
	c.ll.Remove(el)
	delete(c.items, evicted.key)
}

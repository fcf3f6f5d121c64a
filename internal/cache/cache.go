// Package cache provides a thread-safe LRU cache of compiled expressions.
//
// Entries are keyed by a 64-bit hash of the source text. Every hit returns a
// clone of the cached expression, so callers can bind variables and functions
// without affecting one another.
package cache

import (
	"container/list"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/zephyrtronium/bindexpr"
)

// DefaultCapacity is the capacity of a cache created with a nonpositive one.
const DefaultCapacity = 256

type entry struct {
	key  uint64
	src  string
	expr *bindexpr.Expr
}

// Cache is an LRU cache of compiled expressions. It is safe for concurrent use.
type Cache struct {
	mu       sync.RWMutex
	capacity int
	ll       *list.List
	items    map[uint64]*list.Element
}

// New creates a cache holding at most capacity expressions.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[uint64]*list.Element, capacity),
	}
}

// Key returns the hash under which src is cached.
func Key(src string) uint64 {
	return xxhash.Sum64String(src)
}

// Get returns a clone of the expression compiled from src, if it is cached.
func (c *Cache) Get(src string) (*bindexpr.Expr, bool) {
	key := Key(src)
	c.mu.RLock()
	el, ok := c.items[key]
	front := ok && c.ll.Front() == el
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !front {
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
	c.mu.RLock()
	e := el.Value.(*entry)
	src2, expr := e.src, e.expr
	c.mu.RUnlock()
	// A hash collision is a miss.
	if src2 != src {
		return nil, false
	}
	return expr.Clone(), true
}

// Set caches expr as the compilation of src, evicting the least recently used
// entry if the cache is full. The cache keeps its own clone of expr.
func (c *Cache) Set(src string, expr *bindexpr.Expr) {
	key := Key(src)
	expr = expr.Clone()
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry)
		e.src, e.expr = src, expr
		c.ll.MoveToFront(el)
		return
	}
	if c.ll.Len() >= c.capacity {
		c.evictLocked()
	}
	c.items[key] = c.ll.PushFront(&entry{key: key, src: src, expr: expr})
}

// GetOrCompile returns a clone of the cached compilation of src, or calls
// compile and caches its result. hit reports whether the result came from the
// cache. Errors are not cached.
func (c *Cache) GetOrCompile(src string, compile func(string) (*bindexpr.Expr, error)) (expr *bindexpr.Expr, hit bool, err error) {
	if expr, ok := c.Get(src); ok {
		return expr, true, nil
	}
	expr, err = compile(src)
	if err != nil {
		return nil, false, err
	}
	c.Set(src, expr)
	return expr, false, nil
}

// Len returns the number of cached expressions.
func (c *Cache) Len() int {
	c.mu.RLock()
	n := len(c.items)
	c.mu.RUnlock()
	return n
}

// Capacity returns the maximum number of cached expressions.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Invalidate removes the compilation of src from the cache.
func (c *Cache) Invalidate(src string) {
	key := Key(src)
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok && el.Value.(*entry).src == src {
		c.ll.Remove(el)
		delete(c.items, key)
	}
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[uint64]*list.Element, c.capacity)
}

// evictLocked removes the least recently used entry. c.mu must be held for
// writing.
func (c *Cache) evictLocked() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry).key)
}

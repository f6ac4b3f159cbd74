// Package cache provides the bounded answer cache shared by all requests.
package cache

import (
	"container/list"
	"strings"
	"sync"
)

// DefaultCapacity is the number of answers kept before eviction.
const DefaultCapacity = 10

type entry struct {
	key   string
	value string
}

// LRU maps normalized queries to answers with strict least-recently-used
// eviction. Keys are compared case-insensitively. Safe for concurrent use.
type LRU struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front is most recently used
	items    map[string]*list.Element
}

// New creates an LRU holding at most capacity entries; non-positive values
// fall back to DefaultCapacity.
func New(capacity int) *LRU {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &LRU{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Key normalizes a query into its cache key.
func Key(query string) string {
	return strings.ToLower(query)
}

// Get returns the answer cached for key and marks it most recently used.
func (c *LRU) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[Key(key)]
	if !ok {
		return "", false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry).value, true
}

// Put stores value under key as the most recently used entry, evicting the
// least recently used one when full.
func (c *LRU) Put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := Key(key)
	if el, ok := c.items[k]; ok {
		c.order.Remove(el)
		delete(c.items, k)
	}

	if c.order.Len() >= c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*entry).key)
		}
	}

	c.items[k] = c.order.PushFront(&entry{key: k, value: value})
}

// Len returns the number of cached answers.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Keys returns the cached keys from most to least recently used.
func (c *LRU) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*entry).key)
	}
	return keys
}

package cache

import (
	"sync"
	"time"
)

// item is a cached value with expiration
type item struct {
	value     string
	expiresAt time.Time
}

// Cache is a simple in-memory TTL cache for resolved identifiers, such
// as mailbox label ids.
type Cache struct {
	items map[string]item
	mutex sync.RWMutex
}

// New creates a new cache instance
func New() *Cache {
	return &Cache{
		items: make(map[string]item),
	}
}

// Get retrieves a value from the cache
func (c *Cache) Get(key string) (string, bool) {
	c.mutex.RLock()
	it, exists := c.items[key]
	c.mutex.RUnlock()

	if !exists {
		return "", false
	}
	if time.Now().After(it.expiresAt) {
		c.mutex.Lock()
		delete(c.items, key)
		c.mutex.Unlock()
		return "", false
	}
	return it.value, true
}

// Set stores a value in the cache with TTL
func (c *Cache) Set(key, value string, ttl time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items[key] = item{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

// Delete removes a value from the cache
func (c *Cache) Delete(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.items, key)
}

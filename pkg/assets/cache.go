// cache.go — Process-lifetime byte cache keyed by resolved asset path.
package assets

import (
	"errors"
	"io/fs"
	"sync"
)

// Cache reads assets from a Store at most once per path. Concurrent first use
// of the same path performs a single read; every caller sees the same result.
// Misses are cached too: the store is read-only for the life of the process.
type Cache struct {
	store Store

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	once sync.Once
	data []byte
	err  error
}

// NewCache wraps store with a read-once cache.
func NewCache(store Store) *Cache {
	return &Cache{store: store, entries: make(map[string]*cacheEntry)}
}

// ReadFile returns the bytes stored at name. The returned slice is shared
// between callers and must not be modified.
func (c *Cache) ReadFile(name string) ([]byte, error) {
	c.mu.Lock()
	e, ok := c.entries[name]
	if !ok {
		e = &cacheEntry{}
		c.entries[name] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		e.data, e.err = fs.ReadFile(c.store, name)
	})
	return e.data, e.err
}

// Exists reports whether name can be read.
func (c *Cache) Exists(name string) bool {
	_, err := c.ReadFile(name)
	return err == nil
}

// IsNotExist reports whether err means the asset is missing (as opposed to unreadable).
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// Len returns the number of cached paths, hits and misses alike.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

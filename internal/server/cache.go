package server

import "sync"

// viewCache memoizes computed views per snapshot. Keys embed the snapshot
// ID, and reset drops everything when the snapshot is replaced.
type viewCache struct {
	mu    sync.Mutex
	items map[string]any
}

func newViewCache() *viewCache {
	return &viewCache{items: make(map[string]any)}
}

// get returns the cached value for key, computing it with fn on a miss.
// fn runs outside the lock; concurrent misses may compute twice.
func (c *viewCache) get(key string, fn func() any) any {
	c.mu.Lock()
	v, hit := c.items[key]
	c.mu.Unlock()
	if hit {
		return v
	}
	v = fn()
	c.mu.Lock()
	c.items[key] = v
	c.mu.Unlock()
	return v
}

func (c *viewCache) reset() {
	c.mu.Lock()
	c.items = make(map[string]any)
	c.mu.Unlock()
}

func (c *viewCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

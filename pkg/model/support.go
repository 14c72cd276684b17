package model

import "sync"

// Cacheable is implemented by models that memoise their presenters. Embed
// Support to satisfy it.
type Cacheable interface {
	DecorationCache() *DecorationCache
}

// Support is embedded by host models to carry a per-instance decoration cache.
// Only pointer receivers satisfy Cacheable, so the cache lives as long as the
// model instance does.
type Support struct {
	cache DecorationCache
}

// DecorationCache returns the instance cache.
func (s *Support) DecorationCache() *DecorationCache {
	return &s.cache
}

// DecorationCache maps canonical option keys to presenters built for one
// model instance.
type DecorationCache struct {
	mu      sync.Mutex
	entries map[string]any
}

// Load returns the entry stored under key.
func (c *DecorationCache) Load(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.entries[key]
	return value, ok
}

// Store records value under key, replacing any previous entry.
func (c *DecorationCache) Store(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[string]any)
	}
	c.entries[key] = value
}

// LoadOrStore returns the existing entry for key if present. Otherwise it
// stores value and returns it with loaded set to false.
func (c *DecorationCache) LoadOrStore(key string, value any) (actual any, loaded bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok {
		return existing, true
	}
	if c.entries == nil {
		c.entries = make(map[string]any)
	}
	c.entries[key] = value
	return value, false
}

// Len returns the number of cached presenters.
func (c *DecorationCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Reset drops every cached presenter.
func (c *DecorationCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
}

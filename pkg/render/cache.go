package render

import "sync"

// templateCache maps view identifiers to compiled renderers. Entries live as
// long as the pipeline; nothing evicts or invalidates them.
type templateCache struct {
	mu      sync.RWMutex
	entries map[string]Renderer
}

func newTemplateCache() *templateCache {
	return &templateCache{entries: make(map[string]Renderer)}
}

func (c *templateCache) get(view string) (Renderer, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.entries[view]
	return r, ok
}

// put stores r for view. Two renders compiling the same view concurrently
// both store an equivalent renderer, the last one wins.
func (c *templateCache) put(view string, r Renderer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[view] = r
}

func (c *templateCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

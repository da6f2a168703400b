package pathtmpl

import "sync"

// Cache memoizes parsed templates by their source string, so the hot
// render path in the download workers parses each configured format once.
type Cache struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewCache returns an empty template cache.
func NewCache() *Cache {
	return &Cache{templates: make(map[string]*Template)}
}

// Parse returns the cached Template for src, parsing and storing it on
// first use. Parse failures are not cached; a corrected template string is
// a different key anyway.
func (c *Cache) Parse(src string) (*Template, error) {
	c.mu.RLock()
	t, ok := c.templates[src]
	c.mu.RUnlock()
	if ok {
		return t, nil
	}

	t, err := Parse(src)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.templates[src] = t
	c.mu.Unlock()
	return t, nil
}

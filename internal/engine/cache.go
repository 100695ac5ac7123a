package engine

import (
	"sync"
	"time"
)

// cacheEntry pairs a computed view with the dataset version it was computed
// against. Entries are only ever served to readers holding the same version.
type cacheEntry struct {
	view       interface{}
	version    uint64
	computedAt time.Time
}

// viewCache memoizes derived views keyed by (view kind, parameters). It is
// safe for concurrent use. There is no size bound beyond one entry per
// distinct key actually requested; invalidation is wholesale, never partial.
type viewCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

func newViewCache() *viewCache {
	return &viewCache{entries: make(map[string]cacheEntry)}
}

// getOrCompute returns the cached view for key if one was computed against
// version; otherwise it computes, stores and returns it. The entry version
// is re-checked before a hit is returned, so an invalidation racing with a
// read can cause a recompute but never a stale result.
func (c *viewCache) getOrCompute(version uint64, key string, compute func() (interface{}, error)) (cacheEntry, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && entry.version == version {
		return entry, nil
	}

	view, err := compute()
	if err != nil {
		return cacheEntry{}, err
	}
	entry = cacheEntry{view: view, version: version, computedAt: time.Now()}

	c.mu.Lock()
	// Another reader may have stored the same key meanwhile; keep whichever
	// entry matches the requested version.
	if cur, ok := c.entries[key]; ok && cur.version == version {
		entry = cur
	} else {
		c.entries[key] = entry
	}
	c.mu.Unlock()
	return entry, nil
}

// invalidateAll drops every entry. Called while the engine swaps in a new
// snapshot; readers of the previous version fall through to recompute and
// their results are tagged with whatever version they captured.
func (c *viewCache) invalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// len reports the number of live entries, for logging and tests.
func (c *viewCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

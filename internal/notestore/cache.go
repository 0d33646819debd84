package notestore

import (
	"os"
	"sync"
	"time"

	"github.com/okvist/miniref/internal/models"
)

// cacheEntry pairs a rendered note with the source file's modification time
// observed at render time.
type cacheEntry struct {
	note     models.Note
	modified time.Time
}

// cache is a read-through cache of rendered notes keyed by note id. It never
// renders anything itself; the store populates it after a successful render.
//
// Readers share the lock; writers hold it only for the map mutation, never
// for the duration of a render.
type cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

func newCache() *cache {
	return &cache{entries: make(map[string]cacheEntry)}
}

func (c *cache) get(id string) (cacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	return e, ok
}

func (c *cache) put(id string, e cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = e
}

func (c *cache) remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

func (c *cache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// valid reports whether the entry is still fresh for the file at path: the
// recorded modification time must be no earlier than the file's current one.
// Any stat failure counts as invalid, forcing a fresh read that will surface
// the underlying error itself.
func (e cacheEntry) valid(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !e.modified.Before(info.ModTime())
}

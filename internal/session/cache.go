package session

import (
	"os"
	"strconv"
	"sync"
)

// RoundCache is a thread-safe LRU cache of live rounds.
type RoundCache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]*Round
	order   []string // oldest first
	onEvict func(*Round)
}

// NewRoundCache creates a cache with the given maximum number of entries.
// If maxSize <= 0, it defaults to 256. onEvict, if set, runs for every
// round pushed out by capacity or removed explicitly. Busy rounds are
// skipped when making room, so the cache can briefly exceed maxSize.
func NewRoundCache(maxSize int, onEvict func(*Round)) *RoundCache {
	if maxSize <= 0 {
		maxSize = 256
	}
	return &RoundCache{
		maxSize: maxSize,
		entries: make(map[string]*Round),
		onEvict: onEvict,
	}
}

// CacheSizeFromEnv reads ROUND_CACHE_SIZE, defaulting to 256.
func CacheSizeFromEnv() int {
	size := 256
	if v := os.Getenv("ROUND_CACHE_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			size = parsed
		}
	}
	return size
}

// Get retrieves a round from the cache, or nil if not found.
func (c *RoundCache) Get(id string) *Round {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.entries[id]
	if !ok {
		return nil
	}

	// Move to end (most recently used)
	c.moveToEnd(id)
	return r
}

// Put adds a round to the cache, evicting the oldest if full.
func (c *RoundCache) Put(r *Round) {
	var evicted []*Round

	c.mu.Lock()
	if _, ok := c.entries[r.ID]; ok {
		c.entries[r.ID] = r
		c.moveToEnd(r.ID)
		c.mu.Unlock()
		return
	}

	// Evict oldest idle rounds if at capacity
	for i := 0; len(c.entries) >= c.maxSize && i < len(c.order); {
		id := c.order[i]
		old := c.entries[id]
		if old.pinned() {
			i++
			continue
		}
		c.order = append(c.order[:i], c.order[i+1:]...)
		delete(c.entries, id)
		evicted = append(evicted, old)
	}

	c.entries[r.ID] = r
	c.order = append(c.order, r.ID)
	c.mu.Unlock()

	c.evict(evicted)
}

// Remove drops a round from the cache.
func (c *RoundCache) Remove(id string) {
	c.mu.Lock()
	r, ok := c.entries[id]
	if ok {
		delete(c.entries, id)
		c.dropOrder(id)
	}
	c.mu.Unlock()

	if ok {
		c.evict([]*Round{r})
	}
}

// Drain empties the cache, running onEvict for every round.
func (c *RoundCache) Drain() {
	c.mu.Lock()
	all := make([]*Round, 0, len(c.entries))
	for _, id := range c.order {
		all = append(all, c.entries[id])
	}
	c.entries = make(map[string]*Round)
	c.order = nil
	c.mu.Unlock()

	c.evict(all)
}

// Len returns the number of cached rounds.
func (c *RoundCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *RoundCache) evict(rounds []*Round) {
	if c.onEvict == nil {
		return
	}
	for _, r := range rounds {
		c.onEvict(r)
	}
}

func (c *RoundCache) moveToEnd(id string) {
	for i, k := range c.order {
		if k == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, id)
			return
		}
	}
}

func (c *RoundCache) dropOrder(id string) {
	for i, k := range c.order {
		if k == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

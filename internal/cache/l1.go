package cache

import (
	"container/list"
	"sync"
	"time"
)

// L1 is the process-local tier: a bounded, TTL'd LRU over fingerprints.
// An actual eviction bound matters here because fingerprints are
// caller-controlled (one per distinct prompt), so L1 pairs a map with a
// container/list recency queue under a single mutex.
type L1 struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	entries  map[string]*list.Element
	order    *list.List // front = most recently used

	// now is swappable so expiry tests don't sleep.
	now func() time.Time
}

type l1Item struct {
	key       string
	entry     Entry
	expiresAt time.Time
}

// NewL1 builds an empty L1 tier. Non-positive capacity or TTL fall back to
// the package defaults.
func NewL1(capacity int, ttl time.Duration) *L1 {
	if capacity <= 0 {
		capacity = DefaultL1Size
	}
	if ttl <= 0 {
		ttl = DefaultL1TTL
	}
	return &L1{
		capacity: capacity,
		ttl:      ttl,
		entries:  make(map[string]*list.Element, capacity),
		order:    list.New(),
		now:      time.Now,
	}
}

// Get returns the entry for key if present and unexpired, promoting it to
// most-recently-used. Expired entries are deleted on the spot.
func (c *L1) Get(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return Entry{}, false
	}
	item := el.Value.(*l1Item)
	if c.now().After(item.expiresAt) {
		c.order.Remove(el)
		delete(c.entries, key)
		return Entry{}, false
	}
	c.order.MoveToFront(el)
	return item.entry, true
}

// Set stores entry under key, evicting the least-recently-used entry when
// the tier is at capacity.
func (c *L1) Set(key string, entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		item := el.Value.(*l1Item)
		item.entry = entry
		item.expiresAt = c.now().Add(c.ttl)
		c.order.MoveToFront(el)
		return
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*l1Item).key)
		}
	}

	c.entries[key] = c.order.PushFront(&l1Item{
		key:       key,
		entry:     entry,
		expiresAt: c.now().Add(c.ttl),
	})
}

// Delete removes key if present.
func (c *L1) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.order.Remove(el)
		delete(c.entries, key)
	}
}

// Len reports the number of live (possibly expired-but-unswept) entries.
func (c *L1) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/dgnsrekt/tickmix/internal/decode"
)

// MemoryCache implements an L1 in-memory cache of clips with LRU eviction.
type MemoryCache struct {
	capacity int64 // Maximum size in bytes
	size     int64 // Current size in bytes

	items    map[string]*list.Element
	eviction *list.List // front is most recently used

	mu    sync.Mutex
	stats Stats
}

type memoryEntry struct {
	key  string
	clip *decode.Clip
	size int64
}

// NewMemoryCache creates a new memory cache with the specified capacity in bytes.
func NewMemoryCache(capacity int64) *MemoryCache {
	return &MemoryCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		eviction: list.New(),
		stats:    Stats{Capacity: capacity},
	}
}

// Get returns the clip stored under key and marks it most recently used.
func (c *MemoryCache) Get(key string) (*decode.Clip, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}

	c.eviction.MoveToFront(elem)
	c.stats.Hits++
	c.stats.LastAccess = time.Now()
	return elem.Value.(*memoryEntry).clip, true
}

// Put stores clip under key, evicting least recently used clips to make room.
func (c *MemoryCache) Put(key string, clip *decode.Clip) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := clip.Size()
	if size > c.capacity {
		return ErrItemTooLarge
	}

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
	for c.size+size > c.capacity && c.eviction.Len() > 0 {
		c.removeElement(c.eviction.Back())
		c.stats.Evictions++
	}

	c.items[key] = c.eviction.PushFront(&memoryEntry{key: key, clip: clip, size: size})
	c.size += size
	return nil
}

// Delete removes key from the cache.
func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
}

// Clear removes all entries from the cache.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.eviction.Init()
	c.size = 0
}

// Contains checks if a key exists without updating LRU order.
func (c *MemoryCache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.items[key]
	return ok
}

// Size returns the current cache size in bytes.
func (c *MemoryCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Stats returns cache statistics.
func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats.finish(c.size, int64(len(c.items)))
}

// removeElement must be called with the lock held.
func (c *MemoryCache) removeElement(elem *list.Element) {
	entry := c.eviction.Remove(elem).(*memoryEntry)
	delete(c.items, entry.key)
	c.size -= entry.size
}

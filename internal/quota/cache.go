package quota

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/zeebo/xxh3"
)

// DefaultCacheSize matches the memo size the cleaning stage was tuned with.
const DefaultCacheSize = 512

// Cache memoizes pure string functions. Implementations must be safe for
// concurrent use; a lost race may recompute a value but must never return a
// value computed for another key.
type Cache interface {
	Get(key string) (string, bool)
	Add(key, value string)
	Purge()
	Len() int
}

// CacheStats is a point-in-time snapshot of an LRU.
type CacheStats struct {
	Hits     uint64 `json:"hits"`
	Misses   uint64 `json:"misses"`
	Len      int    `json:"len"`
	Capacity int    `json:"capacity"`
}

// LRU is a bounded, sharded least-recently-used cache. Keys are spread over
// shards by their xxh3 hash so concurrent workers rarely share a lock.
type LRU struct {
	shards   []*lruShard
	capacity int

	hits   atomic.Uint64
	misses atomic.Uint64
}

type lruShard struct {
	mu    sync.Mutex
	cap   int
	ll    *list.List
	items map[string]*list.Element
}

type lruEntry struct {
	key   string
	value string
}

const maxShards = 16

// NewLRU returns an LRU holding about capacity entries. capacity <= 0 selects
// DefaultCacheSize.
func NewLRU(capacity int) *LRU {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	n := 1
	for n < maxShards && capacity/(n*2) >= 32 {
		n *= 2
	}
	per := (capacity + n - 1) / n

	c := &LRU{shards: make([]*lruShard, n), capacity: per * n}
	for i := range c.shards {
		c.shards[i] = &lruShard{
			cap:   per,
			ll:    list.New(),
			items: make(map[string]*list.Element, per),
		}
	}
	return c
}

func (c *LRU) shard(key string) *lruShard {
	if len(c.shards) == 1 {
		return c.shards[0]
	}
	return c.shards[xxh3.HashString(key)&uint64(len(c.shards)-1)]
}

// Get returns the cached value for key and marks it recently used.
func (c *LRU) Get(key string) (string, bool) {
	s := c.shard(key)
	s.mu.Lock()
	el, ok := s.items[key]
	var v string
	if ok {
		s.ll.MoveToFront(el)
		v = el.Value.(*lruEntry).value
	}
	s.mu.Unlock()

	if !ok {
		c.misses.Add(1)
		return "", false
	}
	c.hits.Add(1)
	return v, true
}

// Add stores value under key, evicting the least recently used entry of the
// shard when it is full.
func (c *LRU) Add(key, value string) {
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.items[key]; ok {
		el.Value.(*lruEntry).value = value
		s.ll.MoveToFront(el)
		return
	}
	s.items[key] = s.ll.PushFront(&lruEntry{key: key, value: value})
	if s.ll.Len() > s.cap {
		oldest := s.ll.Back()
		s.ll.Remove(oldest)
		delete(s.items, oldest.Value.(*lruEntry).key)
	}
}

// Purge drops every entry. Hit/miss counters are kept.
func (c *LRU) Purge() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.ll.Init()
		s.items = make(map[string]*list.Element, s.cap)
		s.mu.Unlock()
	}
}

// Len returns the number of cached entries.
func (c *LRU) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.Lock()
		n += s.ll.Len()
		s.mu.Unlock()
	}
	return n
}

// Stats snapshots the counters.
func (c *LRU) Stats() CacheStats {
	return CacheStats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Len:      c.Len(),
		Capacity: c.capacity,
	}
}

// CachedCleaner memoizes a Cleaner.
type CachedCleaner struct {
	inner Cleaner
	cache Cache
}

// NewCachedCleaner wraps inner with cache.
func NewCachedCleaner(inner Cleaner, cache Cache) *CachedCleaner {
	return &CachedCleaner{inner: inner, cache: cache}
}

// Clean implements Cleaner.
func (c *CachedCleaner) Clean(raw string) string {
	if raw == "" {
		return ""
	}
	if v, ok := c.cache.Get(raw); ok {
		return v
	}
	v := c.inner.Clean(raw)
	c.cache.Add(raw, v)
	return v
}

// CachedDetector memoizes a Detector. A miss is cached as the empty string,
// which is never a valid label.
type CachedDetector struct {
	inner Detector
	cache Cache
}

// NewCachedDetector wraps inner with cache.
func NewCachedDetector(inner Detector, cache Cache) *CachedDetector {
	return &CachedDetector{inner: inner, cache: cache}
}

// Detect implements Detector.
func (d *CachedDetector) Detect(seg string) (string, bool) {
	if v, ok := d.cache.Get(seg); ok {
		return v, v != ""
	}
	label, ok := d.inner.Detect(seg)
	if !ok {
		label = ""
	}
	d.cache.Add(seg, label)
	return label, ok
}

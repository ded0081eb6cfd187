package pipeline

import (
	"fmt"
	"sync"

	"github.com/couchcryptid/stencil-lab/internal/domain"
	"github.com/couchcryptid/stencil-lab/internal/observability"
)

// RefilterCache memoises refiltered images so a run over increasing pass
// counts (1, 50, 100, ...) smooths each image only as often as the largest
// count requires. Entries are keyed by image content, so a source that is
// rewritten between runs never sees results computed from its old pixels.
type RefilterCache struct {
	cache   *lruCache
	metrics *observability.Metrics
}

// NewRefilterCache creates a cache holding up to maxEntries images.
func NewRefilterCache(maxEntries int, metrics *observability.Metrics) *RefilterCache {
	return &RefilterCache{
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

// Refilter returns img smoothed n times. It resumes from the largest cached
// iteration count k <= n for the same image and applies the remaining n-k
// passes. The second return value is the number of passes actually run.
func (c *RefilterCache) Refilter(source string, img domain.Image, n int) (domain.Image, int) {
	if n <= 0 {
		return img, 0
	}

	fp := img.Fingerprint()
	start, from := 0, img
	for k := n; k > 0; k-- {
		if cached, ok := c.cache.get(cacheKey(source, fp, k)); ok {
			start, from = k, cached
			break
		}
	}

	if start == n {
		c.metrics.RefilterCache.WithLabelValues("hit").Inc()
		return from, 0
	}
	c.metrics.RefilterCache.WithLabelValues("miss").Inc()

	out := domain.RefilterImage(from, n-start)
	c.cache.put(cacheKey(source, fp, n), out)
	return out, n - start
}

func cacheKey(source string, fingerprint uint64, n int) string {
	return fmt.Sprintf("%s|%016x|%d", source, fingerprint, n)
}

// lruCache is a simple thread-safe LRU cache of images.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value domain.Image
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (domain.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.Image{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value domain.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}

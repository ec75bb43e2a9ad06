package search

import (
	"container/list"
	"sync"

	"github.com/hyperjump/kiji/internal/ranking"
)

// rankCache is an LRU cache of ranked results keyed by corpus generation and query,
// so paging through one query ranks the corpus once. A nil cache stores nothing.
type rankCache struct {
	capacity int
	entries  map[rankKey]*list.Element
	lru      *list.List
	mu       sync.Mutex
}

type rankKey struct {
	generation uint64
	query      string
}

type rankEntry struct {
	key     rankKey
	results []ranking.ScoredResult
}

func newRankCache(capacity int) *rankCache {
	if capacity <= 0 {
		return nil
	}
	return &rankCache{
		capacity: capacity,
		entries:  make(map[rankKey]*list.Element),
		lru:      list.New(),
	}
}

// get returns the cached ranking for query against corpus generation gen.
func (c *rankCache) get(gen uint64, query string) ([]ranking.ScoredResult, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[rankKey{gen, query}]; ok {
		c.lru.MoveToFront(elem)
		return elem.Value.(*rankEntry).results, true
	}
	return nil, false
}

// put stores a ranking, evicting the least recently used entry when full.
func (c *rankCache) put(gen uint64, query string, results []ranking.ScoredResult) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	key := rankKey{gen, query}
	if elem, ok := c.entries[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*rankEntry).results = results
		return
	}
	c.entries[key] = c.lru.PushFront(&rankEntry{key: key, results: results})
	if c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		c.lru.Remove(oldest)
		delete(c.entries, oldest.Value.(*rankEntry).key)
	}
}

// purge drops every entry; rankings of older generations can never hit again.
func (c *rankCache) purge() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[rankKey]*list.Element)
	c.lru.Init()
	c.mu.Unlock()
}

func (c *rankCache) len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

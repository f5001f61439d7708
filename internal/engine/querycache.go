package engine

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/lawrencelj/mdsearch/internal/index"
	"github.com/lawrencelj/mdsearch/internal/lru"
)

// memoCapacity bounds how many query results stay memoised. Keys embed the
// index generation, so entries from before a mutation are never asked for
// again and age out through normal LRU pressure.
const memoCapacity = 128

// queryCache memoises search results per (generation, query, options) key
// and collapses concurrent identical queries through singleflight, so the
// index computes each distinct search once.
type queryCache struct {
	mu      sync.Mutex
	entries *lru.Cache[string, []index.SearchResult]
	group   singleflight.Group
	hits    atomic.Int64
	misses  atomic.Int64
}

func newQueryCache() *queryCache {
	return &queryCache{
		entries: lru.New[string, []index.SearchResult](memoCapacity),
	}
}

// getOrCompute returns the memoised results for key, computing and storing
// them on first sight. The second return reports whether the results came
// from the memo.
func (c *queryCache) getOrCompute(key string, compute func() []index.SearchResult) ([]index.SearchResult, bool) {
	c.mu.Lock()
	if results, ok := c.entries.Get(key); ok {
		c.mu.Unlock()
		c.hits.Add(1)
		return results, true
	}
	c.mu.Unlock()

	cached := true
	val, _, _ := c.group.Do(key, func() (any, error) {
		c.mu.Lock()
		if results, ok := c.entries.Get(key); ok {
			c.mu.Unlock()
			return results, nil
		}
		c.mu.Unlock()

		cached = false
		results := compute()

		c.mu.Lock()
		c.entries.Put(key, results)
		c.mu.Unlock()
		return results, nil
	})
	if cached {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return val.([]index.SearchResult), cached
}

func (c *queryCache) stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

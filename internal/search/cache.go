package search

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/VioletCranberry/cocosearch/pkg/models"
)

// cacheTTL bounds staleness between the short-lived entries and explicit
// per-index invalidation.
const cacheTTL = 60 * time.Second

// CacheKey is the full parameter tuple identifying one ranked result set.
type CacheKey struct {
	Index       string
	Query       string
	Limit       int
	MinScore    float64
	Languages   []string
	SymbolTypes []string
	SymbolName  string
	Hybrid      string
}

// QueryCache memoises ranked search results. Invalidation is by index
// generation: bumping the generation orphans every cached entry for that
// index without scanning the LRU.
type QueryCache struct {
	lru  *expirable.LRU[string, []models.SearchResult]
	mu   sync.Mutex
	gens map[string]*atomic.Int64
}

// NewQueryCache builds a cache holding up to size ranked lists.
func NewQueryCache(size int) *QueryCache {
	if size <= 0 {
		size = 256
	}
	return &QueryCache{
		lru:  expirable.NewLRU[string, []models.SearchResult](size, nil, cacheTTL),
		gens: make(map[string]*atomic.Int64),
	}
}

func (c *QueryCache) gen(index string) *atomic.Int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.gens[index]
	if !ok {
		g = &atomic.Int64{}
		c.gens[index] = g
	}
	return g
}

func (c *QueryCache) keyString(k CacheKey) string {
	return fmt.Sprintf("%d|%s|%s|%d|%.4f|%s|%s|%s|%s",
		c.gen(k.Index).Load(), k.Index, k.Query, k.Limit, k.MinScore,
		strings.Join(k.Languages, ","), strings.Join(k.SymbolTypes, ","),
		k.SymbolName, k.Hybrid)
}

// Get returns the cached ranked list for the key, if fresh.
func (c *QueryCache) Get(k CacheKey) ([]models.SearchResult, bool) {
	return c.lru.Get(c.keyString(k))
}

// Put stores a ranked list under the key.
func (c *QueryCache) Put(k CacheKey, results []models.SearchResult) {
	c.lru.Add(c.keyString(k), results)
}

// Invalidate drops every cached entry for the index. Called before an
// indexing pass writes its first row.
func (c *QueryCache) Invalidate(index string) {
	c.gen(index).Add(1)
}

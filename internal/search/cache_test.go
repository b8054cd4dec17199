package search

import (
	"testing"

	"github.com/VioletCranberry/cocosearch/pkg/models"
)

func TestQueryCacheRoundTrip(t *testing.T) {
	c := NewQueryCache(16)
	key := CacheKey{Index: "main", Query: "getUserById", Limit: 10, MinScore: 0.3, Hybrid: "auto"}

	if _, ok := c.Get(key); ok {
		t.Fatal("unexpected cache hit on empty cache")
	}

	want := []models.SearchResult{{FilePath: "a.go", Score: 0.9}}
	c.Put(key, want)

	got, ok := c.Get(key)
	if !ok || len(got) != 1 || got[0].FilePath != "a.go" {
		t.Fatalf("cache miss after put: %v %v", got, ok)
	}
}

func TestQueryCacheKeyIncludesFilters(t *testing.T) {
	c := NewQueryCache(16)
	base := CacheKey{Index: "main", Query: "q", Limit: 10, Hybrid: "auto"}
	c.Put(base, []models.SearchResult{{FilePath: "a.go"}})

	withFilter := base
	withFilter.SymbolTypes = []string{"function"}
	if _, ok := c.Get(withFilter); ok {
		t.Error("filtered query must not reuse an unfiltered entry")
	}
}

func TestQueryCacheInvalidatePerIndex(t *testing.T) {
	c := NewQueryCache(16)
	main := CacheKey{Index: "main", Query: "q", Limit: 10}
	other := CacheKey{Index: "other", Query: "q", Limit: 10}
	c.Put(main, []models.SearchResult{{FilePath: "a.go"}})
	c.Put(other, []models.SearchResult{{FilePath: "b.go"}})

	c.Invalidate("main")

	if _, ok := c.Get(main); ok {
		t.Error("invalidated index still served from cache")
	}
	if _, ok := c.Get(other); !ok {
		t.Error("invalidation leaked into an unrelated index")
	}
}

package segment

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is used when NewCache is given a non-positive size.
const DefaultCacheSize = 4096

// Cache memoizes a Segmenter by token. Results are copied on the way in
// and out so callers may modify what they get.
type Cache struct {
	next  Segmenter
	cache *lru.Cache[string, Result]
}

// NewCache wraps next with an LRU of the given size.
func NewCache(next Segmenter, size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, Result](size)
	if err != nil {
		return nil, err
	}
	return &Cache{next: next, cache: c}, nil
}

// Segment returns the cached result for token or computes and stores it.
func (c *Cache) Segment(ctx context.Context, token string) Result {
	if res, ok := c.cache.Get(token); ok {
		return res.clone()
	}
	res := c.next.Segment(ctx, token)
	c.cache.Add(token, res.clone())
	return res
}

// Len returns the number of cached tokens.
func (c *Cache) Len() int {
	return c.cache.Len()
}

// Purge drops every cached result.
func (c *Cache) Purge() {
	c.cache.Purge()
}

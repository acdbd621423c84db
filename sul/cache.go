package sul

import (
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache memoizes membership queries in front of another Querier. A hit
// never reaches the wrapped querier, so the black box is not reset or
// stepped for words it has already answered.
type Cache struct {
	inner  Querier
	lru    *lru.Cache[string, []string]
	hits   atomic.Int64
	misses atomic.Int64
}

func NewCache(inner Querier, size int) (*Cache, error) {
	c, err := lru.New[string, []string](size)
	if err != nil {
		return nil, err
	}
	return &Cache{inner: inner, lru: c}, nil
}

func (c *Cache) Query(word []string) ([]string, error) {
	key := strings.Join(word, "\x1f")
	if outputs, ok := c.lru.Get(key); ok {
		c.hits.Add(1)
		return append([]string(nil), outputs...), nil
	}

	outputs, err := c.inner.Query(word)
	if err != nil {
		return nil, err
	}
	c.misses.Add(1)
	c.lru.Add(key, append([]string(nil), outputs...))
	return outputs, nil
}

// Hits returns the number of queries answered from the cache.
func (c *Cache) Hits() int64 { return c.hits.Load() }

// Misses returns the number of queries forwarded to the black box.
func (c *Cache) Misses() int64 { return c.misses.Load() }

// Package cache provides the bounded LRU cache used to avoid recomputing
// embeddings for identical text.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// EmbeddingCache maps a content fingerprint to a previously computed vector.
// Eviction is least-recently-used; Get promotes the entry. Safe for
// concurrent use.
type EmbeddingCache struct {
	lru *lru.Cache[string, []float32]
}

// NewEmbeddingCache creates a cache holding at most capacity entries.
// Capacity must be positive.
func NewEmbeddingCache(capacity int) (*EmbeddingCache, error) {
	c, err := lru.New[string, []float32](capacity)
	if err != nil {
		return nil, err
	}
	return &EmbeddingCache{lru: c}, nil
}

func (c *EmbeddingCache) Get(key string) ([]float32, bool) {
	return c.lru.Get(key)
}

func (c *EmbeddingCache) Set(key string, value []float32) {
	c.lru.Add(key, value)
}

// Has reports presence without promoting the entry.
func (c *EmbeddingCache) Has(key string) bool {
	return c.lru.Contains(key)
}

func (c *EmbeddingCache) Clear() {
	c.lru.Purge()
}

func (c *EmbeddingCache) Size() int {
	return c.lru.Len()
}

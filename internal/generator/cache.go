package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/maypok86/otter"

	"github.com/mvp-joe/autoheaders/internal/source"
)

// Cache memoizes GenerateAll by path and content hash, so that repeated
// change events for an unchanged file do not reparse it.
type Cache struct {
	gen   *Generator
	cache otter.Cache[string, *Headers]
}

// NewCache wraps gen with a memo cache holding up to capacity units.
func NewCache(gen *Generator, capacity int) (*Cache, error) {
	cache, err := otter.MustBuilder[string, *Headers](capacity).
		CollectStats().
		Cost(func(key string, value *Headers) uint32 {
			return 1
		}).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create generation cache: %w", err)
	}
	return &Cache{gen: gen, cache: cache}, nil
}

// GenerateAll returns the cached headers for unit, generating them on a miss.
// The second result reports a cache hit. Failures are not cached.
func (c *Cache) GenerateAll(ctx context.Context, unit *source.Unit) (*Headers, bool, error) {
	key := cacheKey(unit)
	if h, ok := c.cache.Get(key); ok {
		return h, true, nil
	}

	h, err := c.gen.GenerateAll(ctx, unit)
	if err != nil {
		return nil, false, err
	}
	c.cache.Set(key, h)
	return h, false, nil
}

// Hits returns the number of cache hits so far.
func (c *Cache) Hits() int64 {
	return c.cache.Stats().Hits()
}

// Close releases the cache.
func (c *Cache) Close() {
	c.cache.Close()
}

func cacheKey(unit *source.Unit) string {
	sum := sha256.Sum256(unit.Content)
	return unit.Path + "\x00" + hex.EncodeToString(sum[:])
}

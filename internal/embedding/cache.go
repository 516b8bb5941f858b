package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of cached vectors. Product names are
// short and heavily repeated across searches, so a modest cache absorbs most
// backend traffic.
const DefaultCacheSize = 4096

// Cache wraps a Provider with a process-level LRU keyed by the SHA-256 of
// each input text plus the model version, so a model change invalidates
// naturally. Duplicate texts inside one batch are also served from the cache
// after the first fill.
type Cache struct {
	provider Provider
	entries  *lru.Cache[string, []float32]
}

// NewCache creates a caching wrapper around provider. size <= 0 selects
// DefaultCacheSize.
func NewCache(provider Provider, size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, err
	}
	return &Cache{provider: provider, entries: entries}, nil
}

func (c *Cache) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.provider.ModelVersion() + ":" + hex.EncodeToString(sum[:])
}

// EmbedBatch returns cached vectors where available and fetches the misses in
// a single backend call. Vectors the backend fails to return stay nil and are
// not cached.
func (c *Cache) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	missIdx := make([]int, 0, len(texts))
	missTexts := make([]string, 0, len(texts))
	pending := make(map[string][]int, len(texts))

	for i, text := range texts {
		key := c.cacheKey(text)
		if vec, ok := c.entries.Get(key); ok {
			out[i] = vec
			continue
		}
		// Duplicate texts share one backend slot.
		if positions, dup := pending[key]; dup {
			pending[key] = append(positions, i)
			continue
		}
		pending[key] = []int{i}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	fetched, err := c.provider.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}

	for pos, i := range missIdx {
		if pos >= len(fetched) || fetched[pos] == nil {
			continue
		}
		key := c.cacheKey(texts[i])
		c.entries.Add(key, fetched[pos])
		for _, target := range pending[key] {
			out[target] = fetched[pos]
		}
	}
	return out, nil
}

// ModelVersion delegates to the wrapped provider.
func (c *Cache) ModelVersion() string {
	return c.provider.ModelVersion()
}

// Dimension delegates to the wrapped provider.
func (c *Cache) Dimension() int {
	return c.provider.Dimension()
}

// Len reports the number of cached vectors.
func (c *Cache) Len() int {
	return c.entries.Len()
}

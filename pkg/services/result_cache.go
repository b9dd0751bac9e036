package services

import (
	"sync"

	"github.com/insightforge/insight-engine/pkg/models"
)

// ResultCache is an optional read-through memoization layer for analysis
// results, keyed by a table content fingerprint. It sits outside the engine
// contract: correctness never depends on it, and entries are evicted FIFO
// once capacity is reached.
type ResultCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string][]models.AnalysisResult
	order    []string
}

// NewResultCache creates a cache holding up to capacity result lists.
// A non-positive capacity disables caching entirely.
func NewResultCache(capacity int) *ResultCache {
	return &ResultCache{
		capacity: capacity,
		entries:  make(map[string][]models.AnalysisResult),
	}
}

// Get returns the cached results for the fingerprint, if present.
func (c *ResultCache) Get(fingerprint string) ([]models.AnalysisResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	results, ok := c.entries[fingerprint]
	return results, ok
}

// Put stores results under the fingerprint, evicting the oldest entry when
// the cache is full.
func (c *ResultCache) Put(fingerprint string, results []models.AnalysisResult) {
	if c.capacity <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[fingerprint]; !exists {
		for len(c.order) >= c.capacity {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, fingerprint)
	}
	c.entries[fingerprint] = results
}

// Len returns the number of cached entries.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

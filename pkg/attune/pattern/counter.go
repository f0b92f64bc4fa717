package pattern

import (
	"context"
	"sync"
)

// MemoryCounter is a process-local PairCounter, used when no sqlite pair
// store is configured.
type MemoryCounter struct {
	mu     sync.Mutex
	counts map[string]int64
}

// NewMemoryCounter creates an empty counter.
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{counts: make(map[string]int64)}
}

// Increment implements PairCounter.
func (c *MemoryCounter) Increment(ctx context.Context, a, b string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := pairKey(a, b)
	c.counts[key]++
	return c.counts[key], nil
}

// Count returns the current total for the unordered pair.
func (c *MemoryCounter) Count(a, b string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[pairKey(a, b)]
}

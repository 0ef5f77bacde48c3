// internal/ui/state/cache.go
package state

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/oyevasu/spl-token-studio/internal/domain"
	"github.com/oyevasu/spl-token-studio/internal/poller"
)

// UICache holds the latest poller snapshots and operation states for the
// screens. It is written from the program loop and read from View.
type UICache struct {
	mu         sync.RWMutex
	balances   *poller.BalanceSnapshot
	history    *poller.HistorySnapshot
	operations map[string]domain.PendingOperation
	logger     *zap.Logger

	// Statistics (accessed atomically)
	reads  uint64
	writes uint64
}

// NewUICache creates a new UI state cache
func NewUICache(logger *zap.Logger) *UICache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UICache{
		operations: make(map[string]domain.PendingOperation),
		logger:     logger,
	}
}

// SetBalances stores a balance snapshot unless a newer one is already cached.
func (c *UICache) SetBalances(snap poller.BalanceSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.balances != nil && snap.FetchedAt.Before(c.balances.FetchedAt) {
		return
	}
	c.balances = &snap
	atomic.AddUint64(&c.writes, 1)
}

// Balances returns the cached balance snapshot.
func (c *UICache) Balances() (poller.BalanceSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	atomic.AddUint64(&c.reads, 1)
	if c.balances == nil {
		return poller.BalanceSnapshot{}, false
	}
	return *c.balances, true
}

// SetHistory stores a history snapshot unless a newer one is already cached.
func (c *UICache) SetHistory(snap poller.HistorySnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.history != nil && snap.FetchedAt.Before(c.history.FetchedAt) {
		return
	}
	c.history = &snap
	atomic.AddUint64(&c.writes, 1)
}

// History returns the cached history snapshot.
func (c *UICache) History() (poller.HistorySnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	atomic.AddUint64(&c.reads, 1)
	if c.history == nil {
		return poller.HistorySnapshot{}, false
	}
	return *c.history, true
}

// UpsertOperation records an operation state. Terminal states are never
// replaced by a non-terminal one.
func (c *UICache) UpsertOperation(op domain.PendingOperation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.operations[op.ID]; ok && prev.Status.Terminal() && !op.Status.Terminal() {
		return
	}
	c.operations[op.ID] = op
	atomic.AddUint64(&c.writes, 1)
}

// Operation returns a cached operation by id.
func (c *UICache) Operation(id string) (domain.PendingOperation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	atomic.AddUint64(&c.reads, 1)
	op, ok := c.operations[id]
	return op, ok
}

// Operations returns all cached operations, most recently started first.
func (c *UICache) Operations() []domain.PendingOperation {
	c.mu.RLock()
	defer c.mu.RUnlock()

	atomic.AddUint64(&c.reads, 1)
	out := make([]domain.PendingOperation, 0, len(c.operations))
	for _, op := range c.operations {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out
}

// RemoveOperation drops an operation from the cache
func (c *UICache) RemoveOperation(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.operations, id)
	atomic.AddUint64(&c.writes, 1)
}

// CleanupFinished removes terminal operations last updated before maxAge ago.
func (c *UICache) CleanupFinished(maxAge time.Duration) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	var removed []string
	for id, op := range c.operations {
		if op.Status.Terminal() && op.UpdatedAt.Before(cutoff) {
			delete(c.operations, id)
			removed = append(removed, id)
		}
	}

	if len(removed) > 0 {
		c.logger.Debug("Cleaned up finished operations",
			zap.Int("removed", len(removed)),
			zap.Int("remaining", len(c.operations)))
	}
	return removed
}

// GetStats returns cache statistics
func (c *UICache) GetStats() (operations, reads, writes uint64) {
	c.mu.RLock()
	operations = uint64(len(c.operations))
	c.mu.RUnlock()

	reads = atomic.LoadUint64(&c.reads)
	writes = atomic.LoadUint64(&c.writes)
	return operations, reads, writes
}

package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/bryan-cox/choreledger/internal/clock"
	"github.com/bryan-cox/choreledger/internal/model"
)

// DefaultTTL is how long fetched tasks are considered fresh.
const DefaultTTL = 5 * time.Minute

// IsStale reports whether data fetched at lastFetch must be fetched again.
// A zero lastFetch is always stale.
func IsStale(lastFetch, now time.Time, ttl time.Duration) bool {
	if lastFetch.IsZero() {
		return true
	}
	return now.Sub(lastFetch) >= ttl
}

// Cache is a Gateway that serves GetTasks from memory while the last fetch
// is fresh. Writes pass through and invalidate the cached list.
type Cache struct {
	next  Gateway
	ttl   time.Duration
	clock clock.Clock

	mu        sync.Mutex
	tasks     []model.Task
	lastFetch time.Time
}

// NewCache wraps next. A non-positive ttl selects DefaultTTL.
func NewCache(next Gateway, ttl time.Duration, c clock.Clock) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if c == nil {
		c = clock.System{}
	}
	return &Cache{next: next, ttl: ttl, clock: c}
}

// Fresh reports whether GetTasks would be served from memory.
func (c *Cache) Fresh() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !IsStale(c.lastFetch, c.clock.Now(), c.ttl)
}

// Invalidate forces the next GetTasks to fetch.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.lastFetch = time.Time{}
	c.tasks = nil
	c.mu.Unlock()
}

func (c *Cache) GetTasks(ctx context.Context) ([]model.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if !IsStale(c.lastFetch, now, c.ttl) {
		return slices.Clone(c.tasks), nil
	}
	tasks, err := c.next.GetTasks(ctx)
	if err != nil {
		return nil, err
	}
	c.tasks = tasks
	c.lastFetch = now
	return slices.Clone(tasks), nil
}

func (c *Cache) UpdateTask(ctx context.Context, task model.Task) (model.Task, error) {
	defer c.Invalidate()
	return c.next.UpdateTask(ctx, task)
}

func (c *Cache) AddTask(ctx context.Context, task model.Task) (model.Task, error) {
	defer c.Invalidate()
	return c.next.AddTask(ctx, task)
}

package store

import (
	"context"
	"testing"
	"time"

	"github.com/bryan-cox/choreledger/internal/model"
)

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time { return c.now }

type countingGateway struct {
	*MemoryStore
	fetches int
}

func (g *countingGateway) GetTasks(ctx context.Context) ([]model.Task, error) {
	g.fetches++
	return g.MemoryStore.GetTasks(ctx)
}

func TestIsStale(t *testing.T) {
	base := time.Date(2024, time.August, 4, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		lastFetch time.Time
		now       time.Time
		want      bool
	}{
		{"never fetched", time.Time{}, base, true},
		{"just fetched", base, base, false},
		{"inside ttl", base, base.Add(4 * time.Minute), false},
		{"at ttl", base, base.Add(5 * time.Minute), true},
		{"past ttl", base, base.Add(time.Hour), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsStale(tt.lastFetch, tt.now, 5*time.Minute); got != tt.want {
				t.Errorf("IsStale() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCache(t *testing.T) {
	ctx := context.Background()
	clk := &stepClock{now: time.Date(2024, time.August, 4, 12, 0, 0, 0, time.UTC)}
	backend := &countingGateway{MemoryStore: NewMemoryStore(model.Task{ID: "a", Once: "week"})}
	cache := NewCache(backend, time.Minute, clk)

	if cache.Fresh() {
		t.Error("new cache reports fresh")
	}
	if _, err := cache.GetTasks(ctx); err != nil {
		t.Fatalf("GetTasks() error = %v", err)
	}
	if _, err := cache.GetTasks(ctx); err != nil {
		t.Fatalf("GetTasks() error = %v", err)
	}
	if backend.fetches != 1 {
		t.Errorf("fetches = %d, want 1 while fresh", backend.fetches)
	}

	clk.now = clk.now.Add(2 * time.Minute)
	if cache.Fresh() {
		t.Error("cache still fresh after ttl")
	}
	if _, err := cache.GetTasks(ctx); err != nil {
		t.Fatalf("GetTasks() error = %v", err)
	}
	if backend.fetches != 2 {
		t.Errorf("fetches = %d, want 2 after ttl", backend.fetches)
	}

	if _, err := cache.UpdateTask(ctx, model.Task{ID: "a", Once: "day"}); err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	tasks, err := cache.GetTasks(ctx)
	if err != nil {
		t.Fatalf("GetTasks() error = %v", err)
	}
	if backend.fetches != 3 || tasks[0].Once != "day" {
		t.Errorf("write did not invalidate: fetches = %d, tasks = %+v", backend.fetches, tasks)
	}
}

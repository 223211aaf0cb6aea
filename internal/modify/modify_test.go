package modify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bryan-cox/choreledger/internal/model"
	"github.com/bryan-cox/choreledger/internal/store"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func fixtureTasks() []model.Task {
	return []model.Task{
		{ID: "vacuum", Name: "Vacuum", Minutes: 30, Once: "week", CompletedOn: "2024-07-28"},
		{ID: "plants", Name: "Water plants", Minutes: 5, Once: "3-days", CompletedOn: "2024-08-02"},
		{ID: "filter", Name: "Replace filter", Minutes: 10, Once: "month", CompletedOn: "2024-07-01"},
	}
}

func TestApply(t *testing.T) {
	tasks := fixtureTasks()
	overrides := model.Overrides{
		Frequency: model.FrequencyOverrides{"vacuum": 14, "plants": 5},
		Dates:     model.DateOverrides{"plants": "2024-08-04", "ghost": "2024-08-01"},
	}

	updates, failures := Apply(tasks, overrides)

	if len(updates) != 2 {
		t.Fatalf("got %d updates, want 2: %+v", len(updates), updates)
	}
	if updates[0].ID != "vacuum" || updates[0].Once != "2-weeks" || updates[0].CompletedOn != "2024-07-28" {
		t.Errorf("vacuum update = %+v", updates[0])
	}
	if updates[1].ID != "plants" || updates[1].Once != "5-days" || updates[1].CompletedOn != "2024-08-04" {
		t.Errorf("plants update = %+v", updates[1])
	}

	if len(failures) != 1 || failures[0].Err.Error() != "task ghost not found" {
		t.Errorf("failures = %+v, want one not-found for ghost", failures)
	}
	if !errors.Is(failures[0].Err, store.ErrNotFound) {
		t.Error("not-found failure does not match store.ErrNotFound")
	}

	if tasks[0].Once != "week" || tasks[1].CompletedOn != "2024-08-02" {
		t.Error("Apply() modified its input")
	}
}

func TestApplyRejectsUnencodableFrequency(t *testing.T) {
	for _, days := range []int{0, -1, 1000} {
		updates, failures := Apply(fixtureTasks(), model.Overrides{
			Frequency: model.FrequencyOverrides{"vacuum": days},
		})
		if len(updates) != 0 {
			t.Errorf("frequency %d: got updates %+v, want none", days, updates)
		}
		if len(failures) != 1 || failures[0].ID != "vacuum" || !errors.Is(failures[0].Err, ErrInvalidFrequency) {
			t.Errorf("frequency %d: failures = %+v, want one invalid frequency for vacuum", days, failures)
		}
	}

	updates, failures := Apply(fixtureTasks(), model.Overrides{Frequency: model.FrequencyOverrides{"vacuum": 999}})
	if len(failures) != 0 || len(updates) != 1 || updates[0].Once != "999-days" {
		t.Errorf("frequency 999: updates = %+v, failures = %+v", updates, failures)
	}
}

func TestSave(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid frequency fails the batch and is not stored", func(t *testing.T) {
		st := store.NewMemoryStore(fixtureTasks()...)
		overrides := model.Overrides{
			Frequency: model.FrequencyOverrides{"vacuum": 1000},
			Dates:     model.DateOverrides{"plants": "2024-08-03"},
		}
		err := Save(ctx, st, fixtureTasks(), overrides, discard)
		if !errors.Is(err, ErrInvalidFrequency) {
			t.Fatalf("Save() error = %v, want ErrInvalidFrequency", err)
		}
		vacuum, _ := st.Get("vacuum")
		if vacuum.Once != "week" {
			t.Errorf("vacuum once = %q, want week", vacuum.Once)
		}
	})

	t.Run("all updates succeed", func(t *testing.T) {
		st := store.NewMemoryStore(fixtureTasks()...)
		overrides := model.Overrides{
			Frequency: model.FrequencyOverrides{"vacuum": 7, "filter": 21},
			Dates:     model.DateOverrides{"plants": "2024-08-03"},
		}
		if err := Save(ctx, st, fixtureTasks(), overrides, discard); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		filter, _ := st.Get("filter")
		if filter.Once != "3-weeks" {
			t.Errorf("filter once = %q, want 3-weeks", filter.Once)
		}
		plants, _ := st.Get("plants")
		if plants.CompletedOn != "2024-08-03" {
			t.Errorf("plants completedOn = %q, want 2024-08-03", plants.CompletedOn)
		}
	})

	t.Run("one failed write fails the batch", func(t *testing.T) {
		st := store.NewMemoryStore(fixtureTasks()...)
		rejected := errors.New("disk full")
		st.FailUpdate("plants", rejected)

		overrides := model.Overrides{Frequency: model.FrequencyOverrides{"vacuum": 1, "plants": 2, "filter": 28}}
		err := Save(ctx, st, fixtureTasks(), overrides, discard)

		var batchErr *BatchError
		if !errors.As(err, &batchErr) {
			t.Fatalf("Save() error = %v, want *BatchError", err)
		}
		if len(batchErr.Failures) != 1 || batchErr.Total != 3 {
			t.Errorf("BatchError = %+v, want 1 of 3 failed", batchErr)
		}
		if !errors.Is(err, rejected) {
			t.Error("BatchError does not wrap the gateway error")
		}

		// The other writes still went through.
		vacuum, _ := st.Get("vacuum")
		if vacuum.Once != "day" {
			t.Errorf("vacuum once = %q, want day", vacuum.Once)
		}
	})

	t.Run("missing task fails the batch", func(t *testing.T) {
		st := store.NewMemoryStore(fixtureTasks()...)
		overrides := model.Overrides{Dates: model.DateOverrides{"vacuum": "2024-08-01", "ghost": "2024-08-01"}}
		err := Save(ctx, st, fixtureTasks(), overrides, discard)
		if err == nil || !strings.Contains(err.Error(), "task ghost not found") {
			t.Errorf("Save() error = %v, want task ghost not found", err)
		}
		if !errors.Is(err, store.ErrNotFound) {
			t.Error("error does not match store.ErrNotFound")
		}
	})

	t.Run("nothing to save", func(t *testing.T) {
		if err := Save(ctx, store.NewMemoryStore(), nil, model.Overrides{}, discard); err != nil {
			t.Errorf("Save() error = %v", err)
		}
	})
}

// barrierGateway blocks every write until n writes are in flight at once.
type barrierGateway struct {
	store.Gateway
	n int

	mu      sync.Mutex
	arrived int
	release chan struct{}
}

func (b *barrierGateway) UpdateTask(ctx context.Context, task model.Task) (model.Task, error) {
	b.mu.Lock()
	b.arrived++
	if b.arrived == b.n {
		close(b.release)
	}
	b.mu.Unlock()

	select {
	case <-b.release:
		return task, nil
	case <-time.After(2 * time.Second):
		return model.Task{}, errors.New("writes were not issued concurrently")
	}
}

func TestSaveIssuesWritesConcurrently(t *testing.T) {
	gw := &barrierGateway{n: 3, release: make(chan struct{})}
	overrides := model.Overrides{Frequency: model.FrequencyOverrides{"vacuum": 2, "plants": 3, "filter": 4}}
	if err := Save(context.Background(), gw, fixtureTasks(), overrides, discard); err != nil {
		t.Errorf("Save() error = %v", err)
	}
}

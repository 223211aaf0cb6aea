package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bryan-cox/choreledger/internal/model"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func openBackends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	backends := map[string]Store{}
	for _, cfg := range []Config{
		{Driver: "yaml", Path: filepath.Join(dir, "chores.yml")},
		{Driver: "sqlite", Path: filepath.Join(dir, "chores.db")},
		{Driver: "memory"},
	} {
		st, err := Open(cfg, discard)
		if err != nil {
			t.Fatalf("Open(%s) error = %v", cfg.Driver, err)
		}
		t.Cleanup(func() { st.Close() })
		backends[cfg.Driver] = st
	}
	return backends
}

func TestGatewayContract(t *testing.T) {
	ctx := context.Background()

	for name, st := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			tasks, err := st.GetTasks(ctx)
			if err != nil {
				t.Fatalf("GetTasks() on empty store error = %v", err)
			}
			if len(tasks) != 0 {
				t.Fatalf("GetTasks() on empty store = %+v", tasks)
			}

			dishes, err := st.AddTask(ctx, model.Task{ID: "dishes", Name: "Dishes", Minutes: 15, Once: "day"})
			if err != nil {
				t.Fatalf("AddTask() error = %v", err)
			}
			generated, err := st.AddTask(ctx, model.Task{Name: "Windows", Minutes: 45, Once: "month", Reason: "light"})
			if err != nil {
				t.Fatalf("AddTask() without id error = %v", err)
			}
			if generated.ID == "" {
				t.Error("AddTask() did not assign an id")
			}

			if _, err := st.AddTask(ctx, model.Task{ID: "dishes", Name: "Again"}); !errors.Is(err, ErrDuplicate) {
				t.Errorf("duplicate AddTask() error = %v, want %v", err, ErrDuplicate)
			}
			if _, err := st.AddTask(ctx, model.Task{ID: "neg", Minutes: -1}); err == nil {
				t.Error("AddTask() accepted negative minutes")
			}

			dishes.CompletedOn = "2024-08-04"
			if _, err := st.UpdateTask(ctx, dishes); err != nil {
				t.Fatalf("UpdateTask() error = %v", err)
			}
			if _, err := st.UpdateTask(ctx, model.Task{ID: "plants", Name: "Plants", Once: "3-days"}); err != nil {
				t.Fatalf("UpdateTask() upsert error = %v", err)
			}
			if _, err := st.UpdateTask(ctx, model.Task{Name: "no id"}); err == nil {
				t.Error("UpdateTask() accepted an empty id")
			}

			tasks, err = st.GetTasks(ctx)
			if err != nil {
				t.Fatalf("GetTasks() error = %v", err)
			}
			if len(tasks) != 3 {
				t.Fatalf("GetTasks() returned %d tasks, want 3", len(tasks))
			}
			wantOrder := []string{"dishes", generated.ID, "plants"}
			for i, id := range wantOrder {
				if tasks[i].ID != id {
					t.Errorf("task %d = %s, want %s", i, tasks[i].ID, id)
				}
			}
			if tasks[0].CompletedOn != "2024-08-04" || tasks[0].Minutes != 15 {
				t.Errorf("updated task = %+v", tasks[0])
			}
			if tasks[1].Reason != "light" || tasks[1].Once != "month" {
				t.Errorf("generated task = %+v", tasks[1])
			}
		})
	}
}

func TestFileStoreReadsExistingDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chores.yml")
	content := []byte(`
tasks:
  - id: "t1"
    name: "Vacuum"
    minutes: 30
    completed_on: "2024-07-27"
    is_done: false
    once: "week"
  - id: "t2"
    name: "Fix the shelf"
    minutes: 20
    completed_on: ""
    is_done: false
    once: "yes"
    reason: "it wobbles"
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	st, err := OpenFile(path, discard)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	tasks, err := st.GetTasks(context.Background())
	if err != nil {
		t.Fatalf("GetTasks() error = %v", err)
	}
	if len(tasks) != 2 || tasks[0].Once != "week" || tasks[1].Reason != "it wobbles" {
		t.Errorf("GetTasks() = %+v", tasks)
	}
}

func TestFileStoreRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chores.yml")
	if err := os.WriteFile(path, []byte("tasks: [unterminated"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	st, err := OpenFile(path, discard)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	_, err = st.GetTasks(context.Background())
	if err == nil || !strings.Contains(err.Error(), "could not parse YAML") {
		t.Errorf("GetTasks() error = %v, want parse error", err)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(Config{Driver: "postgres"}, discard); err == nil {
		t.Error("Open() accepted an unknown driver")
	}
	if _, err := Open(Config{Driver: "yaml"}, discard); err == nil {
		t.Error("Open() accepted an empty yaml path")
	}
}

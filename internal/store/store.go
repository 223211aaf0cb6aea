// Package store persists chores.
//
// It supports three backends behind the Gateway interface:
//   - "yaml": a single YAML document, the default
//   - "sqlite": a SQLite database file
//   - "memory": process-local, used by tests and dry runs
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bryan-cox/choreledger/internal/model"
)

var (
	ErrNotFound  = errors.New("task not found")
	ErrDuplicate = errors.New("task already exists")
)

// Gateway stores and retrieves task records.
type Gateway interface {
	// GetTasks returns all stored tasks.
	GetTasks(ctx context.Context) ([]model.Task, error)

	// UpdateTask upserts one task by ID.
	UpdateTask(ctx context.Context, task model.Task) (model.Task, error)

	// AddTask creates a new task. An empty ID is replaced by a generated one.
	AddTask(ctx context.Context, task model.Task) (model.Task, error)
}

// Config configures the task store.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Store is a Gateway that holds resources.
type Store interface {
	Gateway
	Close() error
}

// Open initializes the configured store.
func Open(cfg Config, log *slog.Logger) (Store, error) {
	if log == nil {
		log = slog.Default()
	}
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", "yaml", "yml", "file":
		return OpenFile(cfg.Path, log)
	case "sqlite", "sqlite3":
		return OpenSQLite(cfg, log)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver: %s", driver)
	}
}

// prepareNew validates a task about to be added and assigns an ID if needed.
func prepareNew(task model.Task) (model.Task, error) {
	task.ID = strings.TrimSpace(task.ID)
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Minutes < 0 {
		return model.Task{}, fmt.Errorf("task %s: minutes must be >= 0", task.ID)
	}
	return task, nil
}

func validateUpdate(task model.Task) error {
	if strings.TrimSpace(task.ID) == "" {
		return errors.New("task id is required")
	}
	if task.Minutes < 0 {
		return fmt.Errorf("task %s: minutes must be >= 0", task.ID)
	}
	return nil
}

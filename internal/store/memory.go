package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/bryan-cox/choreledger/internal/model"
)

// MemoryStore is an in-memory Gateway.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks []model.Task

	// Error injection for testing
	GetTasksErr   error
	AddTaskErr    error
	UpdateTaskErr map[string]error // task ID -> error
}

// NewMemoryStore creates a store holding copies of tasks.
func NewMemoryStore(tasks ...model.Task) *MemoryStore {
	return &MemoryStore{
		tasks:         slices.Clone(tasks),
		UpdateTaskErr: make(map[string]error),
	}
}

func (m *MemoryStore) Close() error { return nil }

// FailUpdate makes every UpdateTask call for id return err.
func (m *MemoryStore) FailUpdate(id string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateTaskErr[id] = err
}

func (m *MemoryStore) GetTasks(ctx context.Context) ([]model.Task, error) {
	if m.GetTasksErr != nil {
		return nil, m.GetTasksErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.tasks), nil
}

func (m *MemoryStore) UpdateTask(ctx context.Context, task model.Task) (model.Task, error) {
	if err := validateUpdate(task); err != nil {
		return model.Task{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.UpdateTaskErr[task.ID]; err != nil {
		return model.Task{}, err
	}
	for i := range m.tasks {
		if m.tasks[i].ID == task.ID {
			m.tasks[i] = task
			return task, nil
		}
	}
	m.tasks = append(m.tasks, task)
	return task, nil
}

func (m *MemoryStore) AddTask(ctx context.Context, task model.Task) (model.Task, error) {
	if m.AddTaskErr != nil {
		return model.Task{}, m.AddTaskErr
	}
	task, err := prepareNew(task)
	if err != nil {
		return model.Task{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.tasks {
		if existing.ID == task.ID {
			return model.Task{}, fmt.Errorf("%w: %s", ErrDuplicate, task.ID)
		}
	}
	m.tasks = append(m.tasks, task)
	return task, nil
}

// Get returns the stored task with id.
func (m *MemoryStore) Get(id string) (model.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/bryan-cox/choreledger/internal/model"
)

// document is the on-disk layout of the YAML store.
type document struct {
	Tasks []model.Task `yaml:"tasks"`
}

// FileStore keeps every task in one YAML file.
// Each write rewrites the whole file through a temp file and rename.
type FileStore struct {
	path string
	log  *slog.Logger

	mu sync.Mutex
}

// OpenFile opens the YAML store at path. The file is created on first write.
func OpenFile(path string, log *slog.Logger) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store path is required for yaml driver")
	}
	if log == nil {
		log = slog.Default()
	}
	return &FileStore{path: path, log: log}, nil
}

// Path returns the file backing the store.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Close() error { return nil }

func (s *FileStore) GetTasks(ctx context.Context) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.Tasks, nil
}

func (s *FileStore) UpdateTask(ctx context.Context, task model.Task) (model.Task, error) {
	if err := validateUpdate(task); err != nil {
		return model.Task{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return model.Task{}, err
	}
	replaced := false
	for i := range doc.Tasks {
		if doc.Tasks[i].ID == task.ID {
			doc.Tasks[i] = task
			replaced = true
			break
		}
	}
	if !replaced {
		doc.Tasks = append(doc.Tasks, task)
	}
	if err := s.save(doc); err != nil {
		return model.Task{}, err
	}
	s.log.Debug("task updated", "id", task.ID, "path", s.path)
	return task, nil
}

func (s *FileStore) AddTask(ctx context.Context, task model.Task) (model.Task, error) {
	task, err := prepareNew(task)
	if err != nil {
		return model.Task{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return model.Task{}, err
	}
	for _, existing := range doc.Tasks {
		if existing.ID == task.ID {
			return model.Task{}, fmt.Errorf("%w: %s", ErrDuplicate, task.ID)
		}
	}
	doc.Tasks = append(doc.Tasks, task)
	if err := s.save(doc); err != nil {
		return model.Task{}, err
	}
	s.log.Debug("task added", "id", task.ID, "path", s.path)
	return task, nil
}

func (s *FileStore) load() (document, error) {
	var doc document
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("could not read file '%s': %w", s.path, err)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		safeData, _ := json.Marshal(string(data))
		return doc, fmt.Errorf("could not parse YAML from '%s': %w. Content: %s", s.path, err, safeData)
	}
	return doc, nil
}

func (s *FileStore) save(doc document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write file %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close file %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}

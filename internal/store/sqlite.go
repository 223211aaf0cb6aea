package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/bryan-cox/choreledger/internal/model"
)

//go:embed migrations.sql
var migrationsFS embed.FS

// SQLiteStore keeps tasks in a SQLite database. Tasks are returned in the
// order they were first stored.
type SQLiteStore struct {
	db  *sql.DB
	log *slog.Logger
}

// OpenSQLite opens (and migrates) the database at cfg.Path.
func OpenSQLite(cfg Config, log *slog.Logger) (*SQLiteStore, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if log == nil {
		log = slog.Default()
	}
	path := cfg.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	st := &SQLiteStore{db: db, log: log}
	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return st, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) GetTasks(ctx context.Context) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, minutes, completed_on, is_done, once, reason FROM tasks ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		var (
			t      model.Task
			reason sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.Name, &t.Minutes, &t.CompletedOn, &t.IsDone, &t.Once, &reason); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Reason = reason.String
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *SQLiteStore) UpdateTask(ctx context.Context, task model.Task) (model.Task, error) {
	if err := validateUpdate(task); err != nil {
		return model.Task{}, err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks(id, position, name, minutes, completed_on, is_done, once, reason)
		 VALUES(?, (SELECT COALESCE(MAX(position), 0) + 1 FROM tasks), ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, minutes=excluded.minutes, completed_on=excluded.completed_on,
		   is_done=excluded.is_done, once=excluded.once, reason=excluded.reason`,
		task.ID, task.Name, task.Minutes, task.CompletedOn, task.IsDone, task.Once, nullStr(task.Reason),
	)
	if err != nil {
		return model.Task{}, fmt.Errorf("update task %s: %w", task.ID, err)
	}
	s.log.Debug("task updated", "id", task.ID)
	return task, nil
}

func (s *SQLiteStore) AddTask(ctx context.Context, task model.Task) (model.Task, error) {
	task, err := prepareNew(task)
	if err != nil {
		return model.Task{}, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks(id, position, name, minutes, completed_on, is_done, once, reason)
		 VALUES(?, (SELECT COALESCE(MAX(position), 0) + 1 FROM tasks), ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		task.ID, task.Name, task.Minutes, task.CompletedOn, task.IsDone, task.Once, nullStr(task.Reason),
	)
	if err != nil {
		return model.Task{}, fmt.Errorf("add task %s: %w", task.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.Task{}, fmt.Errorf("%w: %s", ErrDuplicate, task.ID)
	}
	s.log.Debug("task added", "id", task.ID)
	return task, nil
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}

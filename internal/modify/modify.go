// Package modify saves the frequency and date overrides a user has made to
// a task set.
package modify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/bryan-cox/choreledger/internal/model"
	"github.com/bryan-cox/choreledger/internal/recurrence"
	"github.com/bryan-cox/choreledger/internal/store"
)

// ErrInvalidFrequency is reported for a frequency override that cannot be
// stored as a recurrence descriptor.
var ErrInvalidFrequency = errors.New("invalid frequency")

// NotFoundError reports an override for a task that is not in the task list.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("task %s not found", e.ID) }

// Is lets errors.Is match store.ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == store.ErrNotFound }

// Failure is one override that could not be saved.
type Failure struct {
	ID  string
	Err error
}

// BatchError aggregates every failure of a batch.
type BatchError struct {
	Failures []Failure
	Total    int // number of tasks the batch touched
}

func (e *BatchError) Error() string {
	msgs := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		msgs[i] = f.Err.Error()
	}
	return fmt.Sprintf("%d of %d modifications failed: %s", len(e.Failures), e.Total, strings.Join(msgs, "; "))
}

func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

// Apply returns the updated copies of the tasks the overrides refer to, in
// task-list order, plus a failure for each override whose task is missing
// and for each frequency that cannot be encoded (outside 1..recurrence.MaxDays).
// A task with both a frequency and a date override yields a single update.
func Apply(tasks []model.Task, overrides model.Overrides) ([]model.Task, []Failure) {
	byID := make(map[string]int, len(tasks))
	for i, t := range tasks {
		if _, dup := byID[t.ID]; !dup {
			byID[t.ID] = i
		}
	}

	updated := map[int]model.Task{}
	var failures []Failure
	missing := map[string]bool{}

	resolve := func(id string) (model.Task, int, bool) {
		i, ok := byID[id]
		if !ok {
			if !missing[id] {
				missing[id] = true
				failures = append(failures, Failure{ID: id, Err: &NotFoundError{ID: id}})
			}
			return model.Task{}, 0, false
		}
		if t, ok := updated[i]; ok {
			return t, i, true
		}
		return tasks[i], i, true
	}

	for _, id := range sortedKeys(overrides.Frequency) {
		t, i, ok := resolve(id)
		if !ok {
			continue
		}
		days := overrides.Frequency[id]
		if !recurrence.Encodable(days) {
			failures = append(failures, Failure{ID: id, Err: fmt.Errorf("task %s: %w %d, must be 1-%d days", id, ErrInvalidFrequency, days, recurrence.MaxDays)})
			continue
		}
		t.Once = recurrence.Encode(days)
		updated[i] = t
	}
	for _, id := range sortedKeys(overrides.Dates) {
		t, i, ok := resolve(id)
		if !ok {
			continue
		}
		t.CompletedOn = overrides.Dates[id]
		updated[i] = t
	}

	indexes := make([]int, 0, len(updated))
	for i := range updated {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	out := make([]model.Task, len(indexes))
	for n, i := range indexes {
		out[n] = updated[i]
	}
	return out, failures
}

// Save writes every override through the gateway concurrently and waits for
// all writes to settle. It returns nil only if every override resolved to a
// task and every write succeeded; otherwise it returns a *BatchError.
//
// Writes are not cancelled once issued. ctx is handed to the gateway as is.
func Save(ctx context.Context, gw store.Gateway, tasks []model.Task, overrides model.Overrides, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}

	updates, failures := Apply(tasks, overrides)
	total := len(updates) + len(failures)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, t := range updates {
		wg.Add(1)
		go func(t model.Task) {
			defer wg.Done()
			if _, err := gw.UpdateTask(ctx, t); err != nil {
				mu.Lock()
				failures = append(failures, Failure{ID: t.ID, Err: fmt.Errorf("update task %s: %w", t.ID, err)})
				mu.Unlock()
			}
		}(t)
	}
	wg.Wait()

	if len(failures) == 0 {
		log.Info("modifications saved", "tasks", total)
		return nil
	}

	sort.SliceStable(failures, func(i, j int) bool { return failures[i].ID < failures[j].ID })
	log.Warn("modifications failed", "failed", len(failures), "tasks", total)
	return &BatchError{Failures: failures, Total: total}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

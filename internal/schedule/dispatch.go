package schedule

import (
	"errors"
	"strings"
	"time"

	"github.com/bryan-cox/choreledger/internal/model"
	"github.com/bryan-cox/choreledger/internal/recurrence"
)

// Dispatch rejection reasons.
var (
	ErrDailyTask              = errors.New("daily task, nothing to dispatch")
	ErrOneTimeTask            = errors.New("one-time task, cannot dispatch")
	ErrAlreadyDispatched      = errors.New("task already dispatched")
	ErrUnrecognizedRecurrence = errors.New("unrecognized recurrence, cannot dispatch")
)

// Dispatch rewrites the completion date of the task at position index of a
// batch so that tasks sharing an interval become due on different days.
//
// The new completion date is one full interval plus (index mod interval) days
// before now. Dispatch fails with ErrAlreadyDispatched when that date is the
// one the task already carries.
func Dispatch(task model.Task, index int, now time.Time) (model.Task, error) {
	switch strings.TrimSpace(task.Once) {
	case "day":
		return model.Task{}, ErrDailyTask
	case recurrence.Once:
		return model.Task{}, ErrOneTimeTask
	}

	delay := recurrence.Days(task.Once)
	if delay == 0 {
		return model.Task{}, ErrUnrecognizedRecurrence
	}

	position := index % delay
	if position < 0 {
		position += delay
	}
	completedOn := FormatDate(civil(now).AddDate(0, 0, -(delay + position)))

	if completedOn == task.CompletedOn {
		return model.Task{}, ErrAlreadyDispatched
	}
	if current, err := ParseDate(task.CompletedOn); err == nil && FormatDate(current) == completedOn {
		return model.Task{}, ErrAlreadyDispatched
	}

	dispatched := task
	dispatched.CompletedOn = completedOn
	return dispatched, nil
}

// DispatchBatch dispatches every task at its index in the slice and returns
// one result per task.
func DispatchBatch(tasks []model.Task, now time.Time) []model.DispatchResult {
	results := make([]model.DispatchResult, len(tasks))
	for i, t := range tasks {
		dispatched, err := Dispatch(t, i, now)
		if err != nil {
			results[i] = model.DispatchResult{Index: i, Task: t, Err: err}
			continue
		}
		results[i] = model.DispatchResult{Index: i, Task: dispatched}
	}
	return results
}

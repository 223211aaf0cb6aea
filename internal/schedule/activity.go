package schedule

import (
	"time"

	"github.com/bryan-cox/choreledger/internal/model"
	"github.com/bryan-cox/choreledger/internal/recurrence"
)

// IsActive reports whether a task is due at now.
//
// Retired tasks are never due. Tasks that were never completed, and one-time
// tasks that are not retired, are always due. Otherwise a task is due once at
// least one full interval has elapsed since its completion, or, when
// includeCompletedToday is set, on the day it was completed.
//
// Descriptors that do not parse have a 0 interval and are therefore always due.
func IsActive(task model.Task, now time.Time, includeCompletedToday bool) bool {
	if task.IsDone {
		return false
	}
	if task.CompletedOn == "" || task.IsOneTime() {
		return true
	}

	daysSince, ok := DaysSince(task, now)
	if !ok {
		// An unreadable completion date is treated like no completion at all.
		return true
	}
	interval := recurrence.Days(task.Once)
	return (includeCompletedToday && daysSince == 0) || daysSince >= interval
}

// ActiveTasks returns the tasks that are due at now, in input order.
func ActiveTasks(tasks []model.Task, now time.Time, includeCompletedToday bool) []model.Task {
	var active []model.Task
	for _, t := range tasks {
		if IsActive(t, now, includeCompletedToday) {
			active = append(active, t)
		}
	}
	return active
}

// NextDue returns the date a recurring task becomes due again.
// ok is false for retired, one-time, never-completed and unrecognized tasks.
func NextDue(task model.Task) (time.Time, bool) {
	if task.IsDone || task.IsOneTime() {
		return time.Time{}, false
	}
	interval := recurrence.Days(task.Once)
	if interval == 0 || task.CompletedOn == "" {
		return time.Time{}, false
	}
	done, err := ParseDate(task.CompletedOn)
	if err != nil {
		return time.Time{}, false
	}
	return done.AddDate(0, 0, interval), true
}

// Complete returns a copy of task marked as completed on now's date.
// One-time tasks are retired as well.
func Complete(task model.Task, now time.Time) model.Task {
	done := task
	done.CompletedOn = FormatDate(now)
	if task.IsOneTime() {
		done.IsDone = true
	}
	return done
}

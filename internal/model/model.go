// Package model defines the core data structures for ChoreLedger.
package model

import "strings"

// OnceLiteral is the recurrence descriptor of a one-time task.
const OnceLiteral = "yes"

// DateLayout is the calendar-date format used for completion dates.
const DateLayout = "2006-01-02"

// Task represents a single chore.
//
// Tasks are values: engine functions never modify a Task they are given,
// they return a new one.
type Task struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Minutes     float64 `yaml:"minutes" json:"minutes"`
	CompletedOn string  `yaml:"completed_on" json:"completedOn"` // empty means never completed
	IsDone      bool    `yaml:"is_done" json:"isDone"`           // retired one-time task
	Once        string  `yaml:"once" json:"once"`                // recurrence descriptor
	Reason      string  `yaml:"reason,omitempty" json:"reason,omitempty"`
}

// IsOneTime reports whether the task's descriptor is the one-time literal.
// Surrounding whitespace is ignored, as the recurrence parser does.
func (t Task) IsOneTime() bool {
	return strings.TrimSpace(t.Once) == OnceLiteral
}

// FrequencyOverrides maps a task ID to an overriding interval in days.
type FrequencyOverrides map[string]int

// DateOverrides maps a task ID to an overriding completion date.
type DateOverrides map[string]string

// Overrides holds the unsaved edits a user has made to a task set.
type Overrides struct {
	Frequency FrequencyOverrides
	Dates     DateOverrides
}

// IsEmpty reports whether there is nothing to save.
func (o Overrides) IsEmpty() bool {
	return len(o.Frequency) == 0 && len(o.Dates) == 0
}

// Summary is the workload summary of a task set.
type Summary struct {
	TaskCount        int     `json:"taskCount"`
	AvgMinutesPerDay float64 `json:"avgMinutesPerDay"`
	AvgTasksPerDay   float64 `json:"avgTasksPerDay"`
	AvgFrequencyDays float64 `json:"avgFrequencyDays"`
}

// DispatchResult is the outcome of dispatching one task of a batch.
// Err is nil on success, in which case Task carries the new completion date.
type DispatchResult struct {
	Index int
	Task  Task
	Err   error
}

// OK reports whether the dispatch succeeded.
func (r DispatchResult) OK() bool { return r.Err == nil }

// UpcomingTask is a task that is not due yet, with the date it becomes due.
type UpcomingTask struct {
	Task
	DueOn string
}

// CategorizedTasks holds tasks organized by their report section.
type CategorizedTasks struct {
	Due      []Task         // Active right now
	Upcoming []UpcomingTask // Recurring tasks waiting for their next due date
	Retired  []Task         // One-time tasks that are finished
}

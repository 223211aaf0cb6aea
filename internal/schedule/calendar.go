// Package schedule decides which chores are due, staggers due dates across a
// batch, projects chores onto a two-week planning grid and summarizes the
// resulting workload.
//
// Every function here is pure: tasks and overrides are read-only inputs and
// "now" is always passed in explicitly.
package schedule

import (
	"fmt"
	"time"

	"github.com/bryan-cox/choreledger/internal/model"
)

// civil truncates t to its calendar date, expressed as UTC midnight so that
// day arithmetic is unaffected by DST transitions.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a completion date. Both plain dates (2006-01-02) and
// RFC 3339 timestamps are accepted; only the calendar date is kept.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(model.DateLayout, s); err == nil {
		return civil(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD: %w", s, err)
	}
	return civil(t), nil
}

// FormatDate renders the calendar date of t.
func FormatDate(t time.Time) string {
	return civil(t).Format(model.DateLayout)
}

// DaysBetween returns the number of calendar days from then to now.
// It is negative when then is after now.
func DaysBetween(now, then time.Time) int {
	return int(civil(now).Sub(civil(then)).Hours() / 24)
}

// DaysSince returns the calendar days elapsed since the task was completed.
// ok is false when the task was never completed or its date does not parse.
func DaysSince(task model.Task, now time.Time) (days int, ok bool) {
	return daysSinceDate(task.CompletedOn, now)
}

func daysSinceDate(completedOn string, now time.Time) (int, bool) {
	if completedOn == "" {
		return 0, false
	}
	done, err := ParseDate(completedOn)
	if err != nil {
		return 0, false
	}
	return DaysBetween(now, done), true
}

// Weekday returns the ISO weekday index of t with Monday = 0.
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

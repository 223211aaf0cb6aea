package schedule

import (
	"time"

	"github.com/bryan-cox/choreledger/internal/model"
	"github.com/bryan-cox/choreledger/internal/recurrence"
)

// PlanDays is the length of the planning grid: this week and next week,
// Monday first.
const PlanDays = 14

// Plan maps each grid day (0 = this Monday, 13 = next Sunday) to the tasks
// that fall on it.
type Plan [PlanDays][]model.Task

// EffectiveRecurrence returns the interval used for a task: its frequency
// override when one exists, otherwise its parsed descriptor.
func EffectiveRecurrence(task model.Task, overrides model.FrequencyOverrides) int {
	if days, ok := overrides[task.ID]; ok {
		return days
	}
	return recurrence.Days(task.Once)
}

// Project places every task on the planning grid around now.
func Project(tasks []model.Task, overrides model.Overrides, now time.Time) Plan {
	var plan Plan
	for _, t := range tasks {
		for _, day := range Slots(t, overrides, now) {
			plan[day] = append(plan[day], t)
		}
	}
	return plan
}

// Slots returns the grid days a single task occupies.
//
// One-time, retired and zero-interval tasks occupy no slot, daily tasks occupy
// all of them. Any other task appears on every day that lies an exact
// multiple of its interval after its last completion. A task that was never
// completed is anchored as due today.
func Slots(task model.Task, overrides model.Overrides, now time.Time) []int {
	if task.IsDone || task.IsOneTime() {
		return nil
	}

	interval := EffectiveRecurrence(task, overrides.Frequency)
	switch {
	case interval <= 0:
		return nil
	case interval == 1:
		all := make([]int, PlanDays)
		for d := range all {
			all[d] = d
		}
		return all
	}

	completedOn := task.CompletedOn
	if date, ok := overrides.Dates[task.ID]; ok {
		completedOn = date
	}
	daysSince, ok := daysSinceDate(completedOn, now)
	if !ok {
		daysSince = interval
	}

	today := Weekday(now)
	var slots []int
	for d := 0; d < PlanDays; d++ {
		total := daysSince + d - today
		if total >= interval && total%interval == 0 {
			slots = append(slots, d)
		}
	}
	return slots
}

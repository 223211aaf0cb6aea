package schedule

import (
	"math"

	"github.com/bryan-cox/choreledger/internal/model"
)

const daysPerWeek = 7

// Summarize computes the average daily workload of a task set.
//
// Only tasks with a positive effective interval count; one-time, retired and
// zero-interval tasks are left out so nothing divides by zero. Retired
// recurring tasks are excluded on purpose: they no longer add to the workload.
func Summarize(tasks []model.Task, overrides model.FrequencyOverrides) model.Summary {
	var (
		count         int
		weeklyMinutes float64
		weeklyTasks   float64
		intervalSum   float64
	)

	for _, t := range tasks {
		if t.IsDone || t.IsOneTime() {
			continue
		}
		interval := EffectiveRecurrence(t, overrides)
		if interval <= 0 {
			continue
		}
		occurrences := float64(daysPerWeek) / float64(interval)

		count++
		weeklyMinutes += t.Minutes * occurrences
		weeklyTasks += occurrences
		intervalSum += float64(interval)
	}

	summary := model.Summary{
		TaskCount:        count,
		AvgMinutesPerDay: math.Round(weeklyMinutes / daysPerWeek),
		AvgTasksPerDay:   round10(weeklyTasks / daysPerWeek),
	}
	if count > 0 {
		summary.AvgFrequencyDays = round10(intervalSum / float64(count))
	}
	return summary
}

func round10(v float64) float64 {
	return math.Round(v*10) / 10
}

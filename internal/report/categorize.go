// Package report provides report generation and task categorization.
package report

import (
	"sort"
	"time"

	"github.com/bryan-cox/choreledger/internal/model"
	"github.com/bryan-cox/choreledger/internal/schedule"
)

// CategorizeTasks groups tasks into due, upcoming and retired.
// includeCompletedToday is passed through to the activity check.
func CategorizeTasks(tasks []model.Task, now time.Time, includeCompletedToday bool) model.CategorizedTasks {
	var cats model.CategorizedTasks

	for _, task := range tasks {
		switch {
		case task.IsDone:
			cats.Retired = append(cats.Retired, task)
		case schedule.IsActive(task, now, includeCompletedToday):
			cats.Due = append(cats.Due, task)
		default:
			upcoming := model.UpcomingTask{Task: task}
			if next, ok := schedule.NextDue(task); ok {
				upcoming.DueOn = schedule.FormatDate(next)
			}
			cats.Upcoming = append(cats.Upcoming, upcoming)
		}
	}

	// Soonest first; ISO dates sort lexically.
	sort.SliceStable(cats.Upcoming, func(i, j int) bool {
		return cats.Upcoming[i].DueOn < cats.Upcoming[j].DueOn
	})

	return cats
}

package schedule

import (
	"reflect"
	"testing"
	"time"

	"github.com/bryan-cox/choreledger/internal/model"
)

func TestSlots(t *testing.T) {
	allDays := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13}

	tests := []struct {
		name      string
		task      model.Task
		overrides model.Overrides
		now       time.Time
		want      []int
	}{
		{
			name: "daily task fills the grid",
			task: model.Task{ID: "d", Once: "day", CompletedOn: daysAgo(0)},
			now:  sunday,
			want: allDays,
		},
		{
			name: "weekly task seven days after completion on a sunday",
			task: model.Task{ID: "w", Once: "week", CompletedOn: daysAgo(7)},
			now:  sunday,
			want: []int{6, 13},
		},
		{
			name: "every three days completed today",
			task: model.Task{ID: "t", Once: "3-days", CompletedOn: daysAgo(0)},
			now:  sunday,
			want: []int{9, 12},
		},
		{
			name: "weekly task seen from a wednesday",
			task: model.Task{ID: "w", Once: "week", CompletedOn: "2024-07-29"},
			now:  time.Date(2024, time.July, 31, 9, 0, 0, 0, time.UTC),
			want: []int{7},
		},
		{
			name: "never completed task is due today",
			task: model.Task{ID: "n", Once: "week"},
			now:  sunday,
			want: []int{6, 13},
		},
		{
			name: "one-time task is not planned",
			task: model.Task{ID: "o", Once: "yes"},
			now:  sunday,
			want: nil,
		},
		{
			name: "retired task is not planned",
			task: model.Task{ID: "r", Once: "week", CompletedOn: daysAgo(7), IsDone: true},
			now:  sunday,
			want: nil,
		},
		{
			name: "unrecognized descriptor is not planned",
			task: model.Task{ID: "u", Once: "3-paper", CompletedOn: daysAgo(7)},
			now:  sunday,
			want: nil,
		},
		{
			name:      "frequency override to daily",
			task:      model.Task{ID: "f", Once: "week", CompletedOn: daysAgo(2)},
			overrides: model.Overrides{Frequency: model.FrequencyOverrides{"f": 1}},
			now:       sunday,
			want:      allDays,
		},
		{
			name:      "frequency override to zero removes the task",
			task:      model.Task{ID: "f", Once: "week", CompletedOn: daysAgo(7)},
			overrides: model.Overrides{Frequency: model.FrequencyOverrides{"f": 0}},
			now:       sunday,
			want:      nil,
		},
		{
			name:      "frequency override does not apply to one-time tasks",
			task:      model.Task{ID: "o", Once: "yes"},
			overrides: model.Overrides{Frequency: model.FrequencyOverrides{"o": 1}},
			now:       sunday,
			want:      nil,
		},
		{
			name:      "date override moves the anchor",
			task:      model.Task{ID: "w", Once: "week", CompletedOn: daysAgo(7)},
			overrides: model.Overrides{Dates: model.DateOverrides{"w": daysAgo(2)}},
			now:       sunday,
			want:      []int{11},
		},
		{
			name:      "overrides for other tasks are ignored",
			task:      model.Task{ID: "w", Once: "week", CompletedOn: daysAgo(7)},
			overrides: model.Overrides{Frequency: model.FrequencyOverrides{"other": 1}},
			now:       sunday,
			want:      []int{6, 13},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slots(tt.task, tt.overrides, tt.now)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Slots() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProject(t *testing.T) {
	tasks := []model.Task{
		{ID: "daily", Once: "day"},
		{ID: "weekly", Once: "week", CompletedOn: daysAgo(7)},
		{ID: "once", Once: "yes"},
	}

	plan := Project(tasks, model.Overrides{}, sunday)
	for day, slot := range plan {
		wantLen := 1
		if day == 6 || day == 13 {
			wantLen = 2
		}
		if len(slot) != wantLen {
			t.Errorf("day %d has %d tasks, want %d", day, len(slot), wantLen)
		}
		if slot[0].ID != "daily" {
			t.Errorf("day %d first task = %s, want daily", day, slot[0].ID)
		}
	}

	again := Project(tasks, model.Overrides{}, sunday)
	if !reflect.DeepEqual(plan, again) {
		t.Error("Project() is not deterministic")
	}
}

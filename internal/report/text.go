package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/bryan-cox/choreledger/internal/model"
	"github.com/bryan-cox/choreledger/internal/recurrence"
	"github.com/bryan-cox/choreledger/internal/schedule"
)

// Section headers for text output.
const (
	TextHeaderDue      = "\n🧹 Due now"
	TextHeaderUpcoming = "\n📅 Coming up"
	TextHeaderRetired  = "\n✅ Done for good"
	TextHeaderSummary  = "\n📊 Workload"
	TextHeaderDispatch = "\n🔀 Dispatch"
)

var weekdayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Grid styles.
const cellWidth = 16

var (
	styleCell   = lipgloss.NewStyle().Width(cellWidth).PaddingRight(1)
	styleHeader = styleCell.Bold(true)
	styleToday  = styleHeader.Underline(true)
	styleWeek   = lipgloss.NewStyle().Bold(true)
)

// Cadence renders a recurrence descriptor for humans.
func Cadence(once string) string {
	p := recurrence.Parse(once)
	switch p.Kind {
	case recurrence.OneTime:
		return "one-time"
	case recurrence.Interval:
		if p.Days == 1 {
			return "every day"
		}
		if p.Days%7 == 0 && p.Days < 30 {
			if p.Days == 7 {
				return "every week"
			}
			return fmt.Sprintf("every %d weeks", p.Days/7)
		}
		return fmt.Sprintf("every %d days", p.Days)
	default:
		return fmt.Sprintf("always (%q not understood)", once)
	}
}

func minutes(m float64) string {
	return strconv.FormatFloat(m, 'f', -1, 64) + " min"
}

// PrintDueTasks prints the due, upcoming and retired sections to the writer.
// Upcoming and retired tasks are only printed when all is set.
func PrintDueTasks(out io.Writer, cats model.CategorizedTasks, all bool) {
	fmt.Fprintln(out, TextHeaderDue)
	if len(cats.Due) == 0 {
		fmt.Fprintln(out, "    • Nothing due. Enjoy your day!")
	}
	var total float64
	for _, task := range cats.Due {
		total += task.Minutes
		last := "never done"
		if task.CompletedOn != "" {
			last = "last done " + task.CompletedOn
		}
		fmt.Fprintf(out, "    • %s (%s, %s, %s) [%s]\n", task.Name, minutes(task.Minutes), Cadence(task.Once), last, task.ID)
		if task.Reason != "" {
			fmt.Fprintf(out, "        ◦ Why: %s\n", task.Reason)
		}
	}
	if len(cats.Due) > 0 {
		fmt.Fprintf(out, "    Total: %d task(s), %s\n", len(cats.Due), minutes(total))
	}

	if !all {
		return
	}

	if len(cats.Upcoming) > 0 {
		fmt.Fprintln(out, TextHeaderUpcoming)
		for _, task := range cats.Upcoming {
			fmt.Fprintf(out, "    • %s (%s) [%s]\n", task.Name, Cadence(task.Once), task.ID)
			if task.DueOn != "" {
				fmt.Fprintf(out, "        ◦ Due: %s\n", task.DueOn)
			}
		}
	}

	if len(cats.Retired) > 0 {
		fmt.Fprintln(out, TextHeaderRetired)
		for _, task := range cats.Retired {
			fmt.Fprintf(out, "    • %s [%s]\n", task.Name, task.ID)
		}
	}
}

// PrintPlan prints the two-week planning grid around now.
func PrintPlan(out io.Writer, plan schedule.Plan, now time.Time) {
	today := schedule.Weekday(now)
	monday := now.AddDate(0, 0, -today)

	for week := 0; week < 2; week++ {
		start := monday.AddDate(0, 0, week*7)
		label := "This week"
		if week == 1 {
			label = "Next week"
		}
		fmt.Fprintln(out, styleWeek.Render(fmt.Sprintf("\n%s (%s)", label, schedule.FormatDate(start))))

		columns := make([]string, 7)
		for wd := 0; wd < 7; wd++ {
			day := week*7 + wd
			date := start.AddDate(0, 0, wd)

			header := styleHeader
			if day == today {
				header = styleToday
			}
			lines := []string{header.Render(fmt.Sprintf("%s %02d", weekdayNames[wd], date.Day()))}
			for _, task := range plan[day] {
				lines = append(lines, styleCell.Render("• "+task.Name))
			}
			columns[wd] = lipgloss.JoinVertical(lipgloss.Left, lines...)
		}
		fmt.Fprintln(out, lipgloss.JoinHorizontal(lipgloss.Top, columns...))
	}
}

// PrintSummary prints the workload summary.
func PrintSummary(out io.Writer, s model.Summary) {
	fmt.Fprintln(out, TextHeaderSummary)
	fmt.Fprintf(out, "    • Recurring tasks: %d\n", s.TaskCount)
	fmt.Fprintf(out, "    • Minutes per day: %s\n", strconv.FormatFloat(s.AvgMinutesPerDay, 'f', -1, 64))
	fmt.Fprintf(out, "    • Tasks per day: %.1f\n", s.AvgTasksPerDay)
	fmt.Fprintf(out, "    • Average frequency: every %.1f days\n", s.AvgFrequencyDays)
}

// PrintDispatchResults prints one line per dispatched task.
func PrintDispatchResults(out io.Writer, results []model.DispatchResult) {
	fmt.Fprintln(out, TextHeaderDispatch)
	var ok int
	for _, r := range results {
		if r.OK() {
			ok++
			fmt.Fprintf(out, "    • %s: last done set to %s\n", r.Task.Name, r.Task.CompletedOn)
			continue
		}
		fmt.Fprintf(out, "    • %s: skipped (%s)\n", r.Task.Name, r.Err)
	}
	fmt.Fprintf(out, "    %d of %d task(s) dispatched\n", ok, len(results))
}

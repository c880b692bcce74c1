package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/twiced-technology-gmbh/goalplan/internal/goal"
	"github.com/twiced-technology-gmbh/goalplan/internal/plan"
	"github.com/twiced-technology-gmbh/goalplan/internal/schedule"
	"github.com/twiced-technology-gmbh/goalplan/internal/task"
)

// TaskCompact renders a list of tasks in one-line-per-record compact format.
func TaskCompact(w io.Writer, tasks []task.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}
	for _, t := range tasks {
		fmt.Fprintln(w, formatTaskLine(t))
	}
}

// GoalCompact renders goals one per line.
func GoalCompact(w io.Writer, goals []*goal.Goal) {
	if len(goals) == 0 {
		fmt.Fprintln(os.Stderr, "No goals found.")
		return
	}
	for _, g := range goals {
		fmt.Fprintf(w, "#%d %s (%d tasks, %s)\n", g.ID, g.Name, len(g.Tasks), FormatHours(g.TotalHours()))
	}
}

// GoalDetailCompact renders a goal header followed by its tasks.
func GoalDetailCompact(w io.Writer, g *goal.Goal) {
	line := "#" + strconv.Itoa(g.ID) + " " + g.Name
	if g.PeriodStart != nil {
		line += " from:" + g.PeriodStart.String()
	}
	if g.PeriodEnd != nil {
		line += " until:" + g.PeriodEnd.String()
	}
	fmt.Fprintln(w, line)
	for _, t := range g.Tasks {
		fmt.Fprintln(w, "  "+formatTaskLine(t))
	}
}

// EventCompact renders one line per scheduled block.
func EventCompact(w io.Writer, events []schedule.Event) {
	if len(events) == 0 {
		fmt.Fprintln(os.Stderr, "Nothing to schedule.")
		return
	}
	for _, e := range events {
		fmt.Fprintf(w, "%s %s-%s %s\n",
			e.Start.Format("2006-01-02"), e.Start.Format("15:04"), e.End.Format("15:04"), EventTitle(e))
	}
}

// OverviewCompact renders a plan summary in compact format.
func OverviewCompact(w io.Writer, ov plan.Overview) {
	line := fmt.Sprintf("#%d %s (%d tasks, %s)", ov.GoalID, ov.GoalName, ov.TotalTasks, FormatHours(ov.TotalHours))
	if ov.FirstDay != nil && ov.LastDay != nil {
		line += fmt.Sprintf(" %d days %s..%s", ov.Days, ov.FirstDay, ov.LastDay)
	}
	fmt.Fprintln(w, line)

	parts := make([]string, 0, len(ov.Priorities))
	for _, pc := range ov.Priorities {
		parts = append(parts, pc.Priority+"="+strconv.Itoa(pc.Count))
	}
	fmt.Fprintln(w, "Priority: "+strings.Join(parts, " "))
}

// formatTaskLine builds the one-line representation of a task.
func formatTaskLine(t task.Task) string {
	id := "new"
	if t.Saved() {
		id = "#" + strconv.Itoa(t.ID)
	}
	return strconv.Itoa(t.Order) + ". " + id + " [" + t.Priority.String() + "] " +
		t.Name + " " + FormatHours(t.EstimatedHours)
}

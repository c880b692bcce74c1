package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/goalplan/internal/goal"
	"github.com/twiced-technology-gmbh/goalplan/internal/plan"
	"github.com/twiced-technology-gmbh/goalplan/internal/reconcile"
	"github.com/twiced-technology-gmbh/goalplan/internal/schedule"
	"github.com/twiced-technology-gmbh/goalplan/internal/task"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
	dayStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	newStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))

	// Priority colors matching the TUI palette.
	priorityStyles = map[string]lipgloss.Style{
		"high":   lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
		"medium": lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		"low":    lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}
)

// DisableColor strips all styling from table output.
func DisableColor() {
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	titleStyle = lipgloss.NewStyle()
	dayStyle = lipgloss.NewStyle()
	newStyle = lipgloss.NewStyle()
	warnStyle = lipgloss.NewStyle()
	priorityStyles = map[string]lipgloss.Style{}
	markdownStyle = "notty"
}

// TaskTable renders a task list in its stored sequence.
func TaskTable(w io.Writer, tasks []task.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	const pad = 2
	ordW, idW, prioW, hoursW, nameW := 5, 4, 10, 7, 6
	for _, t := range tasks {
		ordW = max(ordW, len(strconv.Itoa(t.Order))+pad)
		idW = max(idW, len(strconv.Itoa(t.ID))+pad)
		hoursW = max(hoursW, len(FormatHours(t.EstimatedHours))+pad)
		nameW = max(nameW, min(len(t.Name)+pad, 50)) //nolint:mnd // max name column width
	}

	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %-*s",
		ordW, "ORDER", idW, "ID", prioW, "PRIORITY", hoursW, "HOURS", nameW, "NAME")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	for _, t := range tasks {
		row := fmt.Sprintf("%-*d %s %s %-*s %s",
			ordW, t.Order,
			padRight(idDisplay(t), idW),
			padRight(styledValue(t.Priority.String(), priorityStyles), prioW),
			hoursW, FormatHours(t.EstimatedHours),
			truncate(t.Name, 48)) //nolint:mnd // max name width
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%d tasks, %s total", len(tasks), FormatHours(task.TotalHours(tasks)))))
}

// GoalTable renders the goals of a workspace.
func GoalTable(w io.Writer, goals []*goal.Goal) {
	if len(goals) == 0 {
		fmt.Fprintln(os.Stderr, "No goals found.")
		return
	}

	const pad = 2
	idW, nameW := 4, 6
	for _, g := range goals {
		idW = max(idW, len(strconv.Itoa(g.ID))+pad)
		nameW = max(nameW, min(len(g.Name)+pad, 40)) //nolint:mnd // max name column width
	}

	header := fmt.Sprintf("%-*s %-*s %6s %8s  %s", idW, "ID", nameW, "NAME", "TASKS", "HOURS", "PERIOD")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))
	for _, g := range goals {
		row := fmt.Sprintf("%-*d %s %6d %8s  %s",
			idW, g.ID,
			padRight(truncate(g.Name, 38), nameW), //nolint:mnd // max name width
			len(g.Tasks), FormatHours(g.TotalHours()), periodDisplay(g))
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// GoalDetail renders a goal with its description and task list.
func GoalDetail(w io.Writer, g *goal.Goal) {
	titleLine := fmt.Sprintf("Goal #%d: %s", g.ID, g.Name)
	fmt.Fprintln(w, titleStyle.Render(titleLine))
	fmt.Fprintln(w, strings.Repeat("─", lipgloss.Width(titleLine)))

	printField(w, "Period", periodDisplay(g))
	printField(w, "Tasks", strconv.Itoa(len(g.Tasks)))
	printField(w, "Hours", FormatHours(g.TotalHours()))
	printField(w, "Created", g.Created.Format("2006-01-02 15:04"))
	printField(w, "Updated", g.Updated.Format("2006-01-02 15:04"))

	if g.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprint(w, RenderMarkdown(g.Description))
	}
	if len(g.Tasks) > 0 {
		fmt.Fprintln(w)
		TaskTable(w, g.Tasks)
	}
}

// EventTable renders a schedule as an agenda grouped by day.
func EventTable(w io.Writer, events []schedule.Event) {
	if len(events) == 0 {
		fmt.Fprintln(os.Stderr, "Nothing to schedule.")
		return
	}

	for i, day := range plan.ByDay(events) {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s %s\n",
			dayStyle.Render(day.Day.Format("Mon 2006-01-02")),
			dimStyle.Render("("+FormatHours(day.Hours)+")"))
		for _, e := range day.Events {
			row := fmt.Sprintf("  %s-%s  %s %s",
				e.Start.Format("15:04"), e.End.Format("15:04"),
				padRight(styledValue(e.Priority.String(), priorityStyles), 8), //nolint:mnd // priority column width
				EventTitle(e))
			fmt.Fprintln(w, strings.TrimRight(row, " "))
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%d blocks, %s elapsed", len(events), FormatDuration(plan.Span(events)))))
}

// OverviewTable renders a goal plan summary as a dashboard.
func OverviewTable(w io.Writer, ov plan.Overview) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Goal #%d: %s", ov.GoalID, ov.GoalName)))
	fmt.Fprintf(w, "Total: %d tasks, %s\n", ov.TotalTasks, FormatHours(ov.TotalHours))
	if ov.Unscheduled > 0 {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("%d tasks have no estimate", ov.Unscheduled)))
	}
	if ov.FirstDay != nil && ov.LastDay != nil {
		fmt.Fprintf(w, "Schedule: %d days at %s/day, %s to %s\n",
			ov.Days, FormatHours(ov.HoursPerDay), ov.FirstDay, ov.LastDay)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-16s %6s %8s", "PRIORITY", "COUNT", "HOURS")))
	for _, pc := range ov.Priorities {
		const prioColW = 16
		fmt.Fprintf(w, "%s %6d %8s\n",
			padRight(styledValue(pc.Priority, priorityStyles), prioColW), pc.Count, FormatHours(pc.Hours))
	}
}

// MergeTable renders the outcome of reconciling a proposal into a goal.
func MergeTable(w io.Writer, res reconcile.Result) {
	fmt.Fprintf(w, "%d tasks after merge: %d updated, %s, %d dropped\n",
		len(res.Tasks), res.Updated, newStyle.Render(strconv.Itoa(res.Added)+" added"), len(res.Dropped))
	for _, r := range res.Dropped {
		name := r.Name
		if name == "" {
			name = dimStyle.Render("(unnamed)")
		}
		fmt.Fprintf(w, "  %s record %d %s: %s\n", warnStyle.Render("dropped"), r.Index, name, r.Reason())
	}
	if len(res.Tasks) > 0 {
		fmt.Fprintln(w)
		TaskTable(w, res.Tasks)
	}
}

// EventTitle is the display title of a block, numbered when the task spans days.
func EventTitle(e schedule.Event) string {
	if e.Parts > 1 {
		return fmt.Sprintf("%s (%d/%d)", e.Title, e.Part, e.Parts)
	}
	return e.Title
}

func printField(w io.Writer, label, value string) {
	const labelW = 10
	fmt.Fprintf(w, "%s %s\n", dimStyle.Render(fmt.Sprintf("%-*s", labelW, label+":")), value)
}

func periodDisplay(g *goal.Goal) string {
	switch {
	case g.PeriodStart != nil && g.PeriodEnd != nil:
		return g.PeriodStart.String() + " .. " + g.PeriodEnd.String()
	case g.PeriodStart != nil:
		return "from " + g.PeriodStart.String()
	case g.PeriodEnd != nil:
		return "until " + g.PeriodEnd.String()
	}
	return dimStyle.Render("--")
}

// idDisplay shows "new" for tasks that have not been saved yet.
func idDisplay(t task.Task) string {
	if !t.Saved() {
		return newStyle.Render("new")
	}
	return strconv.Itoa(t.ID)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// padRight pads s with spaces to the given visible width, accounting for ANSI
// escape codes that are invisible but consume bytes.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

// styledValue renders s using a matching style from the map, or returns s unchanged.
func styledValue(s string, styles map[string]lipgloss.Style) string {
	if st, ok := styles[s]; ok {
		return st.Render(s)
	}
	return s
}

// Package plan provides goal-level views over task lists and schedules.
package plan

import (
	"strconv"
	"strings"

	"github.com/twiced-technology-gmbh/goalplan/internal/clierr"
	"github.com/twiced-technology-gmbh/goalplan/internal/date"
	"github.com/twiced-technology-gmbh/goalplan/internal/schedule"
	"github.com/twiced-technology-gmbh/goalplan/internal/task"
)

// PriorityCount holds a count and hour total for a priority level.
type PriorityCount struct {
	Priority string  `json:"priority"`
	Count    int     `json:"count"`
	Hours    float64 `json:"hours"`
}

// Overview is the aggregate view of a goal's plan.
type Overview struct {
	GoalID      int             `json:"goal_id"`
	GoalName    string          `json:"goal_name"`
	TotalTasks  int             `json:"total_tasks"`
	Unscheduled int             `json:"unscheduled"`
	TotalHours  float64         `json:"total_hours"`
	HoursPerDay float64         `json:"hours_per_day,omitempty"`
	Days        int             `json:"days"`
	FirstDay    *date.Date      `json:"first_day,omitempty"`
	LastDay     *date.Date      `json:"last_day,omitempty"`
	Priorities  []PriorityCount `json:"priorities"`
}

// Summary computes the overview of tasks and the events scheduled from them.
// Events may be nil when no schedule was computed.
func Summary(goalID int, goalName string, tasks []task.Task, events []schedule.Event, hoursPerDay float64) Overview {
	counts := make(map[task.Priority]*PriorityCount, 3)
	for _, name := range task.PriorityNames() {
		p, _ := task.ParsePriorityName(name)
		counts[p] = &PriorityCount{Priority: name}
	}

	ov := Overview{
		GoalID:      goalID,
		GoalName:    goalName,
		TotalTasks:  len(tasks),
		HoursPerDay: hoursPerDay,
	}
	for _, t := range tasks {
		ov.TotalHours += t.EstimatedHours
		if t.EstimatedHours == 0 {
			ov.Unscheduled++
		}
		pc, ok := counts[t.Priority]
		if !ok {
			pc = counts[task.DefaultPriority]
		}
		pc.Count++
		pc.Hours += t.EstimatedHours
	}

	// Highest priority first, matching how the lists are read.
	for _, p := range []task.Priority{task.PriorityHigh, task.PriorityMedium, task.PriorityLow} {
		ov.Priorities = append(ov.Priorities, *counts[p])
	}

	days := ByDay(events)
	ov.Days = len(days)
	if len(days) > 0 {
		first, last := days[0].Day, days[len(days)-1].Day
		ov.FirstDay, ov.LastDay = &first, &last
	}
	return ov
}

// ParseIDs splits a comma-separated ID string into deduplicated int IDs.
func ParseIDs(arg string) ([]int, error) {
	parts := strings.Split(arg, ",")
	seen := make(map[int]bool, len(parts))
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.Atoi(p)
		if err != nil || id <= 0 {
			return nil, task.ValidateTaskID(p)
		}
		if !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	if len(ids) == 0 {
		return nil, clierr.New(clierr.InvalidTaskID, "no valid task IDs provided")
	}
	return ids, nil
}

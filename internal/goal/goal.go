// Package goal defines goals and the stores that persist them with their
// task lists.
package goal

import (
	"context"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/goalplan/internal/clierr"
	"github.com/twiced-technology-gmbh/goalplan/internal/date"
	"github.com/twiced-technology-gmbh/goalplan/internal/task"
)

// Goal is a named objective owning an ordered task list.
type Goal struct {
	ID          int         `yaml:"id" json:"id"`
	Name        string      `yaml:"name" json:"name"`
	PeriodStart *date.Date  `yaml:"period_start,omitempty" json:"period_start,omitempty"`
	PeriodEnd   *date.Date  `yaml:"period_end,omitempty" json:"period_end,omitempty"`
	Created     time.Time   `yaml:"created" json:"created"`
	Updated     time.Time   `yaml:"updated" json:"updated"`
	NextTaskID  int         `yaml:"next_task_id" json:"-"`
	Tasks       []task.Task `yaml:"tasks" json:"tasks"`

	// Description is the markdown body, not part of the frontmatter.
	Description string `yaml:"-" json:"description,omitempty"`
	File        string `yaml:"-" json:"file,omitempty"`
}

// Store persists goals and their task lists.
type Store interface {
	List(ctx context.Context) ([]*Goal, error)
	Get(ctx context.Context, id int) (*Goal, error)
	// Create stores g, assigning an ID when g.ID is 0.
	Create(ctx context.Context, g *Goal) error
	// SaveTasks replaces the goal's task list with tasks, in sequence.
	// Tasks without an ID get one; the saved list is returned.
	SaveTasks(ctx context.Context, goalID int, tasks []task.Task) ([]task.Task, error)
	Close() error
}

// Validate checks the goal's name and period.
func (g *Goal) Validate() error {
	g.Name = strings.TrimSpace(g.Name)
	if g.Name == "" {
		return clierr.New(clierr.Validation, "goal name is required").
			WithDetails(map[string]any{"field": "name"})
	}
	if g.PeriodStart != nil && g.PeriodEnd != nil && g.PeriodEnd.Before(g.PeriodStart.Time) {
		return clierr.Newf(clierr.InvalidDate, "period end %s is before start %s", g.PeriodEnd, g.PeriodStart).
			WithDetails(map[string]any{
				"period_start": g.PeriodStart.String(),
				"period_end":   g.PeriodEnd.String(),
			})
	}
	return nil
}

// TotalHours sums the estimated hours of the goal's tasks.
func (g *Goal) TotalHours() float64 {
	return task.TotalHours(g.Tasks)
}

// NotFound returns a GOAL_NOT_FOUND error for id.
func NotFound(id int) *clierr.Error {
	return clierr.Newf(clierr.GoalNotFound, "goal not found: #%d", id).
		WithDetails(map[string]any{"id": id})
}

// AssignIDs gives every unsaved task the next free ID of g, pins GoalID,
// numbers Order by position and returns the prepared copy. g.NextTaskID is
// advanced past every ID in use.
func AssignIDs(g *Goal, tasks []task.Task) []task.Task {
	out := task.Clone(tasks)
	if out == nil {
		out = []task.Task{}
	}
	next := max(g.NextTaskID, 1)
	for _, t := range out {
		if t.ID >= next {
			next = t.ID + 1
		}
	}
	for i := range out {
		if !out[i].Saved() {
			out[i].ID = next
			next++
		}
		out[i].GoalID = g.ID
		out[i].Order = i + 1
		out[i].Source = task.SourcePersisted
	}
	g.NextTaskID = next
	return out
}

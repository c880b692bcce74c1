// Package schedule packs an ordered task list into calendar time blocks
// under a daily work-capacity limit, carrying overflow to following days.
package schedule

import (
	"math"
	"sort"
	"time"

	"github.com/twiced-technology-gmbh/goalplan/internal/clierr"
	"github.com/twiced-technology-gmbh/goalplan/internal/date"
	"github.com/twiced-technology-gmbh/goalplan/internal/task"
)

// Config controls one scheduling run.
type Config struct {
	HoursPerDay float64
	StartDate   date.Date
	StartTime   date.Clock
	Location    *time.Location // nil means UTC
}

// Event is one scheduled block of a task. A task split across days yields
// several events sharing SourceTaskID, numbered Part 1..Parts.
type Event struct {
	Title        string        `json:"title"`
	Start        time.Time     `json:"start"`
	End          time.Time     `json:"end"`
	SourceTaskID int           `json:"source_task_id,omitempty"`
	Part         int           `json:"part"`
	Parts        int           `json:"parts"`
	Priority     task.Priority `json:"priority"`
	Description  string        `json:"description,omitempty"`
}

// Duration returns End - Start.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Day returns the calendar day the event starts on.
func (e Event) Day() date.Date {
	return date.Of(e.Start)
}

// Validate checks cfg for a usable daily capacity.
func (cfg Config) Validate() error {
	h := cfg.HoursPerDay
	if math.IsNaN(h) || math.IsInf(h, 0) || h <= 0 || h > 24 {
		return clierr.Newf(clierr.InvalidPlan, "hours per day must be greater than 0 and at most 24, got %v", h).
			WithDetails(map[string]any{"hours_per_day": h})
	}
	if h < task.MinHours {
		return clierr.Newf(clierr.InvalidPlan, "hours per day %v is below the one-second scheduling resolution", h).
			WithDetails(map[string]any{"hours_per_day": h, "min": task.MinHours})
	}
	if cfg.StartDate.IsZero() {
		return clierr.New(clierr.InvalidPlan, "start date is required")
	}
	return nil
}

// Schedule assigns each task, in ascending Order, to consecutive time blocks.
// Each day offers HoursPerDay of capacity starting at StartTime; a task that
// does not fit is split and its remainder continues on the next day.
// Zero-duration tasks produce no events.
func Schedule(tasks []task.Task, cfg Config) ([]Event, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ordered := task.Clone(tasks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Order < ordered[j].Order
	})

	capacity := hoursToDuration(cfg.HoursPerDay)
	day := cfg.StartDate
	left := capacity

	events := []Event{}
	for _, t := range ordered {
		remaining := hoursToDuration(t.EstimatedHours)
		first := len(events)
		for remaining > 0 {
			if left <= 0 {
				day = day.AddDays(1)
				left = capacity
			}
			chunk := min(remaining, left)
			if chunk <= 0 {
				break
			}
			start := day.At(cfg.StartTime, cfg.Location).Add(capacity - left)
			events = append(events, Event{
				Title:        t.Name,
				Start:        start,
				End:          start.Add(chunk),
				SourceTaskID: t.ID,
				Priority:     t.Priority,
				Description:  t.Description,
			})
			remaining -= chunk
			left -= chunk
		}
		parts := len(events) - first
		for i := first; i < len(events); i++ {
			events[i].Part = i - first + 1
			events[i].Parts = parts
		}
	}
	return events, nil
}

// hoursToDuration converts fractional hours to a Duration rounded to the
// nearest second.
func hoursToDuration(h float64) time.Duration {
	if h <= 0 || math.IsNaN(h) || math.IsInf(h, 0) {
		return 0
	}
	return time.Duration(math.Round(h*3600)) * time.Second
}

// Package task defines the canonical task record and the normalizer that
// turns loosely-typed payloads into it.
package task

import "strings"

// Task is the canonical, post-normalization task record.
type Task struct {
	ID             int      `yaml:"id,omitempty" json:"id,omitempty"`
	GoalID         int      `yaml:"goal_id" json:"goal_id"`
	Name           string   `yaml:"name" json:"name"`
	Description    string   `yaml:"description,omitempty" json:"description,omitempty"`
	EstimatedHours float64  `yaml:"estimated_time" json:"estimated_time"`
	Priority       Priority `yaml:"priority" json:"priority"`
	Order          int      `yaml:"order" json:"order"`

	// Source tags where the record came from. Merge precedence only; never serialized.
	Source Source `yaml:"-" json:"-"`
}

// Saved reports whether the task has a durable, store-assigned ID.
func (t Task) Saved() bool {
	return t.ID > 0
}

// Source distinguishes persisted records from AI-proposed ones.
type Source string

// Known sources.
const (
	SourcePersisted Source = "persisted"
	SourceProposed  Source = "proposed"
)

// Priority is the ordinal task priority.
type Priority int

// Priority levels.
const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
)

// MinHours is the smallest positive duration the scheduler represents, one
// second. Anything shorter would round away to nothing.
const MinHours = 1.0 / 3600

// DefaultPriority is used when a record carries no usable priority.
const DefaultPriority = PriorityMedium

var priorityNames = map[Priority]string{
	PriorityLow:    "low",
	PriorityMedium: "medium",
	PriorityHigh:   "high",
}

// String returns the priority name (low, medium, high).
func (p Priority) String() string {
	if s, ok := priorityNames[p]; ok {
		return s
	}
	return "medium"
}

// Valid reports whether p is one of the known levels.
func (p Priority) Valid() bool {
	_, ok := priorityNames[p]
	return ok
}

// PriorityNames returns the priority names from low to high.
func PriorityNames() []string {
	return []string{"low", "medium", "high"}
}

// ParsePriorityName parses a priority name or digit ("high", "3").
func ParsePriorityName(s string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "1":
		return PriorityLow, true
	case "medium", "med", "2":
		return PriorityMedium, true
	case "high", "3":
		return PriorityHigh, true
	}
	return 0, false
}

// TotalHours sums the estimated hours of tasks.
func TotalHours(tasks []Task) float64 {
	var sum float64
	for _, t := range tasks {
		sum += t.EstimatedHours
	}
	return sum
}

// Clone returns a copy of tasks that shares no backing array with the input.
func Clone(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}

package plan

import (
	"strings"

	"github.com/twiced-technology-gmbh/goalplan/internal/task"
)

// FilterOptions defines which tasks to include.
type FilterOptions struct {
	Priorities []task.Priority
	Search     string  // case-insensitive substring match across name and description
	MinHours   float64 // 0 = no lower bound
	MaxHours   float64 // 0 = no upper bound
	Unsaved    bool    // only tasks without a store-assigned ID
}

// Filter returns tasks matching all specified criteria (AND logic).
// The returned tasks keep their orders; filtering is a view.
func Filter(tasks []task.Task, opts FilterOptions) []task.Task {
	result := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if matchesFilter(t, opts) {
			result = append(result, t)
		}
	}
	return result
}

func matchesFilter(t task.Task, opts FilterOptions) bool {
	if len(opts.Priorities) > 0 && !containsPriority(opts.Priorities, t.Priority) {
		return false
	}
	if opts.Search != "" && !matchesSearch(t, opts.Search) {
		return false
	}
	if opts.MinHours > 0 && t.EstimatedHours < opts.MinHours {
		return false
	}
	if opts.MaxHours > 0 && t.EstimatedHours > opts.MaxHours {
		return false
	}
	if opts.Unsaved && t.Saved() {
		return false
	}
	return true
}

func matchesSearch(t task.Task, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(t.Name), q) ||
		strings.Contains(strings.ToLower(t.Description), q)
}

func containsPriority(list []task.Priority, p task.Priority) bool {
	for _, x := range list {
		if x == p {
			return true
		}
	}
	return false
}

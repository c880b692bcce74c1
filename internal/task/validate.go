package task

import (
	"strings"

	"github.com/twiced-technology-gmbh/goalplan/internal/clierr"
)

// ValidateName checks that a task name is non-empty after trimming.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return clierr.New(clierr.Validation, "task name is required").
			WithDetails(map[string]any{"field": "name"})
	}
	return nil
}

// ValidateHours returns a VALIDATION_ERROR for an unusable duration.
func ValidateHours(name string, value any) *clierr.Error {
	return clierr.Newf(clierr.Validation,
		"task %q: estimated duration %v is not a finite, non-negative number", name, value).
		WithDetails(map[string]any{
			"field": "estimated_time",
			"name":  name,
			"input": value,
		})
}

// ValidateID returns a VALIDATION_ERROR for a malformed task id.
func ValidateID(name string, value any) *clierr.Error {
	return clierr.Newf(clierr.Validation, "task %q: id %v is not a non-negative integer", name, value).
		WithDetails(map[string]any{
			"field": "id",
			"name":  name,
			"input": value,
		})
}

// ValidateRecord returns a VALIDATION_ERROR for a record that cannot be read at all.
func ValidateRecord(reason string) *clierr.Error {
	return clierr.New(clierr.Validation, reason)
}

// ValidatePriority checks a user-supplied priority name or digit.
func ValidatePriority(input string) (Priority, error) {
	p, ok := ParsePriorityName(input)
	if !ok {
		return 0, clierr.Newf(clierr.Validation, "invalid priority %q", input).
			WithDetails(map[string]any{
				"priority": input,
				"allowed":  PriorityNames(),
			})
	}
	return p, nil
}

// ValidateTaskID returns a CLIError for invalid task ID input.
func ValidateTaskID(input string) *clierr.Error {
	return clierr.Newf(clierr.InvalidTaskID, "invalid task ID %q", input).
		WithDetails(map[string]any{"input": input})
}

// NotFound returns a TASK_NOT_FOUND error for id within goal.
func NotFound(goalID, id int) *clierr.Error {
	return clierr.Newf(clierr.TaskNotFound, "task #%d not found in goal #%d", id, goalID).
		WithDetails(map[string]any{"goal_id": goalID, "id": id})
}

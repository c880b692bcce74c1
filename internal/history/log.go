// Package history keeps the workspace activity log, one JSON object per line.
package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	logFileName   = "activity.jsonl"
	logFileMode   = 0o600
	maxLogEntries = 10000 // truncate oldest entries when log exceeds this size
)

// Actions recorded in the log.
const (
	ActionGoalCreate = "goal.create"
	ActionTaskAdd    = "task.add"
	ActionTaskEdit   = "task.edit"
	ActionTaskDelete = "task.delete"
	ActionTaskMove   = "task.move"
	ActionRenumber   = "task.renumber"
	ActionMerge      = "merge"
	ActionPlanSave   = "plan.save"
	ActionPublish    = "calendar.publish"
)

// Entry represents a single activity log entry.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	GoalID    int       `json:"goal_id"`
	TaskID    int       `json:"task_id,omitempty"`
	Detail    string    `json:"detail"`
}

// Append appends an entry to the activity log in dir.
// If the log exceeds maxLogEntries, the oldest entries are truncated.
func Append(dir string, entry Entry) error {
	path := filepath.Join(dir, logFileName)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFileMode) //nolint:gosec // log path from trusted workspace dir
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling log entry: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing log entry: %w", err)
	}

	// Best-effort; errors are non-fatal.
	_ = truncateIfNeeded(path)

	return nil
}

// Read returns the entries in dir's log, oldest first, optionally limited to
// one goal (goalID > 0) and the last n entries (n > 0). Malformed lines are skipped.
func Read(dir string, goalID, n int) ([]Entry, error) {
	f, err := os.Open(filepath.Join(dir, logFileName)) //nolint:gosec // trusted path
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		if json.Unmarshal(scanner.Bytes(), &e) != nil {
			continue
		}
		if goalID > 0 && e.GoalID != goalID {
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading log file: %w", err)
	}
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}

// truncateIfNeeded rewrites the log keeping only the most recent
// maxLogEntries lines.
func truncateIfNeeded(path string) error {
	f, err := os.Open(path) //nolint:gosec // trusted path
	if err != nil {
		return err
	}

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	_ = f.Close()

	if err := scanner.Err(); err != nil {
		return err
	}

	if len(lines) <= maxLogEntries {
		return nil
	}

	lines = lines[len(lines)-maxLogEntries:]

	var buf strings.Builder
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	return os.WriteFile(path, []byte(buf.String()), logFileMode)
}

// Record appends an activity entry. Errors are discarded because logging
// should never fail a command.
func Record(dir, action string, goalID, taskID int, detail string) {
	_ = Append(dir, Entry{
		Timestamp: time.Now(),
		Action:    action,
		GoalID:    goalID,
		TaskID:    taskID,
		Detail:    detail,
	})
}

// Package reconcile merges a goal's persisted task list with a freshly
// proposed one into a single de-duplicated, densely ordered list.
package reconcile

import (
	"strings"

	"github.com/twiced-technology-gmbh/goalplan/internal/order"
	"github.com/twiced-technology-gmbh/goalplan/internal/task"
)

// Rejection records a proposed entry that failed normalization.
type Rejection struct {
	Index int    `json:"index"`
	Name  string `json:"name,omitempty"`
	Err   error  `json:"-"`
}

// Reason returns the rejection error message.
func (r Rejection) Reason() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Result is the outcome of a merge.
type Result struct {
	Tasks   []task.Task
	Dropped []Rejection

	// Updated and Added count matched and appended proposals.
	Updated int
	Added   int
}

// Merge folds proposed records into persisted. Persisted tasks keep their
// relative order; matched proposals overwrite the fields they carry in place
// and the rest are appended in proposal order. Orders are renumbered 1..N. Bad proposals are
// reported in Dropped and never abort the merge.
func Merge(persisted []task.Task, proposed []task.Raw) Result {
	return MergeInto(goalOf(persisted), persisted, proposed)
}

// MergeInto is Merge with the owning goal pinned. New tasks get goalID
// unless it is 0, in which case they keep whatever the record carried.
func MergeInto(goalID int, persisted []task.Task, proposed []task.Raw) Result {
	merged := order.Canonical(persisted)
	var res Result

	for i, raw := range proposed {
		p, err := task.Normalize(raw)
		if err != nil {
			res.Dropped = append(res.Dropped, Rejection{Index: i, Name: rawName(raw), Err: err})
			continue
		}

		if j := match(merged, p); j >= 0 {
			cur := &merged[j]
			has := raw.Presence()
			cur.Name = p.Name
			if has.Hours {
				cur.EstimatedHours = p.EstimatedHours
			}
			if has.Priority {
				cur.Priority = p.Priority
			}
			if has.Description {
				cur.Description = p.Description
			}
			res.Updated++
			continue
		}

		p.ID = 0
		p.Source = task.SourceProposed
		if goalID != 0 {
			p.GoalID = goalID
		}
		p.Order = len(merged) + 1
		merged = append(merged, p)
		res.Added++
	}

	res.Tasks = order.Renumber(merged)
	return res
}

// NormalizeAll normalizes raws, splitting them into tasks and rejections.
func NormalizeAll(raws []task.Raw) ([]task.Task, []Rejection) {
	tasks := make([]task.Task, 0, len(raws))
	var dropped []Rejection
	for i, raw := range raws {
		t, err := task.Normalize(raw)
		if err != nil {
			dropped = append(dropped, Rejection{Index: i, Name: rawName(raw), Err: err})
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, dropped
}

// match returns the index in merged of the task p refers to, or -1.
// A non-zero id matches by id only; otherwise the trimmed name decides.
func match(merged []task.Task, p task.Task) int {
	if p.ID != 0 {
		for i := range merged {
			if merged[i].ID == p.ID {
				return i
			}
		}
		return -1
	}
	for i := range merged {
		if strings.TrimSpace(merged[i].Name) == p.Name {
			return i
		}
	}
	return -1
}

func goalOf(tasks []task.Task) int {
	for _, t := range tasks {
		if t.GoalID != 0 {
			return t.GoalID
		}
	}
	return 0
}

// rawName is a best-effort label for a rejected record.
func rawName(r task.Raw) string {
	for _, k := range []string{"taskName", "name", "task_name"} {
		if s, ok := r.Fields[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

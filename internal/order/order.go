// Package order owns the dense 1-based order of a goal's task list.
// Every function returns a new slice and leaves its input untouched.
package order

import (
	"sort"

	"github.com/twiced-technology-gmbh/goalplan/internal/clierr"
	"github.com/twiced-technology-gmbh/goalplan/internal/task"
)

// Renumber returns a copy of tasks with Order set to position + 1.
func Renumber(tasks []task.Task) []task.Task {
	out := make([]task.Task, len(tasks))
	copy(out, tasks)
	for i := range out {
		out[i].Order = i + 1
	}
	return out
}

// Canonical sorts tasks by Order, keeping input order for ties, and renumbers.
func Canonical(tasks []task.Task) []task.Task {
	out := task.Clone(tasks)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return Renumber(out)
}

// Reorder moves the task at from to position to and renumbers.
func Reorder(tasks []task.Task, from, to int) ([]task.Task, error) {
	if err := checkIndex(from, len(tasks), "from"); err != nil {
		return nil, err
	}
	if err := checkIndex(to, len(tasks), "to"); err != nil {
		return nil, err
	}

	out := make([]task.Task, 0, len(tasks))
	moved := tasks[from]
	for i, t := range tasks {
		if i != from {
			out = append(out, t)
		}
	}
	out = append(out[:to], append([]task.Task{moved}, out[to:]...)...)
	return Renumber(out), nil
}

// RemoveAt deletes the task at index and renumbers.
func RemoveAt(tasks []task.Task, index int) ([]task.Task, error) {
	if err := checkIndex(index, len(tasks), "index"); err != nil {
		return nil, err
	}
	out := make([]task.Task, 0, len(tasks)-1)
	out = append(out, tasks[:index]...)
	out = append(out, tasks[index+1:]...)
	return Renumber(out), nil
}

// Remove deletes the task with the given id and renumbers.
func Remove(tasks []task.Task, id int) ([]task.Task, error) {
	i := IndexOf(tasks, id)
	if i < 0 {
		return nil, clierr.Newf(clierr.TaskNotFound, "task #%d not found", id).
			WithDetails(map[string]any{"id": id})
	}
	return RemoveAt(tasks, i)
}

// Append adds t at the end with the next order value.
func Append(tasks []task.Task, t task.Task) []task.Task {
	out := make([]task.Task, 0, len(tasks)+1)
	out = append(out, tasks...)
	out = append(out, t)
	return Renumber(out)
}

// Update applies fn to a copy of the task with the given id.
// Order is restored afterwards so fn cannot break contiguity.
func Update(tasks []task.Task, id int, fn func(*task.Task) error) ([]task.Task, error) {
	i := IndexOf(tasks, id)
	if i < 0 {
		return nil, clierr.Newf(clierr.TaskNotFound, "task #%d not found", id).
			WithDetails(map[string]any{"id": id})
	}
	out := task.Clone(tasks)
	if err := fn(&out[i]); err != nil {
		return nil, err
	}
	out[i].ID = tasks[i].ID
	return Renumber(out), nil
}

// IndexOf returns the position of the task with id, or -1.
func IndexOf(tasks []task.Task, id int) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func checkIndex(i, n int, name string) error {
	if i < 0 || i >= n {
		return clierr.Newf(clierr.IndexRange, "%s index %d out of range [0, %d)", name, i, n).
			WithDetails(map[string]any{name: i, "len": n})
	}
	return nil
}

package order

import (
	"reflect"
	"testing"

	"github.com/twiced-technology-gmbh/goalplan/internal/clierr"
	"github.com/twiced-technology-gmbh/goalplan/internal/task"
)

func abc() []task.Task {
	return []task.Task{
		{ID: 1, Name: "A", EstimatedHours: 2, Priority: task.PriorityLow, Order: 1},
		{ID: 2, Name: "B", EstimatedHours: 1, Priority: task.PriorityHigh, Order: 2},
		{ID: 3, Name: "C", EstimatedHours: 2, Priority: task.PriorityMedium, Order: 3},
	}
}

func names(tasks []task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Name
	}
	return out
}

func assertContiguous(t *testing.T, tasks []task.Task) {
	t.Helper()
	for i, tk := range tasks {
		if tk.Order != i+1 {
			t.Fatalf("task %d (%s): expected order %d, got %d", i, tk.Name, i+1, tk.Order)
		}
	}
}

func TestReorderMovesFirstToLast(t *testing.T) {
	in := abc()
	got, err := Reorder(in, 0, 2)
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if want := []string{"B", "C", "A"}; !reflect.DeepEqual(names(got), want) {
		t.Fatalf("expected %v, got %v", want, names(got))
	}
	assertContiguous(t, got)
	if !reflect.DeepEqual(in, abc()) {
		t.Fatal("expected input to be left untouched")
	}
}

func TestReorderInverseRoundTrip(t *testing.T) {
	for from := 0; from < 3; from++ {
		for to := 0; to < 3; to++ {
			moved, err := Reorder(abc(), from, to)
			if err != nil {
				t.Fatalf("reorder(%d,%d): %v", from, to, err)
			}
			back, err := Reorder(moved, to, from)
			if err != nil {
				t.Fatalf("reorder(%d,%d): %v", to, from, err)
			}
			if !reflect.DeepEqual(back, abc()) {
				t.Fatalf("round trip %d->%d: expected %v, got %v", from, to, names(abc()), names(back))
			}
		}
	}
}

func TestReorderOutOfRange(t *testing.T) {
	tests := []struct{ from, to int }{{-1, 0}, {0, 3}, {3, 0}, {0, -1}}
	for _, tt := range tests {
		got, err := Reorder(abc(), tt.from, tt.to)
		if !clierr.Is(err, clierr.IndexRange) {
			t.Errorf("reorder(%d,%d): expected %s, got %v", tt.from, tt.to, clierr.IndexRange, err)
		}
		if got != nil {
			t.Errorf("reorder(%d,%d): expected no partial result", tt.from, tt.to)
		}
	}
	if _, err := Reorder(nil, 0, 0); !clierr.Is(err, clierr.IndexRange) {
		t.Errorf("expected index error on empty list, got %v", err)
	}
}

func TestCanonicalBreaksTiesByIndex(t *testing.T) {
	got := Canonical([]task.Task{
		{ID: 9, Name: "late", Order: 4},
		{ID: 1, Name: "x", Order: 2},
		{ID: 2, Name: "y", Order: 2},
		{ID: 3, Name: "gap", Order: 0},
	})
	if want := []string{"gap", "x", "y", "late"}; !reflect.DeepEqual(names(got), want) {
		t.Fatalf("expected %v, got %v", want, names(got))
	}
	assertContiguous(t, got)
}

func TestRemoveRenumbers(t *testing.T) {
	got, err := Remove(abc(), 2)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if want := []string{"A", "C"}; !reflect.DeepEqual(names(got), want) {
		t.Fatalf("expected %v, got %v", want, names(got))
	}
	assertContiguous(t, got)

	if _, err := Remove(abc(), 99); !clierr.Is(err, clierr.TaskNotFound) {
		t.Fatalf("expected %s, got %v", clierr.TaskNotFound, err)
	}
	if _, err := RemoveAt(abc(), 3); !clierr.Is(err, clierr.IndexRange) {
		t.Fatalf("expected %s, got %v", clierr.IndexRange, err)
	}
}

func TestAppendAndUpdate(t *testing.T) {
	got := Append(abc(), task.Task{Name: "D", Order: 77})
	if got[3].Order != 4 {
		t.Fatalf("expected appended order 4, got %d", got[3].Order)
	}

	updated, err := Update(got, 1, func(tk *task.Task) error {
		tk.Name = "A2"
		tk.Order = 50
		tk.ID = 500
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated[0].Name != "A2" || updated[0].ID != 1 {
		t.Fatalf("unexpected updated task %+v", updated[0])
	}
	assertContiguous(t, updated)
	if got[0].Name != "A" {
		t.Fatal("expected update to leave input untouched")
	}
}

func TestSortByIsStableAndKeepsOrder(t *testing.T) {
	got, err := SortBy(abc(), "duration", Desc)
	if err != nil {
		t.Fatalf("sort: %v", err)
	}
	// A and C tie on hours and must keep their relative order.
	if want := []string{"A", "C", "B"}; !reflect.DeepEqual(names(got), want) {
		t.Fatalf("expected %v, got %v", want, names(got))
	}
	if got[0].Order != 1 || got[1].Order != 3 {
		t.Fatalf("expected sort to leave orders unchanged, got %d,%d", got[0].Order, got[1].Order)
	}

	got, err = SortBy(abc(), KeyPriority, Asc)
	if err != nil {
		t.Fatalf("sort: %v", err)
	}
	if want := []string{"A", "C", "B"}; !reflect.DeepEqual(names(got), want) {
		t.Fatalf("expected %v, got %v", want, names(got))
	}
}

func TestSortByRejectsUnknown(t *testing.T) {
	if _, err := SortBy(abc(), "colour", Asc); !clierr.Is(err, clierr.Validation) {
		t.Fatalf("expected validation error for key, got %v", err)
	}
	if _, err := SortBy(abc(), KeyName, "sideways"); !clierr.Is(err, clierr.Validation) {
		t.Fatalf("expected validation error for direction, got %v", err)
	}
}

package reconcile

import (
	"reflect"
	"testing"

	"github.com/twiced-technology-gmbh/goalplan/internal/clierr"
	"github.com/twiced-technology-gmbh/goalplan/internal/task"
)

func persistedSet() []task.Task {
	return []task.Task{
		{ID: 7, GoalID: 1, Name: "Research", EstimatedHours: 3, Priority: task.PriorityHigh, Order: 1, Source: task.SourcePersisted},
		{ID: 8, GoalID: 1, Name: "Write", EstimatedHours: 5, Priority: task.PriorityMedium, Order: 2, Source: task.SourcePersisted},
	}
}

func proposal(fields map[string]any) task.Raw {
	return task.Raw{Source: task.SourceProposed, Fields: fields}
}

func assertContiguous(t *testing.T, tasks []task.Task) {
	t.Helper()
	for i, tk := range tasks {
		if tk.Order != i+1 {
			t.Fatalf("task %d (%s): expected order %d, got %d", i, tk.Name, i+1, tk.Order)
		}
	}
}

func TestMergeIdentityByID(t *testing.T) {
	res := Merge(persistedSet(), []task.Raw{
		proposal(map[string]any{"id": 7, "taskName": "Deep research", "taskTime": 6, "taskPriority": 1}),
	})

	if len(res.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(res.Tasks))
	}
	count := 0
	for _, tk := range res.Tasks {
		if tk.ID != 7 {
			continue
		}
		count++
		if tk.Name != "Deep research" || tk.EstimatedHours != 6 || tk.Priority != task.PriorityLow {
			t.Fatalf("expected proposed fields on id 7, got %+v", tk)
		}
		if tk.GoalID != 1 || tk.Order != 1 {
			t.Fatalf("expected identity fields kept, got %+v", tk)
		}
		if tk.Source != task.SourcePersisted {
			t.Fatalf("expected source persisted, got %q", tk.Source)
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one task with id 7, got %d", count)
	}
	if res.Updated != 1 || res.Added != 0 {
		t.Fatalf("expected 1 update and 0 additions, got %d/%d", res.Updated, res.Added)
	}
}

func TestMergeByNameAppendsNew(t *testing.T) {
	persisted := []task.Task{
		{ID: 1, GoalID: 1, Name: "A", EstimatedHours: 1, Priority: task.PriorityMedium, Order: 1, Source: task.SourcePersisted},
	}
	res := Merge(persisted, []task.Raw{
		proposal(map[string]any{"taskName": "A", "taskTime": 2}),
		proposal(map[string]any{"taskName": "B", "taskTime": 3}),
	})

	if len(res.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(res.Tasks))
	}
	a, b := res.Tasks[0], res.Tasks[1]
	if a.ID != 1 || a.Name != "A" || a.EstimatedHours != 2 || a.Order != 1 {
		t.Fatalf("unexpected first task %+v", a)
	}
	if b.ID != 0 || b.Name != "B" || b.EstimatedHours != 3 || b.Order != 2 {
		t.Fatalf("unexpected second task %+v", b)
	}
	if b.GoalID != 1 || b.Source != task.SourceProposed {
		t.Fatalf("expected new task in goal 1 tagged proposed, got %+v", b)
	}
}

func TestMergeNameMatchIsCaseSensitive(t *testing.T) {
	persisted := []task.Task{{ID: 1, GoalID: 1, Name: "Draft", Order: 1}}
	res := Merge(persisted, []task.Raw{proposal(map[string]any{"taskName": "draft"})})
	if len(res.Tasks) != 2 {
		t.Fatalf("expected case-different name to be a new task, got %d tasks", len(res.Tasks))
	}
}

func TestMergeCollapsesDuplicateProposals(t *testing.T) {
	res := Merge(nil, []task.Raw{
		proposal(map[string]any{"taskName": "Plan", "taskTime": 1}),
		proposal(map[string]any{"taskName": " Plan ", "taskTime": 4}),
	})
	if len(res.Tasks) != 1 {
		t.Fatalf("expected duplicate proposals to collapse, got %d tasks", len(res.Tasks))
	}
	if res.Tasks[0].EstimatedHours != 4 {
		t.Fatalf("expected later proposal to win, got %v", res.Tasks[0].EstimatedHours)
	}
}

func TestMergeDropsInvalidProposals(t *testing.T) {
	res := Merge(persistedSet(), []task.Raw{
		proposal(map[string]any{"taskName": "", "taskTime": 1}),
		proposal(map[string]any{"taskName": "Edit", "taskTime": "a while"}),
		proposal(nil),
		proposal(map[string]any{"taskName": "Publish", "taskTime": 1}),
	})

	if len(res.Dropped) != 3 {
		t.Fatalf("expected 3 dropped records, got %d", len(res.Dropped))
	}
	wantIdx := []int{0, 1, 2}
	for i, d := range res.Dropped {
		if d.Index != wantIdx[i] {
			t.Errorf("dropped %d: expected index %d, got %d", i, wantIdx[i], d.Index)
		}
		if !clierr.Is(d.Err, clierr.Validation) {
			t.Errorf("dropped %d: expected validation error, got %v", i, d.Err)
		}
	}
	if res.Dropped[1].Name != "Edit" {
		t.Errorf("expected dropped name Edit, got %q", res.Dropped[1].Name)
	}
	if len(res.Tasks) != 3 || res.Tasks[2].Name != "Publish" {
		t.Fatalf("expected valid proposal appended, got %+v", res.Tasks)
	}
	assertContiguous(t, res.Tasks)
}

func TestMergeIdempotentWithEmptyProposal(t *testing.T) {
	first := Merge(persistedSet(), []task.Raw{
		proposal(map[string]any{"taskName": "Write", "taskTime": 8}),
		proposal(map[string]any{"taskName": "Edit", "taskTime": 2}),
	})
	second := Merge(first.Tasks, nil)
	if !reflect.DeepEqual(first.Tasks, second.Tasks) {
		t.Fatalf("expected idempotent merge\nfirst:  %+v\nsecond: %+v", first.Tasks, second.Tasks)
	}
}

func TestMergeCanonicalizesPersistedOrder(t *testing.T) {
	persisted := []task.Task{
		{ID: 3, Name: "C", Order: 5},
		{ID: 1, Name: "A", Order: 1},
		{ID: 2, Name: "B", Order: 1},
	}
	res := Merge(persisted, nil)
	got := []int{res.Tasks[0].ID, res.Tasks[1].ID, res.Tasks[2].ID}
	if !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Fatalf("expected ids [1 2 3], got %v", got)
	}
	assertContiguous(t, res.Tasks)
	if persisted[0].Order != 5 {
		t.Fatal("expected input to be left untouched")
	}
}

func TestMergeDeterministic(t *testing.T) {
	props := []task.Raw{
		proposal(map[string]any{"taskName": "X", "taskTime": 1}),
		proposal(map[string]any{"taskName": "Y", "taskTime": 2}),
		proposal(map[string]any{"id": 8, "taskName": "Write v2"}),
	}
	want := Merge(persistedSet(), props)
	for i := 0; i < 10; i++ {
		got := Merge(persistedSet(), props)
		if !reflect.DeepEqual(want.Tasks, got.Tasks) {
			t.Fatalf("expected deterministic output")
		}
	}
}

func TestMergeIntoPinsGoal(t *testing.T) {
	res := MergeInto(42, nil, []task.Raw{proposal(map[string]any{"taskName": "Solo", "goalId": 9})})
	if res.Tasks[0].GoalID != 42 {
		t.Fatalf("expected goal 42, got %d", res.Tasks[0].GoalID)
	}
}

func TestMergeEmpty(t *testing.T) {
	res := Merge(nil, nil)
	if res.Tasks == nil || len(res.Tasks) != 0 {
		t.Fatalf("expected empty non-nil task list, got %#v", res.Tasks)
	}
}

func TestNormalizeAll(t *testing.T) {
	tasks, dropped := NormalizeAll([]task.Raw{
		{Source: task.SourcePersisted, Fields: map[string]any{"name": "ok"}},
		{Source: task.SourcePersisted, Fields: map[string]any{"name": "bad", "estimated_time": -3}},
	})
	if len(tasks) != 1 || len(dropped) != 1 || dropped[0].Index != 1 {
		t.Fatalf("unexpected split: %d tasks, %+v", len(tasks), dropped)
	}
}

func TestMergeKeepsFieldsTheProposalOmits(t *testing.T) {
	persisted := []task.Task{
		{ID: 1, GoalID: 1, Name: "X", EstimatedHours: 5, Priority: task.PriorityHigh, Description: "notes", Order: 1},
	}
	res := Merge(persisted, []task.Raw{proposal(map[string]any{"taskName": "X"})})
	if res.Updated != 1 || len(res.Tasks) != 1 {
		t.Fatalf("expected one updated task, got %+v", res)
	}
	got := res.Tasks[0]
	if got.EstimatedHours != 5 || got.Priority != task.PriorityHigh || got.Description != "notes" {
		t.Fatalf("expected saved fields kept, got %+v", got)
	}

	res = Merge(persisted, []task.Raw{proposal(map[string]any{"taskName": "X", "taskTime": 0, "description": ""})})
	got = res.Tasks[0]
	if got.EstimatedHours != 0 || got.Description != "" || got.Priority != task.PriorityHigh {
		t.Fatalf("expected carried fields to overwrite, got %+v", got)
	}
}

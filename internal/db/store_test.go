package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/twiced-technology-gmbh/goalplan/internal/clierr"
	"github.com/twiced-technology-gmbh/goalplan/internal/date"
	"github.com/twiced-technology-gmbh/goalplan/internal/goal"
	"github.com/twiced-technology-gmbh/goalplan/internal/task"
)

func newTestStore(t *testing.T) (*Store, func()) {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return NewStore(db), func() {
		_ = db.Close()
	}
}

func TestCreateGoalAssignsIDs(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	start := date.New(2024, time.February, 1)
	g := &goal.Goal{
		Name:        "Learn piano",
		PeriodStart: &start,
		Description: "Scales first.",
		Tasks: []task.Task{
			{Name: "Scales", EstimatedHours: 1, Priority: task.PriorityHigh, Order: 1},
			{Name: "Chords", EstimatedHours: 2, Priority: task.PriorityLow, Order: 2},
		},
	}
	if err := store.Create(context.Background(), g); err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if g.ID == 0 {
		t.Fatalf("expected goal ID to be set")
	}

	got, err := store.Get(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("get goal: %v", err)
	}
	if got.Name != "Learn piano" || got.Description != "Scales first." {
		t.Fatalf("unexpected goal %+v", got)
	}
	if got.PeriodStart == nil || got.PeriodStart.String() != "2024-02-01" || got.PeriodEnd != nil {
		t.Fatalf("unexpected period %v..%v", got.PeriodStart, got.PeriodEnd)
	}
	if len(got.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(got.Tasks))
	}
	if got.Tasks[0].ID != 1 || got.Tasks[1].ID != 2 || got.Tasks[1].Priority != task.PriorityLow {
		t.Fatalf("unexpected tasks %+v", got.Tasks)
	}
	if got.NextTaskID != 3 {
		t.Fatalf("expected next task ID 3, got %d", got.NextTaskID)
	}
}

func TestSaveTasksReplacesList(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	g := &goal.Goal{ID: 7, Name: "Garden", Tasks: []task.Task{{Name: "Dig", Order: 1}}}
	if err := store.Create(ctx, g); err != nil {
		t.Fatalf("create goal: %v", err)
	}

	saved, err := store.SaveTasks(ctx, 7, []task.Task{
		{Name: "Plant", EstimatedHours: 3, Order: 1},
		{ID: 1, Name: "Dig deeper", EstimatedHours: 2, Order: 2},
	})
	if err != nil {
		t.Fatalf("save tasks: %v", err)
	}
	if saved[0].ID != 2 || saved[1].ID != 1 {
		t.Fatalf("unexpected ids %d,%d", saved[0].ID, saved[1].ID)
	}

	got, err := store.Get(ctx, 7)
	if err != nil {
		t.Fatalf("get goal: %v", err)
	}
	if len(got.Tasks) != 2 || got.Tasks[0].Name != "Plant" || got.Tasks[1].Name != "Dig deeper" {
		t.Fatalf("unexpected stored tasks %+v", got.Tasks)
	}
	if got.Tasks[0].GoalID != 7 || got.Tasks[0].Source != task.SourcePersisted {
		t.Fatalf("expected persisted tasks in goal 7, got %+v", got.Tasks[0])
	}
}

func TestGetMissingGoal(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	if _, err := store.Get(context.Background(), 42); !clierr.Is(err, clierr.GoalNotFound) {
		t.Fatalf("expected %s, got %v", clierr.GoalNotFound, err)
	}
	if _, err := store.SaveTasks(context.Background(), 42, nil); !clierr.Is(err, clierr.GoalNotFound) {
		t.Fatalf("expected %s, got %v", clierr.GoalNotFound, err)
	}
}

func TestListGoals(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	for _, name := range []string{"One", "Two"} {
		if err := store.Create(ctx, &goal.Goal{Name: name, Tasks: []task.Task{{Name: name + " task", Order: 1}}}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	goals, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list goals: %v", err)
	}
	if len(goals) != 2 || goals[1].Name != "Two" || len(goals[1].Tasks) != 1 {
		t.Fatalf("unexpected goals %+v", goals)
	}
}

func TestOpenFileDatabasePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goalplan.db")
	store, err := OpenStore(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.Create(context.Background(), &goal.Goal{Name: "Persist"}); err != nil {
		t.Fatalf("create goal: %v", err)
	}
	_ = store.Close()

	reopened, err := OpenStore(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()
	goals, err := reopened.List(context.Background())
	if err != nil {
		t.Fatalf("list goals: %v", err)
	}
	if len(goals) != 1 || goals[0].Name != "Persist" {
		t.Fatalf("unexpected goals %+v", goals)
	}
}

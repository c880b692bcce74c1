package goal

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/twiced-technology-gmbh/goalplan/internal/clierr"
	"github.com/twiced-technology-gmbh/goalplan/internal/date"
	"github.com/twiced-technology-gmbh/goalplan/internal/task"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "goals"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestFileStoreCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)

	start := date.New(2024, time.January, 1)
	g := &Goal{
		Name:        "Write a book",
		PeriodStart: &start,
		Description: "# Plan\n\nOne chapter a week.",
		Tasks: []task.Task{
			{Name: "Outline", EstimatedHours: 2, Priority: task.PriorityHigh, Order: 1},
		},
	}
	if err := s.Create(ctx, g); err != nil {
		t.Fatalf("create: %v", err)
	}
	if g.ID != 1 {
		t.Fatalf("expected ID 1, got %d", g.ID)
	}
	if filepath.Base(g.File) != "001-write-a-book.md" {
		t.Fatalf("unexpected file %s", g.File)
	}

	got, err := s.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Write a book" || got.PeriodStart == nil || got.PeriodStart.String() != "2024-01-01" {
		t.Fatalf("unexpected goal %+v", got)
	}
	if !strings.HasPrefix(got.Description, "# Plan") {
		t.Fatalf("expected description body, got %q", got.Description)
	}
	if len(got.Tasks) != 1 || got.Tasks[0].ID != 1 || got.Tasks[0].GoalID != 1 {
		t.Fatalf("unexpected tasks %+v", got.Tasks)
	}
	if got.NextTaskID != 2 {
		t.Fatalf("expected next task ID 2, got %d", got.NextTaskID)
	}
}

func TestFileStoreSaveTasksAssignsIDs(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)
	if err := s.Create(ctx, &Goal{ID: 5, Name: "Run"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	saved, err := s.SaveTasks(ctx, 5, []task.Task{
		{Name: "Warm up", EstimatedHours: 0.5, Order: 1},
		{ID: 9, Name: "Intervals", EstimatedHours: 1, Order: 2},
		{Name: "Cool down", EstimatedHours: 0.25, Order: 3},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	ids := []int{saved[0].ID, saved[1].ID, saved[2].ID}
	if ids[0] != 10 || ids[1] != 9 || ids[2] != 11 {
		t.Fatalf("unexpected ids %v", ids)
	}
	for _, tk := range saved {
		if tk.GoalID != 5 {
			t.Fatalf("expected goal 5, got %d", tk.GoalID)
		}
	}

	got, err := s.Get(ctx, 5)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.NextTaskID != 12 || len(got.Tasks) != 3 || got.Tasks[2].Name != "Cool down" {
		t.Fatalf("unexpected stored goal %+v", got)
	}
}

func TestFileStoreNotFound(t *testing.T) {
	s := newTestFileStore(t)
	if _, err := s.Get(context.Background(), 3); !clierr.Is(err, clierr.GoalNotFound) {
		t.Fatalf("expected %s, got %v", clierr.GoalNotFound, err)
	}
	if _, err := s.SaveTasks(context.Background(), 3, nil); !clierr.Is(err, clierr.GoalNotFound) {
		t.Fatalf("expected %s, got %v", clierr.GoalNotFound, err)
	}
}

func TestFileStoreListSkipsMalformed(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)
	for _, name := range []string{"B", "A"} {
		if err := s.Create(ctx, &Goal{Name: name}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	if err := os.WriteFile(filepath.Join(s.Dir, "099-broken.md"), []byte("no frontmatter"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	goals, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(goals) != 2 || goals[0].Name != "B" || goals[1].ID != 2 {
		t.Fatalf("unexpected goals %+v", goals)
	}
	if len(s.Warnings) != 1 || s.Warnings[0].File != "099-broken.md" {
		t.Fatalf("unexpected warnings %+v", s.Warnings)
	}
}

func TestGoalValidate(t *testing.T) {
	if err := (&Goal{Name: "  "}).Validate(); !clierr.Is(err, clierr.Validation) {
		t.Fatalf("expected %s, got %v", clierr.Validation, err)
	}
	start, end := date.New(2024, time.March, 2), date.New(2024, time.March, 1)
	g := &Goal{Name: "x", PeriodStart: &start, PeriodEnd: &end}
	if err := g.Validate(); !clierr.Is(err, clierr.InvalidDate) {
		t.Fatalf("expected %s, got %v", clierr.InvalidDate, err)
	}
}

func TestGenerateSlug(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Write a Book!", "write-a-book"},
		{"  --  ", "goal"},
		{"Learn Go 1.25", "learn-go-1-25"},
		{strings.Repeat("word ", 20), "word-word-word-word-word-word-word-word-word-word"},
	}
	for _, tt := range tests {
		if got := GenerateSlug(tt.in); got != tt.want {
			t.Errorf("GenerateSlug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

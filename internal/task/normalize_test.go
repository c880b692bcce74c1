package task

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/twiced-technology-gmbh/goalplan/internal/clierr"
)

func TestNormalizePersisted(t *testing.T) {
	got, err := Normalize(Raw{Source: SourcePersisted, Fields: map[string]any{
		"id":             json.Number("7"),
		"goal_id":        3,
		"name":           "  Write outline ",
		"estimated_time": "2.5",
		"priority":       3,
		"order":          4,
		"description":    "chapter one",
	}})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	want := Task{
		ID: 7, GoalID: 3, Name: "Write outline", Description: "chapter one",
		EstimatedHours: 2.5, Priority: PriorityHigh, Order: 4, Source: SourcePersisted,
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestNormalizeProposedAliases(t *testing.T) {
	got, err := Normalize(Raw{Source: SourceProposed, Fields: map[string]any{
		"taskName":     "Draft",
		"taskTime":     json.Number("4"),
		"taskPriority": "low",
		"goalId":       9,
	}})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got.Name != "Draft" || got.EstimatedHours != 4 || got.Priority != PriorityLow || got.GoalID != 9 {
		t.Fatalf("unexpected task %+v", got)
	}
	if got.ID != 0 {
		t.Fatalf("expected id 0 for proposal without id, got %d", got.ID)
	}
	if got.Source != SourceProposed {
		t.Fatalf("expected source proposed, got %q", got.Source)
	}
}

func TestNormalizeFirstPresentAliasWins(t *testing.T) {
	got, err := Normalize(Raw{Source: SourceProposed, Fields: map[string]any{
		"taskName":  nil,
		"name":      "fallback",
		"taskTime":  1,
		"task_time": 9,
	}})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got.Name != "fallback" {
		t.Errorf("expected null alias to be skipped, got name %q", got.Name)
	}
	if got.EstimatedHours != 1 {
		t.Errorf("expected taskTime to win, got %v", got.EstimatedHours)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	got, err := Normalize(Raw{Source: SourceProposed, Fields: map[string]any{"name": "x"}})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got.EstimatedHours != 0 {
		t.Errorf("expected missing duration to be 0, got %v", got.EstimatedHours)
	}
	if got.Priority != DefaultPriority {
		t.Errorf("expected default priority, got %v", got.Priority)
	}
}

func TestNormalizePriorityFallback(t *testing.T) {
	for _, p := range []any{0, 4, "urgent", 2.5, true} {
		got, err := Normalize(Raw{Source: SourceProposed, Fields: map[string]any{"name": "x", "priority": p}})
		if err != nil {
			t.Fatalf("priority %v: %v", p, err)
		}
		if got.Priority != PriorityMedium {
			t.Errorf("priority %v: expected medium, got %v", p, got.Priority)
		}
	}
}

func TestNormalizeRejects(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
	}{
		{"not an object", nil},
		{"missing name", map[string]any{"estimated_time": 1}},
		{"blank name", map[string]any{"name": "   "}},
		{"negative duration", map[string]any{"name": "x", "estimated_time": -1}},
		{"non-numeric duration", map[string]any{"name": "x", "estimated_time": "soon"}},
		{"infinite duration", map[string]any{"name": "x", "estimated_time": math.Inf(1)}},
		{"NaN duration", map[string]any{"name": "x", "estimated_time": math.NaN()}},
		{"sub-second duration", map[string]any{"name": "x", "estimated_time": 0.0001}},
		{"fractional id", map[string]any{"name": "x", "id": 1.5}},
		{"negative id", map[string]any{"name": "x", "id": -2}},
		{"text id", map[string]any{"name": "x", "id": "abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(Raw{Source: SourcePersisted, Fields: tt.fields})
			if err == nil {
				t.Fatal("expected error")
			}
			if !clierr.Is(err, clierr.Validation) {
				t.Fatalf("expected %s, got %v", clierr.Validation, err)
			}
		})
	}
}

func TestNormalizeRoundTripsRawFromTask(t *testing.T) {
	in := Task{ID: 5, GoalID: 2, Name: "Review", EstimatedHours: 1.25, Priority: PriorityLow, Order: 3}
	got, err := Normalize(RawFromTask(in))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	in.Source = SourcePersisted
	if got != in {
		t.Fatalf("expected %+v, got %+v", in, got)
	}
}

func TestCheckHoursResolution(t *testing.T) {
	if err := CheckHours("x", 0); err != nil {
		t.Fatalf("zero duration must stay legal: %v", err)
	}
	if err := CheckHours("x", MinHours); err != nil {
		t.Fatalf("one second must be accepted: %v", err)
	}
	if err := CheckHours("x", MinHours/2); !clierr.Is(err, clierr.Validation) {
		t.Fatalf("expected %s below one second, got %v", clierr.Validation, err)
	}
}

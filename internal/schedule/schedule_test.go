package schedule

import (
	"math"
	"testing"
	"time"

	"github.com/twiced-technology-gmbh/goalplan/internal/clierr"
	"github.com/twiced-technology-gmbh/goalplan/internal/date"
	"github.com/twiced-technology-gmbh/goalplan/internal/task"
)

func newConfig(hours float64) Config {
	return Config{
		HoursPerDay: hours,
		StartDate:   date.New(2024, time.January, 1),
		StartTime:   date.MustClock("09:00"),
	}
}

func at(day, hour, minute int) time.Time {
	return time.Date(2024, time.January, day, hour, minute, 0, 0, time.UTC)
}

func TestScheduleSplitsAcrossDays(t *testing.T) {
	events, err := Schedule([]task.Task{{ID: 1, Name: "A", EstimatedHours: 10, Order: 1}}, newConfig(8))
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	want := []Event{
		{Title: "A", Start: at(1, 9, 0), End: at(1, 17, 0), SourceTaskID: 1, Part: 1, Parts: 2},
		{Title: "A", Start: at(2, 9, 0), End: at(2, 11, 0), SourceTaskID: 1, Part: 2, Parts: 2},
	}
	for i := range want {
		got := events[i]
		if got.Title != want[i].Title || !got.Start.Equal(want[i].Start) || !got.End.Equal(want[i].End) {
			t.Errorf("event %d: expected %s %v-%v, got %s %v-%v", i,
				want[i].Title, want[i].Start, want[i].End, got.Title, got.Start, got.End)
		}
		if got.SourceTaskID != 1 || got.Part != want[i].Part || got.Parts != 2 {
			t.Errorf("event %d: unexpected metadata %+v", i, got)
		}
	}
}

func TestScheduleZeroDurationEmitsNothing(t *testing.T) {
	events, err := Schedule([]task.Task{{ID: 1, Name: "A", EstimatedHours: 0, Order: 1}}, newConfig(8))
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
}

func TestScheduleFollowsOrderNotSlicePosition(t *testing.T) {
	events, err := Schedule([]task.Task{
		{ID: 2, Name: "second", EstimatedHours: 1, Order: 2},
		{ID: 1, Name: "first", EstimatedHours: 1, Order: 1},
	}, newConfig(8))
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if events[0].Title != "first" || !events[1].Start.Equal(at(1, 10, 0)) {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestScheduleFillsDayExactly(t *testing.T) {
	events, err := Schedule([]task.Task{
		{ID: 1, Name: "A", EstimatedHours: 8, Order: 1},
		{ID: 2, Name: "B", EstimatedHours: 1, Order: 2},
	}, newConfig(8))
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if !events[1].Start.Equal(at(2, 9, 0)) {
		t.Fatalf("expected B on the next morning, got %v", events[1].Start)
	}
	if events[0].Parts != 1 {
		t.Fatalf("expected unsplit task to have 1 part, got %d", events[0].Parts)
	}
}

func TestScheduleFractionalHoursLeaveNoSlivers(t *testing.T) {
	tasks := make([]task.Task, 0, 10)
	for i := 1; i <= 10; i++ {
		tasks = append(tasks, task.Task{ID: i, Name: "t", EstimatedHours: 0.1, Order: i})
	}
	events, err := Schedule(tasks, newConfig(0.3))
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if len(events) != 10 {
		t.Fatalf("expected 10 events without slivers, got %d", len(events))
	}
	for _, e := range events {
		if e.Duration() != 6*time.Minute {
			t.Fatalf("expected 6m blocks, got %v", e.Duration())
		}
	}
}

func TestScheduleCapacityAndNonOverlap(t *testing.T) {
	tasks := []task.Task{
		{ID: 1, Name: "a", EstimatedHours: 3.5, Order: 1},
		{ID: 2, Name: "b", EstimatedHours: 0, Order: 2},
		{ID: 3, Name: "c", EstimatedHours: 7.25, Order: 3},
		{ID: 4, Name: "d", EstimatedHours: 12, Order: 4},
		{ID: 5, Name: "e", EstimatedHours: 0.75, Order: 5},
	}
	cfg := newConfig(6)
	events, err := Schedule(tasks, cfg)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	perDay := map[date.Date]time.Duration{}
	var total time.Duration
	for i, e := range events {
		perDay[e.Day()] += e.Duration()
		total += e.Duration()
		if i > 0 {
			prev := events[i-1]
			if e.Start.Before(prev.Start) {
				t.Fatalf("event %d starts before event %d", i, i-1)
			}
			if e.Start.Before(prev.End) {
				t.Fatalf("event %d overlaps event %d", i, i-1)
			}
		}
	}
	for d, used := range perDay {
		if used > 6*time.Hour {
			t.Errorf("day %s: used %v, exceeds capacity", d, used)
		}
	}
	if want := time.Duration(23.5 * float64(time.Hour)); total != want {
		t.Fatalf("expected total %v, got %v", want, total)
	}
}

func TestScheduleUsesLocation(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	cfg := newConfig(8)
	cfg.Location = loc
	events, err := Schedule([]task.Task{{ID: 1, Name: "A", EstimatedHours: 1, Order: 1}}, cfg)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if want := time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC); !events[0].Start.Equal(want) {
		t.Fatalf("expected %v, got %v", want, events[0].Start.UTC())
	}
}

func TestScheduleRejectsBadConfig(t *testing.T) {
	for _, h := range []float64{0, -1, 24.5, math.NaN(), math.Inf(1), 0.0001} {
		events, err := Schedule([]task.Task{{Name: "A", EstimatedHours: 1, Order: 1}}, newConfig(h))
		if !clierr.Is(err, clierr.InvalidPlan) {
			t.Errorf("hours %v: expected %s, got %v", h, clierr.InvalidPlan, err)
		}
		if events != nil {
			t.Errorf("hours %v: expected no partial schedule", h)
		}
	}
	cfg := newConfig(8)
	cfg.StartDate = date.Date{}
	if _, err := Schedule(nil, cfg); !clierr.Is(err, clierr.InvalidPlan) {
		t.Errorf("expected %s for missing start date, got %v", clierr.InvalidPlan, err)
	}
}

func TestScheduleSmallestCapacityTerminates(t *testing.T) {
	done := make(chan error, 1)
	var events []Event
	go func() {
		var err error
		events, err = Schedule([]task.Task{{Name: "A", EstimatedHours: 0.001, Order: 1}}, newConfig(task.MinHours))
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("schedule: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("schedule did not return")
	}
	// 0.001h rounds to 4s, packed one second per day.
	if len(events) != 4 {
		t.Fatalf("expected 4 one-second blocks, got %d", len(events))
	}
	for _, e := range events {
		if e.Duration() != time.Second {
			t.Fatalf("expected one-second blocks, got %v", e.Duration())
		}
	}
}

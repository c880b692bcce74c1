package task

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/twiced-technology-gmbh/goalplan/internal/clierr"
)

// Normalize coerces a raw record into a canonical Task. It fails with a
// VALIDATION_ERROR when the name is empty, the duration is not a finite
// non-negative number, or the id is not a non-negative integer. A missing
// duration is 0 and a missing or unusable priority is medium.
func Normalize(r Raw) (Task, error) {
	if r.Fields == nil {
		return Task{}, ValidateRecord("record is not an object")
	}

	src := r.Source
	if src == "" {
		src = SourcePersisted
	}
	t := Task{Source: src, Priority: DefaultPriority}

	name, _ := r.lookup(fieldName)
	t.Name = strings.TrimSpace(toString(name))
	if err := ValidateName(t.Name); err != nil {
		return Task{}, err
	}

	if v, ok := r.lookup(fieldHours); ok {
		hours, ok := toFloat(v)
		if !ok {
			return Task{}, ValidateHours(t.Name, v)
		}
		if err := checkHours(t.Name, hours); err != nil {
			return Task{}, err
		}
		t.EstimatedHours = hours
	}

	if v, ok := r.lookup(fieldID); ok {
		id, ok := toInt(v)
		if !ok || id < 0 {
			return Task{}, ValidateID(t.Name, v)
		}
		t.ID = id
	}

	if v, ok := r.lookup(fieldPriority); ok {
		t.Priority = coercePriority(v)
	}

	if v, ok := r.lookup(fieldGoalID); ok {
		if id, ok := toInt(v); ok && id > 0 {
			t.GoalID = id
		}
	}

	if v, ok := r.lookup(fieldOrder); ok {
		if n, ok := toInt(v); ok && n > 0 {
			t.Order = n
		}
	}

	if v, ok := r.lookup(fieldDescription); ok {
		t.Description = strings.TrimSpace(toString(v))
	}

	return t, nil
}

// CheckHours validates a user-supplied duration.
func CheckHours(name string, hours float64) error {
	return checkHours(name, hours)
}

func checkHours(name string, hours float64) error {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours < 0 {
		return ValidateHours(name, hours)
	}
	if hours > 0 && hours < MinHours {
		return clierr.Newf(clierr.Validation,
			"task %q: estimated duration %v is below the one-second scheduling resolution", name, hours).
			WithDetails(map[string]any{
				"field": "estimated_time",
				"name":  name,
				"input": hours,
				"min":   MinHours,
			})
	}
	return nil
}

// coercePriority maps a raw priority to a level, falling back to medium.
func coercePriority(v any) Priority {
	if s, ok := v.(string); ok {
		if p, ok := ParsePriorityName(s); ok {
			return p
		}
	}
	n, ok := toInt(v)
	if !ok {
		return DefaultPriority
	}
	p := Priority(n)
	if !p.Valid() {
		return DefaultPriority
	}
	return p
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	}
	return ""
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// toInt coerces integral numbers and numeric strings; fractional values fail.
func toInt(v any) (int, bool) {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

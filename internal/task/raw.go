package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
)

// Raw is an un-normalized task record tagged with the channel it arrived on.
// Persisted records use the storage field names; proposed records use the
// AI channel's names. Fields is nil when the payload element was not an object.
type Raw struct {
	Source Source
	Fields map[string]any
}

// field identifies a canonical task field for alias lookup.
type field int

const (
	fieldID field = iota
	fieldGoalID
	fieldName
	fieldHours
	fieldPriority
	fieldOrder
	fieldDescription
)

// aliases lists, per source, the keys a canonical field may arrive under.
// The first present, non-null key wins.
var aliases = map[Source]map[field][]string{
	SourcePersisted: {
		fieldID:          {"id"},
		fieldGoalID:      {"goal_id", "goalId"},
		fieldName:        {"name"},
		fieldHours:       {"estimated_time", "estimated_duration_hours", "estimatedDurationHours"},
		fieldPriority:    {"priority"},
		fieldOrder:       {"order"},
		fieldDescription: {"description"},
	},
	SourceProposed: {
		fieldID:          {"id"},
		fieldGoalID:      {"goalId", "goal_id"},
		fieldName:        {"taskName", "name", "task_name"},
		fieldHours:       {"taskTime", "estimatedDurationHours", "estimated_time", "task_time"},
		fieldPriority:    {"taskPriority", "tasktaskPriority", "priority"},
		fieldOrder:       {"taskOrder", "order"},
		fieldDescription: {"description"},
	},
}

// lookup returns the first present, non-null alias value for f.
func (r Raw) lookup(f field) (any, bool) {
	table, ok := aliases[r.Source]
	if !ok {
		table = aliases[SourcePersisted]
	}
	for _, key := range table[f] {
		if v, ok := r.Fields[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Presence records which optional fields a raw record carries.
type Presence struct {
	Hours       bool
	Priority    bool
	Description bool
}

// Presence reports which optional fields are present and non-null, under
// any alias of r's source.
func (r Raw) Presence() Presence {
	_, hours := r.lookup(fieldHours)
	_, prio := r.lookup(fieldPriority)
	_, desc := r.lookup(fieldDescription)
	return Presence{Hours: hours, Priority: prio, Description: desc}
}

// Markdown fences AI replies wrap around JSON. Only a fence opening or
// closing the whole payload is stripped; backticks inside values are kept.
var (
	openingFence = regexp.MustCompile("\\A```[a-zA-Z]*[ \\t]*(\\r?\\n)?")
	closingFence = regexp.MustCompile("(\\r?\\n)?```[ \\t]*\\z")
)

func stripFences(data []byte) []byte {
	data = bytes.TrimSpace(data)
	data = openingFence.ReplaceAll(data, nil)
	data = closingFence.ReplaceAll(data, nil)
	return bytes.TrimSpace(data)
}

// ParseRawList decodes a JSON task payload into Raw records tagged with src.
// The payload may be a bare array or an object with a "tasks" array, and may
// be wrapped in a Markdown code fence.
func ParseRawList(data []byte, src Source) ([]Raw, error) {
	cleaned := stripFences(data)
	if len(cleaned) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(cleaned))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding task payload: %w", err)
	}

	var items []any
	switch v := doc.(type) {
	case []any:
		items = v
	case map[string]any:
		list, ok := v["tasks"].([]any)
		if !ok {
			return nil, fmt.Errorf("decoding task payload: object has no \"tasks\" array")
		}
		items = list
	default:
		return nil, fmt.Errorf("decoding task payload: expected array or object, got %T", doc)
	}

	raws := make([]Raw, 0, len(items))
	for _, item := range items {
		fields, _ := item.(map[string]any)
		raws = append(raws, Raw{Source: src, Fields: fields})
	}
	return raws, nil
}

// RawFromTask converts a canonical task back into a persisted Raw record.
func RawFromTask(t Task) Raw {
	fields := map[string]any{
		"goal_id":        t.GoalID,
		"name":           t.Name,
		"estimated_time": t.EstimatedHours,
		"priority":       int(t.Priority),
		"order":          t.Order,
	}
	if t.ID > 0 {
		fields["id"] = t.ID
	}
	if t.Description != "" {
		fields["description"] = t.Description
	}
	return Raw{Source: SourcePersisted, Fields: fields}
}

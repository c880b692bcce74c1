package order

import (
	"sort"
	"strings"

	"github.com/twiced-technology-gmbh/goalplan/internal/clierr"
	"github.com/twiced-technology-gmbh/goalplan/internal/task"
)

// Sort keys.
const (
	KeyOrder    = "order"
	KeyID       = "id"
	KeyName     = "name"
	KeyHours    = "estimated_time"
	KeyPriority = "priority"
)

// Sort directions.
const (
	Asc  = "asc"
	Desc = "desc"
)

var keyAliases = map[string]string{
	"duration": KeyHours,
	"hours":    KeyHours,
	"time":     KeyHours,
}

// ValidSortKeys returns the canonical sort key names.
func ValidSortKeys() []string {
	return []string{KeyOrder, KeyID, KeyName, KeyHours, KeyPriority}
}

// NormalizeKey resolves aliases and reports whether key is known.
func NormalizeKey(key string) (string, bool) {
	k := strings.ToLower(strings.TrimSpace(key))
	if alias, ok := keyAliases[k]; ok {
		k = alias
	}
	for _, valid := range ValidSortKeys() {
		if k == valid {
			return k, true
		}
	}
	return "", false
}

// SortBy returns a stably sorted copy of tasks. Orders are not renumbered:
// sorting is a view, and the stored order is unchanged until a save.
func SortBy(tasks []task.Task, key, dir string) ([]task.Task, error) {
	k, ok := NormalizeKey(key)
	if !ok {
		return nil, clierr.Newf(clierr.Validation, "unknown sort key %q", key).
			WithDetails(map[string]any{"key": key, "allowed": ValidSortKeys()})
	}
	var desc bool
	switch strings.ToLower(dir) {
	case "", Asc:
	case Desc:
		desc = true
	default:
		return nil, clierr.Newf(clierr.Validation, "unknown sort direction %q", dir).
			WithDetails(map[string]any{"direction": dir, "allowed": []string{Asc, Desc}})
	}

	out := task.Clone(tasks)
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return compareTasks(out[j], out[i], k)
		}
		return compareTasks(out[i], out[j], k)
	})
	return out, nil
}

// compareTasks reports whether a sorts strictly before b on key.
func compareTasks(a, b task.Task, key string) bool {
	switch key {
	case KeyID:
		return a.ID < b.ID
	case KeyName:
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	case KeyHours:
		return a.EstimatedHours < b.EstimatedHours
	case KeyPriority:
		return a.Priority < b.Priority
	default:
		return a.Order < b.Order
	}
}

package goal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/twiced-technology-gmbh/goalplan/internal/clierr"
	"github.com/twiced-technology-gmbh/goalplan/internal/task"
)

// idPrefixRe matches the numeric ID prefix of a goal filename.
var idPrefixRe = regexp.MustCompile(`^(\d+)-`)

var _ Store = (*FileStore)(nil)

// FileStore keeps one markdown file per goal in Dir.
type FileStore struct {
	Dir string

	// Warnings collects files skipped by the last List call.
	Warnings []ReadWarning
}

// ReadWarning describes a goal file that could not be parsed.
type ReadWarning struct {
	File string
	Err  error
}

// NewFileStore returns a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating goals directory: %w", err)
	}
	return &FileStore{Dir: dir}, nil
}

// List reads every goal file, skipping malformed ones into Warnings.
// Goals are returned by ascending ID.
func (s *FileStore) List(ctx context.Context) ([]*Goal, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading goals directory: %w", err)
	}

	s.Warnings = nil
	var goals []*Goal
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".md" {
			continue
		}
		g, readErr := Read(filepath.Join(s.Dir, entry.Name()))
		if readErr != nil {
			s.Warnings = append(s.Warnings, ReadWarning{File: entry.Name(), Err: readErr})
			continue
		}
		goals = append(goals, g)
	}
	sort.SliceStable(goals, func(i, j int) bool { return goals[i].ID < goals[j].ID })
	return goals, nil
}

// Get loads the goal with the given id.
func (s *FileStore) Get(_ context.Context, id int) (*Goal, error) {
	path, err := s.find(id)
	if err != nil {
		return nil, err
	}
	return Read(path)
}

// Create writes a new goal file. A zero ID becomes one past the highest
// ID on disk.
func (s *FileStore) Create(ctx context.Context, g *Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if g.ID == 0 {
		id, err := s.nextID()
		if err != nil {
			return err
		}
		g.ID = id
	}
	if _, err := s.find(g.ID); err == nil {
		return clierr.Newf(clierr.InvalidGoalID, "goal #%d already exists", g.ID).
			WithDetails(map[string]any{"id": g.ID})
	}

	now := time.Now()
	if g.Created.IsZero() {
		g.Created = now
	}
	g.Updated = now
	g.Tasks = AssignIDs(g, g.Tasks)

	path := filepath.Join(s.Dir, GenerateFilename(g.ID, GenerateSlug(g.Name)))
	if err := Write(path, g); err != nil {
		return fmt.Errorf("writing goal: %w", err)
	}
	g.File = path
	return ctx.Err()
}

// SaveTasks replaces the goal's task list and rewrites its file.
func (s *FileStore) SaveTasks(_ context.Context, goalID int, tasks []task.Task) ([]task.Task, error) {
	path, err := s.find(goalID)
	if err != nil {
		return nil, err
	}
	g, err := Read(path)
	if err != nil {
		return nil, err
	}

	g.Tasks = AssignIDs(g, tasks)
	g.Updated = time.Now()
	if err := Write(path, g); err != nil {
		return nil, fmt.Errorf("writing goal: %w", err)
	}
	return task.Clone(g.Tasks), nil
}

// Close is a no-op for file stores.
func (s *FileStore) Close() error { return nil }

// find scans the goals directory for the file with the given ID.
func (s *FileStore) find(id int) (string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return "", fmt.Errorf("reading goals directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".md" {
			continue
		}
		got, err := ExtractIDFromFilename(entry.Name())
		if err == nil && got == id {
			return filepath.Join(s.Dir, entry.Name()), nil
		}
	}
	return "", NotFound(id)
}

func (s *FileStore) nextID() (int, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return 0, fmt.Errorf("reading goals directory: %w", err)
	}
	highest := 0
	for _, entry := range entries {
		if id, err := ExtractIDFromFilename(entry.Name()); err == nil && id > highest {
			highest = id
		}
	}
	return highest + 1, nil
}

// ExtractIDFromFilename extracts the numeric ID from a goal filename.
func ExtractIDFromFilename(filename string) (int, error) {
	matches := idPrefixRe.FindStringSubmatch(filename)
	if len(matches) < 2 { //nolint:mnd // regex capture group
		return 0, fmt.Errorf("cannot extract ID from filename %q", filename)
	}
	return strconv.Atoi(matches[1])
}

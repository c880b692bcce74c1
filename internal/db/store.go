package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/twiced-technology-gmbh/goalplan/internal/date"
	"github.com/twiced-technology-gmbh/goalplan/internal/goal"
	"github.com/twiced-technology-gmbh/goalplan/internal/task"
)

var _ goal.Store = (*Store)(nil)

// Store implements goal.Store on a sqlite database.
type Store struct {
	DB *sql.DB
}

// NewStore wraps an open database.
func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

// OpenStore opens the database at path and returns a store over it.
func OpenStore(path string) (*Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return NewStore(db), nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.DB.Close()
}

const goalColumns = `id, name, description, period_start, period_end, next_task_id, created_at, updated_at`

// List returns every goal with its tasks, by ascending ID.
func (s *Store) List(ctx context.Context) ([]*goal.Goal, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT `+goalColumns+` FROM goals ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []*goal.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	// Tasks are loaded after the goal cursor closes; the pool has one connection.
	_ = rows.Close()

	for _, g := range goals {
		if g.Tasks, err = s.listTasks(ctx, s.DB, g.ID); err != nil {
			return nil, err
		}
	}
	return goals, nil
}

// Get loads one goal with its tasks.
func (s *Store) Get(ctx context.Context, id int) (*goal.Goal, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ?`, id)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goal.NotFound(id)
	}
	if err != nil {
		return nil, err
	}
	if g.Tasks, err = s.listTasks(ctx, s.DB, id); err != nil {
		return nil, err
	}
	return g, nil
}

// Create inserts g and its tasks. A zero ID is assigned by sqlite.
func (s *Store) Create(ctx context.Context, g *goal.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	if g.Created.IsZero() {
		g.Created = now
	}
	g.Updated = now

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var id any
	if g.ID != 0 {
		id = g.ID
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO goals (id, name, description, period_start, period_end, next_task_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, g.Name, g.Description, nullDate(g.PeriodStart), nullDate(g.PeriodEnd), max(g.NextTaskID, 1),
		g.Created.Format(time.RFC3339Nano), g.Updated.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	if g.ID == 0 {
		newID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert goal: %w", err)
		}
		g.ID = int(newID)
	}

	g.Tasks = goal.AssignIDs(g, g.Tasks)
	if err := replaceTasks(ctx, tx, g); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveTasks replaces the goal's task list in one transaction.
func (s *Store) SaveTasks(ctx context.Context, goalID int, tasks []task.Task) ([]task.Task, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	g := &goal.Goal{ID: goalID}
	err = tx.QueryRowContext(ctx, `SELECT next_task_id FROM goals WHERE id = ?`, goalID).Scan(&g.NextTaskID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goal.NotFound(goalID)
	}
	if err != nil {
		return nil, fmt.Errorf("load goal: %w", err)
	}

	g.Tasks = goal.AssignIDs(g, tasks)
	if err := replaceTasks(ctx, tx, g); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return task.Clone(g.Tasks), nil
}

func replaceTasks(ctx context.Context, tx *sql.Tx, g *goal.Goal) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE goal_id = ?`, g.ID); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO tasks (goal_id, id, name, description, estimated_time, priority, sort_order)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare task insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range g.Tasks {
		if _, err := stmt.ExecContext(ctx, g.ID, t.ID, t.Name, t.Description,
			t.EstimatedHours, int(t.Priority), t.Order); err != nil {
			return fmt.Errorf("insert task %q: %w", t.Name, err)
		}
	}

	_, err = tx.ExecContext(ctx, `UPDATE goals SET next_task_id = ?, updated_at = ? WHERE id = ?`,
		g.NextTaskID, time.Now().UTC().Format(time.RFC3339Nano), g.ID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) listTasks(ctx context.Context, q querier, goalID int) ([]task.Task, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, name, description, estimated_time, priority, sort_order
		 FROM tasks WHERE goal_id = ? ORDER BY sort_order, id`, goalID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []task.Task{}
	for rows.Next() {
		t := task.Task{GoalID: goalID, Source: task.SourcePersisted}
		var prio int
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.EstimatedHours, &prio, &t.Order); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Priority = task.Priority(prio)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGoal(sc scanner) (*goal.Goal, error) {
	var (
		g                goal.Goal
		start, end       sql.NullString
		created, updated string
	)
	if err := sc.Scan(&g.ID, &g.Name, &g.Description, &start, &end, &g.NextTaskID, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan goal: %w", err)
	}

	var err error
	if g.PeriodStart, err = parseNullDate(start); err != nil {
		return nil, err
	}
	if g.PeriodEnd, err = parseNullDate(end); err != nil {
		return nil, err
	}
	g.Created, _ = time.Parse(time.RFC3339Nano, created)
	g.Updated, _ = time.Parse(time.RFC3339Nano, updated)
	return &g, nil
}

func nullDate(d *date.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseNullDate(s sql.NullString) (*date.Date, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	d, err := date.Parse(s.String)
	if err != nil {
		return nil, fmt.Errorf("scan goal period: %w", err)
	}
	return &d, nil
}

package repositories

import (
	"context"
	"database/sql"
	"daystack/internal/domain"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQL-backed implementation of the TaskRepository port.
type SQLTaskRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLTaskRepository(db *sql.DB, dialect Dialect) *SQLTaskRepository {
	return &SQLTaskRepository{DB: db, Dialect: dialect}
}

// Return the whole backlog in insertion order.
func (s *SQLTaskRepository) ListTasks(ctx context.Context) ([]domain.FlexibleTask, error) {
	if s.DB == nil {
		return nil, errors.New("task repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT
		task_id,
		name,
		duration_minutes,
		location,
		deadline,
		course,
		link
	FROM tasks
	ORDER BY position, task_id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: query tasks table: %w", err)
	}
	defer rows.Close()

	tasks := make([]domain.FlexibleTask, 0, 64)
	for rows.Next() {
		var (
			t        domain.FlexibleTask
			deadline sql.NullString
			course   string
			link     string
		)
		if err := rows.Scan(&t.ID, &t.Name, &t.DurationMinutes, &t.Location, &deadline, &course, &link); err != nil {
			return nil, fmt.Errorf("list tasks: scan row: %w", err)
		}

		if deadline.Valid && deadline.String != "" {
			d, err := time.Parse(time.RFC3339, deadline.String)
			if err != nil {
				return nil, fmt.Errorf("list tasks: task %q deadline %q: %w", t.ID, deadline.String, err)
			}
			t.Deadline = &d
		}
		if course != "" || link != "" {
			t.Source = &domain.TaskSource{Course: course, Link: link}
		}

		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: row iteration: %w", err)
	}

	return tasks, nil
}

// ReplaceTasks swaps the stored backlog for tasks in one transaction.
func (s *SQLTaskRepository) ReplaceTasks(ctx context.Context, tasks []domain.FlexibleTask) error {
	if s.DB == nil {
		return errors.New("task repository: DB is nil")
	}

	for i, t := range tasks {
		if strings.TrimSpace(t.ID) == "" {
			return fmt.Errorf("replace tasks: task at index %d has empty id", i)
		}
		if t.DurationMinutes <= 0 {
			return fmt.Errorf("replace tasks: task %q has non-positive duration %d", t.ID, t.DurationMinutes)
		}
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace tasks: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks;`); err != nil {
		return fmt.Errorf("replace tasks: clear table: %w", err)
	}

	ph := make([]string, 8)
	for i := range ph {
		ph[i] = s.Dialect.placeholder(i + 1)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
	INSERT INTO tasks (task_id, position, name, duration_minutes, location, deadline, course, link)
	VALUES (%s);
	`, strings.Join(ph, ", ")))
	if err != nil {
		return fmt.Errorf("replace tasks: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range tasks {
		var deadline sql.NullString
		if t.Deadline != nil {
			deadline = sql.NullString{String: t.Deadline.Format(time.RFC3339), Valid: true}
		}
		var course, link string
		if t.Source != nil {
			course, link = t.Source.Course, t.Source.Link
		}

		if _, err := stmt.ExecContext(ctx, t.ID, i, t.Name, t.DurationMinutes, t.Location, deadline, course, link); err != nil {
			return fmt.Errorf("replace tasks: insert task_id=%q: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace tasks: commit tx: %w", err)
	}

	return nil
}

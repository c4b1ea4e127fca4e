// Package tasks is the task repository: ownership-scoped CRUD and substring
// search over a user's task set. Every operation is a single round-trip
// against the store, guarded by an equality filter on the owning user's id.
// The ownership check is enforced here, at the repository boundary, not in
// the handlers.
package tasks

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/tareas-go/apperror"
)

// Service is the task repository contract shared by both HTTP surfaces.
type Service interface {
	// List returns all tasks owned by userID in insertion order.
	List(ctx context.Context, userID int) ([]Task, error)
	// Create persists a new task owned by userID. Title is required.
	Create(ctx context.Context, userID int, req TaskRequest) (*Task, error)
	// Get returns the task with taskID. A missing id fails NotFound; an id
	// owned by another user fails Forbidden.
	Get(ctx context.Context, taskID, userID int) (*Task, error)
	// Update overwrites title/description/priority with the same ownership
	// rules as Get. ID, owner and creation time are untouched.
	Update(ctx context.Context, taskID, userID int, req TaskRequest) (*Task, error)
	// Delete removes the task with the same ownership rules as Get.
	// Deleting a nonexistent or foreign task is an error, never a silent
	// success.
	Delete(ctx context.Context, taskID, userID int) error
	// Search restricts List to tasks whose title or description contains
	// query as a case-insensitive substring. An empty query returns the
	// unfiltered list.
	Search(ctx context.Context, userID int, query string) ([]Task, error)
}

// validateRequest applies the task input rules shared by the store
// implementations.
func validateRequest(req TaskRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return apperror.NewValidationError("title is required", nil)
	}
	return nil
}

// PGService is the PostgreSQL-backed task repository.
type PGService struct {
	db *pgxpool.Pool
}

// NewPGService creates a PGService on top of the given pool.
func NewPGService(db *pgxpool.Pool) *PGService {
	return &PGService{db: db}
}

const taskColumns = `id, title, description, priority, created_at, user_id`

// scanTasks drains rows into a task slice.
func scanTasks(rows pgx.Rows) ([]Task, error) {
	defer rows.Close()

	// Always return a non-nil slice so an empty list serializes as [].
	tasks := []Task{}
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Priority, &t.CreatedAt, &t.OwnerID); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// List returns all tasks owned by userID, oldest first.
func (s *PGService) List(ctx context.Context, userID int) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 ORDER BY id`
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list tasks", err)
	}
	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to scan tasks", err)
	}
	return tasks, nil
}

// Create persists a new task owned by userID.
func (s *PGService) Create(ctx context.Context, userID int, req TaskRequest) (*Task, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	task := &Task{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		OwnerID:     userID,
	}
	query := `INSERT INTO tasks (title, description, priority, user_id)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, created_at`
	err := s.db.QueryRow(ctx, query, task.Title, task.Description, task.Priority, userID).
		Scan(&task.ID, &task.CreatedAt)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to create task", err)
	}
	return task, nil
}

// Get returns the task with taskID, distinguishing a missing id from an id
// owned by another user.
func (s *PGService) Get(ctx context.Context, taskID, userID int) (*Task, error) {
	var t Task
	// Fetch by id alone first so a foreign task surfaces as Forbidden
	// rather than NotFound.
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	err := s.db.QueryRow(ctx, query, taskID).
		Scan(&t.ID, &t.Title, &t.Description, &t.Priority, &t.CreatedAt, &t.OwnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("task not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get task", err)
	}
	if t.OwnerID != userID {
		return nil, apperror.NewForbiddenError("task belongs to another user", nil)
	}
	return &t, nil
}

// Update overwrites the three mutable fields of an owned task.
func (s *PGService) Update(ctx context.Context, taskID, userID int, req TaskRequest) (*Task, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	// Ownership check up front so the error distinguishes NotFound from
	// Forbidden; the UPDATE below is additionally scoped by user_id.
	if _, err := s.Get(ctx, taskID, userID); err != nil {
		return nil, err
	}

	var t Task
	query := `UPDATE tasks
	          SET title = $1, description = $2, priority = $3
	          WHERE id = $4 AND user_id = $5
	          RETURNING ` + taskColumns
	err := s.db.QueryRow(ctx, query, req.Title, req.Description, req.Priority, taskID, userID).
		Scan(&t.ID, &t.Title, &t.Description, &t.Priority, &t.CreatedAt, &t.OwnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The task vanished between the check and the update.
			return nil, apperror.NewNotFoundError("task not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to update task", err)
	}
	return &t, nil
}

// Delete removes an owned task.
func (s *PGService) Delete(ctx context.Context, taskID, userID int) error {
	if _, err := s.Get(ctx, taskID, userID); err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, taskID, userID)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete task", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("task not found", nil)
	}
	return nil
}

// Search filters the user's task list by a case-insensitive substring match
// on title or description.
func (s *PGService) Search(ctx context.Context, userID int, query string) ([]Task, error) {
	if query == "" {
		return s.List(ctx, userID)
	}

	sql := `SELECT ` + taskColumns + ` FROM tasks
	        WHERE user_id = $1
	          AND (title ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')
	        ORDER BY id`
	rows, err := s.db.Query(ctx, sql, userID, query)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to search tasks", err)
	}
	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to scan tasks", err)
	}
	return tasks, nil
}

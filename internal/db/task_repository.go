package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/diazdennis/task-board-next/internal/models"
)

// defines methods for task db operations
type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id string) (*models.Task, error)
	ListByBoardID(ctx context.Context, boardID string) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id string) error
}

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `INSERT INTO tasks (id, board_id, title, description, status, priority, assigned_to, due_date, created_at, updated_at)
	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(
		ctx, query, task.ID, task.BoardID, task.Title, task.Description, task.Status,
		task.Priority, task.AssignedTo, task.DueDate, task.CreatedAt, task.UpdatedAt)
	return err
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	query := `SELECT id, board_id, title, description, status, priority, assigned_to, due_date, created_at, updated_at
	 FROM tasks WHERE id = $1`
	task := &models.Task{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID, &task.BoardID, &task.Title, &task.Description, &task.Status,
		&task.Priority, &task.AssignedTo, &task.DueDate, &task.CreatedAt, &task.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

// ListByBoardID returns the board's tasks newest first. An unknown
// board id yields an empty list, not an error.
func (r *TaskRepository) ListByBoardID(ctx context.Context, boardID string) ([]*models.Task, error) {
	query := `SELECT id, board_id, title, description, status, priority, assigned_to, due_date, created_at, updated_at
	 FROM tasks WHERE board_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		task := &models.Task{}
		if err := rows.Scan(
			&task.ID, &task.BoardID, &task.Title, &task.Description, &task.Status,
			&task.Priority, &task.AssignedTo, &task.DueDate, &task.CreatedAt, &task.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `UPDATE tasks SET title = $1, description = $2, status = $3, priority = $4,
	 assigned_to = $5, due_date = $6, updated_at = $7 WHERE id = $8`
	res, err := r.db.ExecContext(
		ctx, query, task.Title, task.Description, task.Status, task.Priority,
		task.AssignedTo, task.DueDate, task.UpdatedAt, task.ID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/diazdennis/task-board-next/internal/models"
)

// defines methods for board db operations
type BoardRepositoryInterface interface {
	Create(ctx context.Context, board *models.Board) error
	GetByID(ctx context.Context, id string) (*models.Board, error)
	List(ctx context.Context) ([]*models.Board, error)
	DeleteCascade(ctx context.Context, id string) (int, error)
}

type BoardRepository struct {
	db *sql.DB
}

func NewBoardRepository(db *sql.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

func (r *BoardRepository) Create(ctx context.Context, board *models.Board) error {
	query := `INSERT INTO boards (id, name, description, color, created_at, updated_at)
	 VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(
		ctx, query, board.ID, board.Name, board.Description, board.Color,
		board.CreatedAt, board.UpdatedAt)
	return err
}

func (r *BoardRepository) GetByID(ctx context.Context, id string) (*models.Board, error) {
	query := `SELECT id, name, description, color, created_at, updated_at
	 FROM boards WHERE id = $1`
	board := &models.Board{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&board.ID, &board.Name, &board.Description, &board.Color,
		&board.CreatedAt, &board.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return board, nil
}

func (r *BoardRepository) List(ctx context.Context) ([]*models.Board, error) {
	query := `SELECT id, name, description, color, created_at, updated_at
	 FROM boards ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	boards := []*models.Board{}
	for rows.Next() {
		board := &models.Board{}
		if err := rows.Scan(
			&board.ID, &board.Name, &board.Description, &board.Color,
			&board.CreatedAt, &board.UpdatedAt,
		); err != nil {
			return nil, err
		}
		boards = append(boards, board)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return boards, nil
}

// DeleteCascade removes the board and all of its tasks in one
// transaction and reports how many tasks were removed. Returns
// ErrNotFound when the board does not exist; a second delete of the
// same id is therefore an error, not a no-op.
func (r *BoardRepository) DeleteCascade(ctx context.Context, id string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM boards WHERE id = $1)`, id).Scan(&exists); err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrNotFound
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE board_id = $1`, id)
	if err != nil {
		return 0, err
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM boards WHERE id = $1`, id); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(removed), nil
}

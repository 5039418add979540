// AngelaMos | 2026
// repository.go

package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pierkoo/flasktaskr/internal/core"
)

type Repository interface {
	Create(ctx context.Context, t *Task) error
	GetByIDForUpdate(ctx context.Context, id int64) (*Task, error)
	ListByStatus(ctx context.Context, status Status) ([]Listed, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	Delete(ctx context.Context, id int64) error
	CountByStatus(ctx context.Context) (Counts, error)
	// WithTx runs fn against a repository bound to one transaction.
	WithTx(ctx context.Context, fn func(Repository) error) error
}

type repository struct {
	db core.DBTX
	// conn is nil for a repository already bound to a transaction.
	conn *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db, conn: db}
}

func (r *repository) WithTx(ctx context.Context, fn func(Repository) error) error {
	if r.conn == nil {
		return fn(r)
	}

	return core.InTx(ctx, r.conn, func(tx *sqlx.Tx) error {
		return fn(&repository{db: tx})
	})
}

func (r *repository) Create(ctx context.Context, t *Task) error {
	query := `
		INSERT INTO tasks (name, due_date, priority, posted_date, status, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.db.QueryRowxContext(ctx, query,
		t.Name,
		t.DueDate,
		t.Priority,
		t.PostedDate,
		t.Status,
		t.UserID,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	return nil
}

const selectTask = `
	SELECT id, name, due_date, priority, posted_date, status, user_id
	FROM tasks
	WHERE id = $1`

// GetByIDForUpdate locks the row until the surrounding transaction ends, so
// the ownership check and the write see the same row.
func (r *repository) GetByIDForUpdate(ctx context.Context, id int64) (*Task, error) {
	return r.get(ctx, selectTask+" FOR UPDATE", id)
}

func (r *repository) get(ctx context.Context, query string, id int64) (*Task, error) {
	var t Task
	err := r.db.GetContext(ctx, &t, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get task %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}

	return &t, nil
}

// ListByStatus orders by due date, then id so equal dates keep insertion
// order.
func (r *repository) ListByStatus(ctx context.Context, status Status) ([]Listed, error) {
	query := `
		SELECT t.id, t.name, t.due_date, t.priority, t.posted_date, t.status,
		       t.user_id, u.name AS owner_name
		FROM tasks t
		JOIN users u ON u.id = t.user_id
		WHERE t.status = $1
		ORDER BY t.due_date ASC, t.id ASC`

	var tasks []Listed
	if err := r.db.SelectContext(ctx, &tasks, query, status); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	query := `UPDATE tasks SET status = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update task status: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM tasks WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete task: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) CountByStatus(ctx context.Context) (Counts, error) {
	query := `
		SELECT COUNT(*) FILTER (WHERE status = 1) AS open,
		       COUNT(*) FILTER (WHERE status = 0) AS closed
		FROM tasks`

	var c Counts
	if err := r.db.GetContext(ctx, &c, query); err != nil {
		return Counts{}, fmt.Errorf("count tasks: %w", err)
	}

	return c, nil
}

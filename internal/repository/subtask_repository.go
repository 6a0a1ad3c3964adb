package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/task-service/internal/domain"
)

// SubtaskRepository stores checklist items of a task.
type SubtaskRepository interface {
	Create(ctx context.Context, subtask *domain.Subtask) error
	Update(ctx context.Context, subtask *domain.Subtask) error
	GetByID(ctx context.Context, id string) (*domain.Subtask, error)
	ListByTask(ctx context.Context, taskID string) ([]domain.Subtask, error)
	// Delete removes the subtask and detaches its time logs in one unit.
	Delete(ctx context.Context, id string) error
	// SyncParentDeadline rewrites the parent-deadline mirror of every subtask of taskID.
	SyncParentDeadline(ctx context.Context, taskID string, deadline *time.Time) error
}

type subtaskRepository struct {
	pool *pgxpool.Pool
}

// NewSubtaskRepository builds repository.
func NewSubtaskRepository(pool *pgxpool.Pool) SubtaskRepository {
	return &subtaskRepository{pool: pool}
}

const subtaskColumns = `id, name, sequence, parent_task_id, assignee_id, is_done, deadline, description, parent_deadline, created_at, updated_at`

func (r *subtaskRepository) Create(ctx context.Context, subtask *domain.Subtask) error {
	const query = `
        INSERT INTO subtasks (name, sequence, parent_task_id, assignee_id, is_done, deadline, description, parent_deadline)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		subtask.Name,
		subtask.Sequence,
		subtask.ParentTaskID,
		subtask.AssigneeID,
		subtask.IsDone,
		subtask.Deadline,
		subtask.Description,
		subtask.ParentDeadline,
	).Scan(&subtask.ID, &subtask.CreatedAt, &subtask.UpdatedAt)
}

func (r *subtaskRepository) Update(ctx context.Context, subtask *domain.Subtask) error {
	const query = `
        UPDATE subtasks SET name=$1, sequence=$2, parent_task_id=$3, assignee_id=$4, is_done=$5,
            deadline=$6, description=$7, parent_deadline=$8, updated_at=NOW()
        WHERE id=$9
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		subtask.Name,
		subtask.Sequence,
		subtask.ParentTaskID,
		subtask.AssigneeID,
		subtask.IsDone,
		subtask.Deadline,
		subtask.Description,
		subtask.ParentDeadline,
		subtask.ID,
	).Scan(&subtask.UpdatedAt)
}

func (r *subtaskRepository) GetByID(ctx context.Context, id string) (*domain.Subtask, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+subtaskColumns+` FROM subtasks WHERE id=$1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list, err := scanSubtasks(rows)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &list[0], nil
}

func (r *subtaskRepository) ListByTask(ctx context.Context, taskID string) ([]domain.Subtask, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+subtaskColumns+` FROM subtasks WHERE parent_task_id=$1 ORDER BY sequence, id`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubtasks(rows)
}

func (r *subtaskRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, detachSubtaskQuery, id, domain.ComputeDisplayName(nil, "")); err != nil {
		return err
	}
	cmd, err := tx.Exec(ctx, `DELETE FROM subtasks WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return tx.Commit(ctx)
}

func (r *subtaskRepository) SyncParentDeadline(ctx context.Context, taskID string, deadline *time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE subtasks SET parent_deadline=$1, updated_at=NOW() WHERE parent_task_id=$2`, deadline, taskID)
	return err
}

func scanSubtasks(rows pgx.Rows) ([]domain.Subtask, error) {
	var result []domain.Subtask
	for rows.Next() {
		var st domain.Subtask
		if err := rows.Scan(
			&st.ID,
			&st.Name,
			&st.Sequence,
			&st.ParentTaskID,
			&st.AssigneeID,
			&st.IsDone,
			&st.Deadline,
			&st.Description,
			&st.ParentDeadline,
			&st.CreatedAt,
			&st.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, st)
	}
	return result, rows.Err()
}

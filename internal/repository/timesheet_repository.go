package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/task-service/internal/domain"
)

// TimesheetFilter narrows timesheet listings.
type TimesheetFilter struct {
	TaskID   *string
	UserID   *string
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

// TimesheetRepository persists time log entries.
type TimesheetRepository interface {
	Create(ctx context.Context, line *domain.TimesheetLine) error
	Update(ctx context.Context, line *domain.TimesheetLine) error
	GetByID(ctx context.Context, id string) (*domain.TimesheetLine, error)
	List(ctx context.Context, filter TimesheetFilter) ([]domain.TimesheetLine, error)
	Delete(ctx context.Context, id string) error
	// RefreshSubtask rewrites the display name of lines linked to subtaskID.
	RefreshSubtask(ctx context.Context, subtaskID, name string) error
	// DetachSubtask unlinks lines from a subtask that left their task and recomputes their display name.
	DetachSubtask(ctx context.Context, subtaskID string) error
}

type timesheetRepository struct {
	pool *pgxpool.Pool
}

// NewTimesheetRepository builds repository.
func NewTimesheetRepository(pool *pgxpool.Pool) TimesheetRepository {
	return &timesheetRepository{pool: pool}
}

const timesheetColumns = `id, description, task_id, subtask_id, user_id, date, duration_hours, display_name, company_id, created_at, updated_at`

func (r *timesheetRepository) Create(ctx context.Context, line *domain.TimesheetLine) error {
	const query = `
        INSERT INTO timesheet_lines (description, task_id, subtask_id, user_id, date, duration_hours, display_name, company_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		line.Description,
		line.TaskID,
		line.SubtaskID,
		line.UserID,
		line.Date,
		line.DurationHours,
		line.DisplayName,
		line.CompanyID,
	).Scan(&line.ID, &line.CreatedAt, &line.UpdatedAt)
}

func (r *timesheetRepository) Update(ctx context.Context, line *domain.TimesheetLine) error {
	const query = `
        UPDATE timesheet_lines SET description=$1, task_id=$2, subtask_id=$3, user_id=$4, date=$5,
            duration_hours=$6, display_name=$7, updated_at=NOW()
        WHERE id=$8
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		line.Description,
		line.TaskID,
		line.SubtaskID,
		line.UserID,
		line.Date,
		line.DurationHours,
		line.DisplayName,
		line.ID,
	).Scan(&line.UpdatedAt)
}

func (r *timesheetRepository) GetByID(ctx context.Context, id string) (*domain.TimesheetLine, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+timesheetColumns+` FROM timesheet_lines WHERE id=$1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	lines, err := scanTimesheetLines(rows)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &lines[0], nil
}

func (r *timesheetRepository) List(ctx context.Context, filter TimesheetFilter) ([]domain.TimesheetLine, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.TaskID != nil {
		args = append(args, *filter.TaskID)
		clauses = append(clauses, fmt.Sprintf("task_id=$%d", len(args)))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		clauses = append(clauses, fmt.Sprintf("date >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		clauses = append(clauses, fmt.Sprintf("date <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM timesheet_lines WHERE %s ORDER BY date DESC, created_at DESC, id DESC LIMIT %d OFFSET %d`,
		timesheetColumns, strings.Join(clauses, " AND "), limit, offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTimesheetLines(rows)
}

func (r *timesheetRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM timesheet_lines WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *timesheetRepository) RefreshSubtask(ctx context.Context, subtaskID, name string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE timesheet_lines SET display_name=$1, updated_at=NOW() WHERE subtask_id=$2`, name, subtaskID)
	return err
}

const detachSubtaskQuery = `
        UPDATE timesheet_lines
        SET subtask_id=NULL,
            display_name=COALESCE(NULLIF(description, ''), $2),
            updated_at=NOW()
        WHERE subtask_id=$1`

func (r *timesheetRepository) DetachSubtask(ctx context.Context, subtaskID string) error {
	_, err := r.pool.Exec(ctx, detachSubtaskQuery, subtaskID, domain.ComputeDisplayName(nil, ""))
	return err
}

func scanTimesheetLines(rows pgx.Rows) ([]domain.TimesheetLine, error) {
	var result []domain.TimesheetLine
	for rows.Next() {
		var line domain.TimesheetLine
		if err := rows.Scan(
			&line.ID,
			&line.Description,
			&line.TaskID,
			&line.SubtaskID,
			&line.UserID,
			&line.Date,
			&line.DurationHours,
			&line.DisplayName,
			&line.CompanyID,
			&line.CreatedAt,
			&line.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, line)
	}
	return result, rows.Err()
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/task-service/internal/domain"
)

// TeamHistoryRepository stores team change-tracking entries.
type TeamHistoryRepository interface {
	Create(ctx context.Context, history *domain.TeamHistory) error
	ListByTeam(ctx context.Context, teamID string) ([]domain.TeamHistory, error)
}

type teamHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewTeamHistoryRepository builds repository.
func NewTeamHistoryRepository(pool *pgxpool.Pool) TeamHistoryRepository {
	return &teamHistoryRepository{pool: pool}
}

func (r *teamHistoryRepository) Create(ctx context.Context, history *domain.TeamHistory) error {
	const query = `
        INSERT INTO team_history (team_id, changed_by_id, field, old_value, new_value)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		history.TeamID,
		history.ChangedByID,
		history.Field,
		history.OldValue,
		history.NewValue,
	).Scan(&history.ID, &history.CreatedAt)
}

func (r *teamHistoryRepository) ListByTeam(ctx context.Context, teamID string) ([]domain.TeamHistory, error) {
	const query = `
        SELECT id, team_id, changed_by_id, field, old_value, new_value, created_at
        FROM team_history WHERE team_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TeamHistory
	for rows.Next() {
		var history domain.TeamHistory
		if err := rows.Scan(
			&history.ID,
			&history.TeamID,
			&history.ChangedByID,
			&history.Field,
			&history.OldValue,
			&history.NewValue,
			&history.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, history)
	}
	return result, rows.Err()
}

package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/task-service/internal/domain"
)

// TeamFilter narrows team listings.
type TeamFilter struct {
	CompanyID       *string
	ParentTeamID    *string
	IncludeInactive bool
}

// TeamRepository manages persistence for teams.
type TeamRepository interface {
	Create(ctx context.Context, team *domain.Team) error
	Update(ctx context.Context, team *domain.Team) error
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	List(ctx context.Context, filter TeamFilter) ([]domain.Team, error)
	ParentOf(ctx context.Context, id string) (*string, error)
	SetTaskCount(ctx context.Context, id string, count int) error
	// Delete removes the team and its whole subtree; owned tasks lose their team reference.
	Delete(ctx context.Context, id string) ([]string, error)
}

type teamRepository struct {
	pool *pgxpool.Pool
}

// NewTeamRepository constructs repository.
func NewTeamRepository(pool *pgxpool.Pool) TeamRepository {
	return &teamRepository{pool: pool}
}

const teamColumns = `id, name, sequence, active, color, manager_id, parent_team_id, company_id, description, task_count, created_at, updated_at`

func (r *teamRepository) Create(ctx context.Context, team *domain.Team) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        INSERT INTO teams (name, sequence, active, color, manager_id, parent_team_id, company_id, description, task_count)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, query,
		team.Name,
		team.Sequence,
		team.Active,
		team.Color,
		team.ManagerID,
		team.ParentTeamID,
		team.CompanyID,
		team.Description,
		team.TaskCount,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt); err != nil {
		return err
	}
	if err := replaceMembers(ctx, tx, team.ID, team.MemberIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *teamRepository) Update(ctx context.Context, team *domain.Team) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        UPDATE teams SET name=$1, sequence=$2, active=$3, color=$4, manager_id=$5, parent_team_id=$6,
            company_id=$7, description=$8, updated_at=NOW()
        WHERE id=$9
        RETURNING updated_at`
	if err := tx.QueryRow(ctx, query,
		team.Name,
		team.Sequence,
		team.Active,
		team.Color,
		team.ManagerID,
		team.ParentTeamID,
		team.CompanyID,
		team.Description,
		team.ID,
	).Scan(&team.UpdatedAt); err != nil {
		return err
	}
	if err := replaceMembers(ctx, tx, team.ID, team.MemberIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func replaceMembers(ctx context.Context, tx pgx.Tx, teamID string, memberIDs []string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM team_members WHERE team_id=$1`, teamID); err != nil {
		return fmt.Errorf("clear members: %w", err)
	}
	for _, userID := range memberIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO team_members (team_id, user_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`, teamID, userID); err != nil {
			return fmt.Errorf("add member %s: %w", userID, err)
		}
	}
	return nil
}

func (r *teamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+teamColumns+` FROM teams WHERE id=$1`, id)
	if err != nil {
		return nil, err
	}
	teams, err := scanTeams(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return nil, pgx.ErrNoRows
	}
	team := &teams[0]

	if team.MemberIDs, err = r.collectIDs(ctx,
		`SELECT user_id FROM team_members WHERE team_id=$1 ORDER BY user_id`, id); err != nil {
		return nil, err
	}
	if team.ChildTeamIDs, err = r.collectIDs(ctx,
		`SELECT id FROM teams WHERE parent_team_id=$1 ORDER BY sequence, name`, id); err != nil {
		return nil, err
	}
	return team, nil
}

func (r *teamRepository) collectIDs(ctx context.Context, query string, arg any) ([]string, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *teamRepository) List(ctx context.Context, filter TeamFilter) ([]domain.Team, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if !filter.IncludeInactive {
		clauses = append(clauses, "active=TRUE")
	}
	if filter.CompanyID != nil {
		args = append(args, *filter.CompanyID)
		clauses = append(clauses, fmt.Sprintf("company_id=$%d", len(args)))
	}
	if filter.ParentTeamID != nil {
		args = append(args, *filter.ParentTeamID)
		clauses = append(clauses, fmt.Sprintf("parent_team_id=$%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM teams WHERE %s ORDER BY sequence, name`,
		teamColumns, strings.Join(clauses, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTeams(rows)
}

func (r *teamRepository) ParentOf(ctx context.Context, id string) (*string, error) {
	var parent *string
	if err := r.pool.QueryRow(ctx, `SELECT parent_team_id FROM teams WHERE id=$1`, id).Scan(&parent); err != nil {
		return nil, err
	}
	return parent, nil
}

func (r *teamRepository) SetTaskCount(ctx context.Context, id string, count int) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE teams SET task_count=$1 WHERE id=$2`, count, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *teamRepository) Delete(ctx context.Context, id string) ([]string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const subtree = `
        WITH RECURSIVE tree AS (
            SELECT id FROM teams WHERE id=$1
            UNION
            SELECT t.id FROM teams t JOIN tree ON t.parent_team_id = tree.id
        )
        SELECT id FROM tree`
	rows, err := tx.Query(ctx, subtree, id)
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var teamID string
		if err := rows.Scan(&teamID); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, teamID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, pgx.ErrNoRows
	}

	if _, err := tx.Exec(ctx, `UPDATE tasks SET team_id=NULL, updated_at=NOW() WHERE team_id = ANY($1::uuid[])`, ids); err != nil {
		return nil, fmt.Errorf("release tasks: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM team_members WHERE team_id = ANY($1::uuid[])`, ids); err != nil {
		return nil, fmt.Errorf("delete members: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM team_history WHERE team_id = ANY($1::uuid[])`, ids); err != nil {
		return nil, fmt.Errorf("delete history: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM teams WHERE id = ANY($1::uuid[])`, ids); err != nil {
		return nil, err
	}
	return ids, tx.Commit(ctx)
}

func scanTeams(rows pgx.Rows) ([]domain.Team, error) {
	var result []domain.Team
	for rows.Next() {
		var team domain.Team
		if err := rows.Scan(
			&team.ID,
			&team.Name,
			&team.Sequence,
			&team.Active,
			&team.Color,
			&team.ManagerID,
			&team.ParentTeamID,
			&team.CompanyID,
			&team.Description,
			&team.TaskCount,
			&team.CreatedAt,
			&team.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, team)
	}
	return result, rows.Err()
}

package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/repository"
	apperrors "github.com/spec-kit/task-service/pkg/util/errorutil"
)

// TeamService manages teams, their hierarchy and change history.
type TeamService struct {
	teams   repository.TeamRepository
	users   repository.UserRepository
	history repository.TeamHistoryRepository
	clock   Clock
	logger  *zap.Logger
}

// TeamDependencies bundles collaborators for the team service.
type TeamDependencies struct {
	TeamRepo    repository.TeamRepository
	UserRepo    repository.UserRepository
	HistoryRepo repository.TeamHistoryRepository
	Clock       Clock
	Logger      *zap.Logger
}

// TeamInput is the writable shape of a team.
type TeamInput struct {
	Name         string
	Sequence     *int
	Active       *bool
	Color        int
	ManagerID    string
	MemberIDs    []string
	ParentTeamID *string
	CompanyID    *string
	Description  string
}

// NewTeamService constructs the service.
func NewTeamService(deps TeamDependencies) *TeamService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeamService{
		teams:   deps.TeamRepo,
		users:   deps.UserRepo,
		history: deps.HistoryRepo,
		clock:   deps.Clock,
		logger:  logger,
	}
}

// CreateTeam stores a team for the acting user's company unless another is given.
func (s *TeamService) CreateTeam(ctx context.Context, actor *domain.User, input TeamInput) (*domain.Team, error) {
	env := envFor(actor, s.clock)
	team := domain.NewTeam(env, "", "")
	if err := s.apply(ctx, team, input); err != nil {
		return nil, err
	}
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, err
	}
	return s.GetTeam(ctx, team.ID)
}

// GetTeam loads a team with its members, child teams and task count.
func (s *TeamService) GetTeam(ctx context.Context, id string) (*domain.Team, error) {
	team, err := s.teams.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("team", map[string]any{"id": id})
		}
		return nil, err
	}
	return team, nil
}

// ListTeams lists teams in display order.
func (s *TeamService) ListTeams(ctx context.Context, filter repository.TeamFilter) ([]domain.Team, error) {
	return s.teams.List(ctx, filter)
}

// UpdateTeam rewrites a team and records name or manager changes.
func (s *TeamService) UpdateTeam(ctx context.Context, actor *domain.User, id string, input TeamInput) (*domain.Team, error) {
	team, err := s.GetTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *team
	if err := s.apply(ctx, team, input); err != nil {
		return nil, err
	}
	if err := s.teams.Update(ctx, team); err != nil {
		return nil, err
	}
	for _, entry := range domain.TrackTeamChanges(envFor(actor, s.clock), &before, team) {
		if err := s.history.Create(ctx, &entry); err != nil {
			return nil, err
		}
	}
	return s.GetTeam(ctx, id)
}

// DeleteTeam removes a team with its sub-teams. Their tasks keep existing without a team.
func (s *TeamService) DeleteTeam(ctx context.Context, id string) ([]string, error) {
	removed, err := s.teams.Delete(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("team", map[string]any{"id": id})
		}
		return nil, err
	}
	s.logger.Info("team deleted", zap.String("team_id", id), zap.Strings("removed", removed))
	return removed, nil
}

// History lists recorded changes of a team, oldest first.
func (s *TeamService) History(ctx context.Context, id string) ([]domain.TeamHistory, error) {
	if _, err := s.GetTeam(ctx, id); err != nil {
		return nil, err
	}
	return s.history.ListByTeam(ctx, id)
}

// CreateTaskAction describes the "new task" shortcut for a team.
func (s *TeamService) CreateTaskAction(ctx context.Context, id string) (*domain.ActionDescriptor, error) {
	team, err := s.GetTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	action := team.CreateTaskAction()
	return &action, nil
}

// ViewTasksAction describes the "team tasks" shortcut for a team.
func (s *TeamService) ViewTasksAction(ctx context.Context, id string) (*domain.ActionDescriptor, error) {
	team, err := s.GetTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	action := team.ViewTasksAction()
	return &action, nil
}

func (s *TeamService) apply(ctx context.Context, team *domain.Team, input TeamInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return apperrors.NewValidationError("team name is required", map[string]any{"name": "required"})
	}
	if err := s.requireInternal(ctx, "manager_id", input.ManagerID); err != nil {
		return err
	}
	members, err := s.internalMembers(ctx, input.MemberIDs)
	if err != nil {
		return err
	}
	if input.ParentTeamID != nil {
		if _, err := s.teams.GetByID(ctx, *input.ParentTeamID); err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.NewValidationError("parent team does not exist",
					map[string]any{"parent_team_id": *input.ParentTeamID})
			}
			return err
		}
	}
	parentOf := func(teamID string) (*string, error) { return s.teams.ParentOf(ctx, teamID) }
	if err := domain.CheckHierarchy(team.ID, input.ParentTeamID, parentOf); err != nil {
		return err
	}

	team.Name = name
	if input.Sequence != nil {
		team.Sequence = *input.Sequence
	}
	if input.Active != nil {
		team.Active = *input.Active
	}
	team.Color = input.Color
	team.ManagerID = input.ManagerID
	team.MemberIDs = members
	team.ParentTeamID = input.ParentTeamID
	if input.CompanyID != nil {
		team.CompanyID = *input.CompanyID
	}
	team.Description = input.Description
	return nil
}

// internalMembers dedupes ids, keeping first-seen order, and requires each to
// name an existing internal user.
func (s *TeamService) internalMembers(ctx context.Context, ids []string) ([]string, error) {
	members := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		members = append(members, id)
	}
	if len(members) == 0 {
		return members, nil
	}

	users, err := s.users.ListByIDs(ctx, members)
	if err != nil {
		return nil, err
	}
	found := make(map[string]*domain.User, len(users))
	for i := range users {
		found[users[i].ID] = &users[i]
	}
	for _, id := range members {
		user, ok := found[id]
		if !ok {
			return nil, apperrors.NewValidationError("user does not exist", map[string]any{"member_ids": id})
		}
		if !user.Internal() {
			return nil, apperrors.NewValidationError("portal users cannot be team managers or members",
				map[string]any{"member_ids": id})
		}
	}
	return members, nil
}

func (s *TeamService) requireInternal(ctx context.Context, field, userID string) error {
	if userID == "" {
		return apperrors.NewValidationError(field+" is required", map[string]any{field: "required"})
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewValidationError("user does not exist", map[string]any{field: userID})
		}
		return err
	}
	if !user.Internal() {
		return apperrors.NewValidationError("portal users cannot be team managers or members",
			map[string]any{field: userID})
	}
	return nil
}

package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-service/internal/api/dto"
	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/repository"
	"github.com/spec-kit/task-service/internal/service"
)

// TeamsHandler manages team endpoints.
type TeamsHandler struct {
	service *service.TeamService
}

// NewTeamsHandler constructs handler.
func NewTeamsHandler(teamService *service.TeamService) *TeamsHandler {
	return &TeamsHandler{service: teamService}
}

// CreateTeam POST /teams.
func (h *TeamsHandler) CreateTeam(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.TeamRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	team, err := h.service.CreateTeam(c.UserContext(), user, teamInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": teamResponse(team)})
}

// ListTeams GET /teams.
func (h *TeamsHandler) ListTeams(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	parentID, err := optionalIDQuery(c, "parent_team_id")
	if err != nil {
		return err
	}
	company := user.CompanyID
	teams, err := h.service.ListTeams(c.UserContext(), repository.TeamFilter{
		CompanyID:       &company,
		ParentTeamID:    parentID,
		IncludeInactive: c.QueryBool("include_inactive", false),
	})
	if err != nil {
		return err
	}
	items := make([]dto.TeamResponse, 0, len(teams))
	for i := range teams {
		items = append(items, teamResponse(&teams[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTeam GET /teams/:id.
func (h *TeamsHandler) GetTeam(c *fiber.Ctx) error {
	id, err := pathID(c, "team")
	if err != nil {
		return err
	}
	team, err := h.service.GetTeam(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": teamResponse(team)})
}

// UpdateTeam PUT /teams/:id.
func (h *TeamsHandler) UpdateTeam(c *fiber.Ctx) error {
	id, err := pathID(c, "team")
	if err != nil {
		return err
	}
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.TeamRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	team, err := h.service.UpdateTeam(c.UserContext(), user, id, teamInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": teamResponse(team)})
}

// DeleteTeam DELETE /teams/:id.
func (h *TeamsHandler) DeleteTeam(c *fiber.Ctx) error {
	id, err := pathID(c, "team")
	if err != nil {
		return err
	}
	removed, err := h.service.DeleteTeam(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"removed_team_ids": removed}})
}

// History GET /teams/:id/history.
func (h *TeamsHandler) History(c *fiber.Ctx) error {
	id, err := pathID(c, "team")
	if err != nil {
		return err
	}
	entries, err := h.service.History(c.UserContext(), id)
	if err != nil {
		return err
	}
	items := make([]dto.TeamHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.TeamHistoryResponse{
			ID:          entry.ID,
			Field:       entry.Field,
			OldValue:    entry.OldValue,
			NewValue:    entry.NewValue,
			ChangedByID: entry.ChangedByID,
			CreatedAt:   entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateTaskAction POST /teams/:id/actions/create-task.
func (h *TeamsHandler) CreateTaskAction(c *fiber.Ctx) error {
	id, err := pathID(c, "team")
	if err != nil {
		return err
	}
	action, err := h.service.CreateTaskAction(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": actionResponse(action)})
}

// ViewTasksAction POST /teams/:id/actions/view-tasks.
func (h *TeamsHandler) ViewTasksAction(c *fiber.Ctx) error {
	id, err := pathID(c, "team")
	if err != nil {
		return err
	}
	action, err := h.service.ViewTasksAction(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": actionResponse(action)})
}

func teamInput(req dto.TeamRequest) service.TeamInput {
	return service.TeamInput{
		Name:         req.Name,
		Sequence:     req.Sequence,
		Active:       req.Active,
		Color:        req.Color,
		ManagerID:    req.ManagerID,
		MemberIDs:    req.MemberIDs,
		ParentTeamID: req.ParentTeamID,
		CompanyID:    req.CompanyID,
		Description:  req.Description,
	}
}

func teamResponse(team *domain.Team) dto.TeamResponse {
	members := team.MemberIDs
	if members == nil {
		members = []string{}
	}
	children := team.ChildTeamIDs
	if children == nil {
		children = []string{}
	}
	return dto.TeamResponse{
		ID:           team.ID,
		Name:         team.Name,
		Sequence:     team.Sequence,
		Active:       team.Active,
		Color:        team.Color,
		ManagerID:    team.ManagerID,
		MemberIDs:    members,
		ParentTeamID: team.ParentTeamID,
		ChildTeamIDs: children,
		CompanyID:    team.CompanyID,
		Description:  team.Description,
		TaskCount:    team.TaskCount,
		CreatedAt:    team.CreatedAt,
		UpdatedAt:    team.UpdatedAt,
	}
}

func actionResponse(action *domain.ActionDescriptor) dto.ActionResponse {
	filter := make([]dto.FilterResponse, 0, len(action.Filter))
	for _, clause := range action.Filter {
		filter = append(filter, dto.FilterResponse{Field: clause.Field, Operator: clause.Operator, Value: clause.Value})
	}
	return dto.ActionResponse{
		Name:      action.Name,
		Target:    action.Target,
		ViewModes: action.ViewModes,
		Filter:    filter,
		Defaults:  action.Defaults,
	}
}

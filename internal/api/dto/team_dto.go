package dto

import (
	"time"

	"github.com/spec-kit/task-service/internal/domain"
)

// TeamRequest is the create/update payload of a team.
type TeamRequest struct {
	Name         string   `json:"name" validate:"required,max=255"`
	Sequence     *int     `json:"sequence"`
	Active       *bool    `json:"active"`
	Color        int      `json:"color" validate:"min=0,max=11"`
	ManagerID    string   `json:"manager_id" validate:"required,uuid"`
	MemberIDs    []string `json:"member_ids" validate:"omitempty,dive,uuid"`
	ParentTeamID *string  `json:"parent_team_id" validate:"omitempty,uuid"`
	CompanyID    *string  `json:"company_id"`
	Description  string   `json:"description"`
}

// TeamResponse represents a team.
type TeamResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Sequence     int       `json:"sequence"`
	Active       bool      `json:"active"`
	Color        int       `json:"color"`
	ManagerID    string    `json:"manager_id"`
	MemberIDs    []string  `json:"member_ids"`
	ParentTeamID *string   `json:"parent_team_id"`
	ChildTeamIDs []string  `json:"child_team_ids"`
	CompanyID    string    `json:"company_id"`
	Description  string    `json:"description"`
	TaskCount    int       `json:"task_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TeamHistoryResponse represents one recorded team change.
type TeamHistoryResponse struct {
	ID          string                  `json:"id"`
	Field       domain.TeamTrackedField `json:"field"`
	OldValue    string                  `json:"old_value"`
	NewValue    string                  `json:"new_value"`
	ChangedByID *string                 `json:"changed_by_id"`
	CreatedAt   time.Time               `json:"created_at"`
}

// ActionResponse describes a navigation shortcut for clients.
type ActionResponse struct {
	Name      string            `json:"name"`
	Target    string            `json:"target"`
	ViewModes []domain.ViewMode `json:"view_modes"`
	Filter    []FilterResponse  `json:"filter"`
	Defaults  map[string]any    `json:"defaults"`
}

// FilterResponse is one clause of an action's record filter.
type FilterResponse struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

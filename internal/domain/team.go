package domain

import (
	"fmt"
	"time"

	apperrors "github.com/spec-kit/task-service/pkg/util/errorutil"
)

// Team is an organizational unit owning tasks, optionally nested under a parent team.
type Team struct {
	ID           string
	Name         string
	Sequence     int
	Active       bool
	Color        int
	ManagerID    string
	MemberIDs    []string
	ParentTeamID *string
	ChildTeamIDs []string
	CompanyID    string
	Description  string
	TaskCount    int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewTeam returns a team carrying the record defaults for env's company.
func NewTeam(env Env, name, managerID string) *Team {
	return &Team{
		Name:      name,
		Sequence:  DefaultSequence,
		Active:    true,
		ManagerID: managerID,
		CompanyID: env.CompanyID,
	}
}

// TaskCount counts the tasks referencing teamID.
func TaskCount(teamID string, tasks []Task) int {
	n := 0
	for _, t := range tasks {
		if t.TeamID != nil && *t.TeamID == teamID {
			n++
		}
	}
	return n
}

// ParentLookup resolves a team's parent reference.
type ParentLookup func(teamID string) (*string, error)

// CheckHierarchy rejects a parent assignment that would make teamID its own ancestor.
// teamID is empty for a team that does not exist yet.
func CheckHierarchy(teamID string, parentID *string, parentOf ParentLookup) error {
	if parentID == nil || teamID == "" {
		return nil
	}
	seen := map[string]struct{}{}
	current := *parentID
	for {
		if current == teamID {
			return apperrors.NewValidationError("You cannot create recursive team hierarchies.",
				map[string]any{"parent_team_id": *parentID})
		}
		if _, ok := seen[current]; ok {
			return fmt.Errorf("team hierarchy already contains a cycle at %s", current)
		}
		seen[current] = struct{}{}
		next, err := parentOf(current)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		current = *next
	}
}

// CreateTaskAction describes opening a task form pre-seeded with this team.
func (t *Team) CreateTaskAction() ActionDescriptor {
	return ActionDescriptor{
		Name:      "New Team Task",
		Target:    TargetTask,
		ViewModes: []ViewMode{ViewModeForm},
		Defaults:  t.taskDefaults(),
	}
}

// ViewTasksAction describes listing the tasks owned by this team.
func (t *Team) ViewTasksAction() ActionDescriptor {
	return ActionDescriptor{
		Name:      "Team Tasks",
		Target:    TargetTask,
		ViewModes: []ViewMode{ViewModeList, ViewModeKanban, ViewModeForm},
		Filter:    []FilterClause{{Field: "team_id", Operator: "=", Value: t.ID}},
		Defaults:  t.taskDefaults(),
	}
}

func (t *Team) taskDefaults() map[string]any {
	return map[string]any{
		"team_id":   t.ID,
		"task_type": string(TaskTypeTeam),
	}
}

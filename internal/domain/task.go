package domain

import "time"

// TaskType tags how a task is owned.
type TaskType string

const (
	TaskTypePersonal TaskType = "personal"
	TaskTypeTeam     TaskType = "team"
)

// Task is the aggregate owning subtasks and timesheet lines.
type Task struct {
	ID        string
	Name      string
	TeamID    *string
	TaskType  TaskType
	Deadline  *time.Time
	Progress  float64
	CompanyID string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Valid reports whether t is a known task type.
func (t TaskType) Valid() bool {
	return t == TaskTypePersonal || t == TaskTypeTeam
}

// TeamChange describes a move of a task between teams; either side may be nil.
type TeamChange struct {
	OldTeamID *string
	NewTeamID *string
}

// Affected returns the distinct team ids whose task count may have changed.
func (c TeamChange) Affected() []string {
	var ids []string
	if c.OldTeamID != nil {
		ids = append(ids, *c.OldTeamID)
	}
	if c.NewTeamID != nil && (c.OldTeamID == nil || *c.NewTeamID != *c.OldTeamID) {
		ids = append(ids, *c.NewTeamID)
	}
	return ids
}

// SameTeam compares two optional team references.
func SameTeam(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

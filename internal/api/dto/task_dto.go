package dto

import (
	"time"

	"github.com/spec-kit/task-service/internal/domain"
)

// TaskRequest is the create/update payload of a task.
type TaskRequest struct {
	Name     string          `json:"name" validate:"required,max=255"`
	TeamID   *string         `json:"team_id" validate:"omitempty,uuid"`
	TaskType domain.TaskType `json:"task_type" validate:"omitempty,oneof=personal team"`
	Deadline *time.Time      `json:"deadline"`
}

// TaskResponse represents a task.
type TaskResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	TeamID    *string         `json:"team_id"`
	TaskType  domain.TaskType `json:"task_type"`
	Deadline  *time.Time      `json:"deadline"`
	Progress  float64         `json:"progress"`
	CompanyID string          `json:"company_id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ProgressPreviewResponse reports stored progress and an uncommitted preview.
type ProgressPreviewResponse struct {
	TaskID   string   `json:"task_id"`
	Progress float64  `json:"progress"`
	Preview  *float64 `json:"preview"`
}

package dto

import "time"

// SubtaskRequest is the create/update payload of a subtask. Dates use YYYY-MM-DD.
type SubtaskRequest struct {
	ParentTaskID string  `json:"parent_task_id" validate:"omitempty,uuid"`
	Name         string  `json:"name" validate:"required,max=255"`
	Sequence     *int    `json:"sequence"`
	AssigneeID   *string `json:"assignee_id" validate:"omitempty,uuid"`
	IsDone       bool    `json:"is_done"`
	Deadline     string  `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
	Description  string  `json:"description"`
}

// SubtaskResponse represents a subtask.
type SubtaskResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Sequence       int        `json:"sequence"`
	ParentTaskID   string     `json:"parent_task_id"`
	AssigneeID     *string    `json:"assignee_id"`
	IsDone         bool       `json:"is_done"`
	Deadline       *string    `json:"deadline"`
	Description    string     `json:"description"`
	ParentDeadline *time.Time `json:"parent_deadline"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// SubtaskDeadlineCheckRequest is the editor state when a deadline changes.
type SubtaskDeadlineCheckRequest struct {
	ParentTaskID string `json:"parent_task_id" validate:"required,uuid"`
	Deadline     string `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
}

// WarningResponse is a non-blocking advisory.
type WarningResponse struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// SubtaskDoneRequest is the editor state when a done box is toggled.
// Siblings is optional; when absent the stored subtasks are used.
type SubtaskDoneRequest struct {
	Subtask  SubtaskRowRequest   `json:"subtask"`
	Siblings []SubtaskRowRequest `json:"siblings" validate:"omitempty,dive"`
}

// SubtaskRowRequest is one subtask row as the editor holds it.
type SubtaskRowRequest struct {
	ID           string `json:"id" validate:"omitempty,uuid"`
	ParentTaskID string `json:"parent_task_id" validate:"required,uuid"`
	IsDone       bool   `json:"is_done"`
}

// SubtaskDoneResponse carries the computed preview, if any.
type SubtaskDoneResponse struct {
	TaskID   string   `json:"task_id"`
	Progress *float64 `json:"progress"`
}

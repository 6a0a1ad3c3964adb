package dto

import "time"

// TimesheetLineRequest is the create/update payload of a time log. Dates use YYYY-MM-DD.
type TimesheetLineRequest struct {
	TaskID        string   `json:"task_id" validate:"omitempty,uuid"`
	SubtaskID     *string  `json:"subtask_id" validate:"omitempty,uuid"`
	Description   *string  `json:"description"`
	UserID        *string  `json:"user_id" validate:"omitempty,uuid"`
	Date          string   `json:"date" validate:"omitempty,datetime=2006-01-02"`
	DurationHours *float64 `json:"duration_hours"`
}

// TimesheetSubtaskChoiceRequest is the editor state when a subtask is picked.
type TimesheetSubtaskChoiceRequest struct {
	TaskID        string  `json:"task_id" validate:"required,uuid"`
	SubtaskID     *string `json:"subtask_id" validate:"omitempty,uuid"`
	Description   string  `json:"description"`
	DurationHours float64 `json:"duration_hours"`
}

// TimesheetLineResponse represents a time log with its derived fields.
type TimesheetLineResponse struct {
	ID              string    `json:"id,omitempty"`
	Description     string    `json:"description"`
	TaskID          string    `json:"task_id"`
	SubtaskID       *string   `json:"subtask_id"`
	UserID          string    `json:"user_id,omitempty"`
	Date            string    `json:"date,omitempty"`
	DurationHours   float64   `json:"duration_hours"`
	DisplayName     string    `json:"display_name"`
	HoursDisplay    string    `json:"hours_display"`
	UnusualDuration bool      `json:"unusual_duration"`
	CompanyID       string    `json:"company_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

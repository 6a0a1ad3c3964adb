package domain

import (
	"fmt"
	"math"
	"strings"
	"time"

	apperrors "github.com/spec-kit/task-service/pkg/util/errorutil"
)

const (
	// DefaultDurationHours is the duration of a freshly opened time log.
	DefaultDurationHours = 1.0
	// MaxDurationHours caps a single entry at one day.
	MaxDurationHours = 24.0
	// UnusualDurationHours is accepted but flagged to the client.
	UnusualDurationHours = 12.0

	fallbackDisplayName = "Time Log Entry"
)

// TimesheetLine is a single time-logging entry against a task.
type TimesheetLine struct {
	ID            string
	Description   string
	TaskID        string
	SubtaskID     *string
	UserID        string
	Date          time.Time
	DurationHours float64
	DisplayName   string
	CompanyID     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewTimesheetLine returns a line with the record defaults for env: the acting
// user, today's date and a one hour duration.
func NewTimesheetLine(env Env, taskID string) *TimesheetLine {
	return &TimesheetLine{
		TaskID:        taskID,
		UserID:        env.UserID,
		Date:          env.Today(),
		DurationHours: DefaultDurationHours,
		CompanyID:     env.CompanyID,
	}
}

// ComputeDisplayName picks the subtask name, then the description, then a fallback.
func ComputeDisplayName(subtask *Subtask, description string) string {
	if subtask != nil {
		return subtask.Name
	}
	if description != "" {
		return description
	}
	return fallbackDisplayName
}

// ComputeHoursDisplay renders decimal hours as HH:MM. The duration is rounded
// to the nearest whole minute first, so 59.6 minutes carry into the next hour.
func ComputeHoursDisplay(duration float64) string {
	totalMinutes := int(math.Round(duration * 60))
	sign := ""
	if totalMinutes < 0 {
		sign = "-"
		totalMinutes = -totalMinutes
	}
	return fmt.Sprintf("%s%02d:%02d", sign, totalMinutes/60, totalMinutes%60)
}

// HoursDisplay is the derived HH:MM rendering of the line's duration.
func (l *TimesheetLine) HoursDisplay() string {
	return ComputeHoursDisplay(l.DurationHours)
}

// UnusualDuration reports a duration above UnusualDurationHours.
func (l *TimesheetLine) UnusualDuration() bool {
	return l.DurationHours > UnusualDurationHours
}

// Recompute refreshes stored derived fields from the linked subtask.
func (l *TimesheetLine) Recompute(subtask *Subtask) {
	l.DisplayName = ComputeDisplayName(subtask, l.Description)
}

// OnSubtaskChosen overwrites the description with the chosen subtask's name.
func (l *TimesheetLine) OnSubtaskChosen(subtask *Subtask) {
	if subtask == nil {
		return
	}
	l.Description = subtask.Name
}

// PrepareCreate fills an empty description from the linked subtask.
func (l *TimesheetLine) PrepareCreate(subtask *Subtask) {
	if subtask != nil && strings.TrimSpace(l.Description) == "" {
		l.Description = subtask.Name
	}
}

// Validate runs the duration and date rules.
func (l *TimesheetLine) Validate(env Env) error {
	if err := ValidateDuration(l.DurationHours); err != nil {
		return err
	}
	return ValidateDate(l.Date, env)
}

// ValidateDuration requires 0 < duration <= 24.
func ValidateDuration(duration float64) error {
	if duration <= 0 || math.IsNaN(duration) {
		return apperrors.NewValidationError("Duration must be greater than 0 hours.",
			map[string]any{"duration_hours": duration})
	}
	if duration > MaxDurationHours {
		return apperrors.NewValidationError("Duration cannot exceed 24 hours for a single day.",
			map[string]any{"duration_hours": duration})
	}
	return nil
}

// ValidateDate rejects entries dated after env's today.
func ValidateDate(date time.Time, env Env) error {
	if DateOf(date).After(env.Today()) {
		return apperrors.NewValidationError("You cannot log time for future dates.",
			map[string]any{"date": DateOf(date).Format(time.DateOnly)})
	}
	return nil
}

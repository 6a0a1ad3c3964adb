package domain

import (
	"fmt"
	"time"

	apperrors "github.com/spec-kit/task-service/pkg/util/errorutil"
)

// DefaultSequence orders new subtasks and teams after hand-ordered ones.
const DefaultSequence = 10

// Subtask is a checklist item under a parent task.
type Subtask struct {
	ID             string
	Name           string
	Sequence       int
	ParentTaskID   string
	AssigneeID     *string
	IsDone         bool
	Deadline       *time.Time
	Description    string
	ParentDeadline *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Warning is a non-blocking advisory returned by interactive checks.
type Warning struct {
	Title   string
	Message string
}

// NewSubtask returns a subtask with default ordering under parentTaskID.
func NewSubtask(parentTaskID, name string) *Subtask {
	return &Subtask{Name: name, Sequence: DefaultSequence, ParentTaskID: parentTaskID}
}

// SyncParentDeadline refreshes the read-only mirror of the parent's deadline.
func (s *Subtask) SyncParentDeadline(parent *Task) {
	if parent == nil || parent.Deadline == nil {
		s.ParentDeadline = nil
		return
	}
	d := *parent.Deadline
	s.ParentDeadline = &d
}

// ValidateDeadline fails when the subtask is due after its parent task. The
// parent deadline is a timestamp and is read in env's location.
func (s *Subtask) ValidateDeadline(env Env, parentDeadline *time.Time) error {
	limit, exceeded := deadlineExceeded(env, s.Deadline, parentDeadline)
	if !exceeded {
		return nil
	}
	return apperrors.NewValidationError(
		fmt.Sprintf("Subtask deadline cannot exceed the main task deadline (%s). Please select a date before or on %s.",
			s.Name, limit.Format(DisplayDateLayout)),
		map[string]any{"deadline": DateOf(*s.Deadline).Format(time.DateOnly), "parent_deadline": limit.Format(time.DateOnly)},
	)
}

// DeadlineWarning is the interactive variant of ValidateDeadline; it returns nil when the dates are fine.
func DeadlineWarning(env Env, deadline, parentDeadline *time.Time) *Warning {
	limit, exceeded := deadlineExceeded(env, deadline, parentDeadline)
	if !exceeded {
		return nil
	}
	return &Warning{
		Title: "Invalid Deadline",
		Message: fmt.Sprintf("Subtask deadline cannot exceed the main task deadline (%s). Please select an earlier date.",
			limit.Format(DisplayDateLayout)),
	}
}

func deadlineExceeded(env Env, deadline, parentDeadline *time.Time) (time.Time, bool) {
	if deadline == nil || parentDeadline == nil {
		return time.Time{}, false
	}
	limit := env.LocalDate(*parentDeadline)
	return limit, DateOf(*deadline).After(limit)
}

// ProgressOnDone computes the parent progress preview after toggled changed its
// done flag. siblings is the parent's subtask collection as the editor sees it,
// toggled included. The second result is false when nothing should be written:
// the toggle went to not-done or the parent has no subtasks.
func ProgressOnDone(toggled Subtask, siblings []Subtask) (float64, bool) {
	if !toggled.IsDone || len(siblings) == 0 {
		return 0, false
	}
	done := 0
	for _, st := range siblings {
		if st.IsDone {
			done++
		}
	}
	return float64(done) / float64(len(siblings)) * 100, true
}

// OverlaySubtask returns siblings with the entry matching st replaced by st, or
// st appended when it is not in the collection yet (an unsaved row in the editor).
func OverlaySubtask(siblings []Subtask, st Subtask) []Subtask {
	out := make([]Subtask, 0, len(siblings)+1)
	found := false
	for _, existing := range siblings {
		if st.ID != "" && existing.ID == st.ID {
			out = append(out, st)
			found = true
			continue
		}
		out = append(out, existing)
	}
	if !found {
		out = append(out, st)
	}
	return out
}

package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/events"
	"github.com/spec-kit/task-service/internal/repository"
	apperrors "github.com/spec-kit/task-service/pkg/util/errorutil"
)

// SubtaskService manages checklist items under tasks.
type SubtaskService struct {
	subtasks   repository.SubtaskRepository
	tasks      repository.TaskRepository
	users      repository.UserRepository
	previews   ProgressPreviews
	dispatcher events.Dispatcher
	clock      Clock
	logger     *zap.Logger
}

// SubtaskDependencies bundles collaborators for the subtask service.
type SubtaskDependencies struct {
	SubtaskRepo repository.SubtaskRepository
	TaskRepo    repository.TaskRepository
	UserRepo    repository.UserRepository
	Previews    ProgressPreviews
	Dispatcher  events.Dispatcher
	Clock       Clock
	Logger      *zap.Logger
}

// SubtaskInput is the writable shape of a subtask.
type SubtaskInput struct {
	ParentTaskID string
	Name         string
	Sequence     *int
	AssigneeID   *string
	IsDone       bool
	Deadline     *time.Time
	Description  string
}

// DoneToggle is the editor state sent when a subtask's done box changes.
// Siblings is the parent's subtask list as the editor holds it, unsaved rows included.
type DoneToggle struct {
	Subtask  domain.Subtask
	Siblings []domain.Subtask
}

// DoneOutcome reports the progress preview computed for a toggle, if any.
type DoneOutcome struct {
	TaskID   string
	Progress *float64
}

// NewSubtaskService constructs the service.
func NewSubtaskService(deps SubtaskDependencies) *SubtaskService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubtaskService{
		subtasks:   deps.SubtaskRepo,
		tasks:      deps.TaskRepo,
		users:      deps.UserRepo,
		previews:   deps.Previews,
		dispatcher: deps.Dispatcher,
		clock:      deps.Clock,
		logger:     logger,
	}
}

// CreateSubtask validates and stores a subtask under an existing task.
func (s *SubtaskService) CreateSubtask(ctx context.Context, input SubtaskInput) (*domain.Subtask, error) {
	parent, err := s.parentTask(ctx, input.ParentTaskID)
	if err != nil {
		return nil, err
	}
	st := domain.NewSubtask(parent.ID, "")
	if err := s.apply(ctx, st, input); err != nil {
		return nil, err
	}
	st.SyncParentDeadline(parent)
	if err := st.ValidateDeadline(envFor(nil, s.clock), parent.Deadline); err != nil {
		return nil, err
	}
	if err := s.subtasks.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// GetSubtask loads a subtask.
func (s *SubtaskService) GetSubtask(ctx context.Context, id string) (*domain.Subtask, error) {
	st, err := s.subtasks.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("subtask", map[string]any{"id": id})
		}
		return nil, err
	}
	return st, nil
}

// ListSubtasks returns a task's subtasks in display order.
func (s *SubtaskService) ListSubtasks(ctx context.Context, taskID string) ([]domain.Subtask, error) {
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("task", map[string]any{"id": taskID})
		}
		return nil, err
	}
	return s.subtasks.ListByTask(ctx, taskID)
}

// UpdateSubtask rewrites a subtask. The deadline rule runs only when the
// deadline or the parent task changes. A rename refreshes linked time logs and
// a move to another task unlinks the logs booked on the old one.
func (s *SubtaskService) UpdateSubtask(ctx context.Context, actor *domain.User, id string, input SubtaskInput) (*domain.Subtask, error) {
	st, err := s.GetSubtask(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *st
	if input.ParentTaskID == "" {
		input.ParentTaskID = st.ParentTaskID
	}
	parent, err := s.parentTask(ctx, input.ParentTaskID)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, st, input); err != nil {
		return nil, err
	}
	st.ParentTaskID = parent.ID
	st.SyncParentDeadline(parent)
	if before.ParentTaskID != st.ParentTaskID || !sameDate(before.Deadline, st.Deadline) {
		if err := st.ValidateDeadline(envFor(actor, s.clock), parent.Deadline); err != nil {
			return nil, err
		}
	}
	if err := s.subtasks.Update(ctx, st); err != nil {
		return nil, err
	}
	if before.ParentTaskID != st.ParentTaskID {
		if err := publish(ctx, s.dispatcher, events.Event{
			Type:    events.EventSubtaskMoved,
			TaskID:  before.ParentTaskID,
			ActorID: actorID(actor),
			Payload: events.SubtaskPayload{SubtaskID: st.ID, Name: st.Name},
		}); err != nil {
			return nil, err
		}
	}
	if before.Name != st.Name {
		if err := publish(ctx, s.dispatcher, events.Event{
			Type:    events.EventSubtaskRenamed,
			TaskID:  st.ParentTaskID,
			ActorID: actorID(actor),
			Payload: events.SubtaskPayload{SubtaskID: st.ID, Name: st.Name},
		}); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// DeleteSubtask removes a subtask. The repository detaches linked time logs in
// the same unit, so their display names fall back to their own description.
func (s *SubtaskService) DeleteSubtask(ctx context.Context, actor *domain.User, id string) error {
	if err := s.subtasks.Delete(ctx, id); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("subtask", map[string]any{"id": id})
		}
		return err
	}
	s.logger.Debug("subtask deleted", zap.String("subtask_id", id), zap.String("actor_id", actorID(actor)))
	return nil
}

// CheckDeadline is the interactive deadline check; it never blocks.
func (s *SubtaskService) CheckDeadline(ctx context.Context, parentTaskID string, deadline *time.Time) (*domain.Warning, error) {
	if deadline == nil || parentTaskID == "" {
		return nil, nil
	}
	parent, err := s.parentTask(ctx, parentTaskID)
	if err != nil {
		return nil, err
	}
	return domain.DeadlineWarning(envFor(nil, s.clock), deadline, parent.Deadline), nil
}

// ToggleDone computes the parent's progress from the editor's view of its
// subtasks and parks it in the preview store. The task row is not touched.
// A store failure is logged and the computed value is still returned.
func (s *SubtaskService) ToggleDone(ctx context.Context, toggle DoneToggle) (*DoneOutcome, error) {
	taskID := toggle.Subtask.ParentTaskID
	if _, err := s.parentTask(ctx, taskID); err != nil {
		return nil, err
	}
	siblings := toggle.Siblings
	if siblings == nil {
		stored, err := s.subtasks.ListByTask(ctx, taskID)
		if err != nil {
			return nil, err
		}
		siblings = stored
	}
	siblings = domain.OverlaySubtask(siblings, toggle.Subtask)

	outcome := &DoneOutcome{TaskID: taskID}
	progress, ok := domain.ProgressOnDone(toggle.Subtask, siblings)
	if !ok {
		return outcome, nil
	}
	outcome.Progress = &progress
	if s.previews != nil {
		if err := s.previews.SaveProgress(ctx, taskID, progress); err != nil {
			s.logger.Warn("save progress preview", zap.String("task_id", taskID), zap.Error(err))
		}
	}
	return outcome, nil
}

func (s *SubtaskService) apply(ctx context.Context, st *domain.Subtask, input SubtaskInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return apperrors.NewValidationError("subtask name is required", map[string]any{"name": "required"})
	}
	if input.AssigneeID != nil {
		assignee, err := s.users.GetByID(ctx, *input.AssigneeID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.NewValidationError("assignee does not exist", map[string]any{"assignee_id": *input.AssigneeID})
			}
			return err
		}
		if !assignee.Assignable() {
			return apperrors.NewValidationError("assignee must be an active internal user",
				map[string]any{"assignee_id": assignee.ID})
		}
	}
	st.Name = name
	if input.Sequence != nil {
		st.Sequence = *input.Sequence
	}
	st.AssigneeID = input.AssigneeID
	st.IsDone = input.IsDone
	st.Deadline = domain.DatePtr(input.Deadline)
	st.Description = input.Description
	return nil
}

func (s *SubtaskService) parentTask(ctx context.Context, taskID string) (*domain.Task, error) {
	if taskID == "" {
		return nil, apperrors.NewValidationError("parent task is required", map[string]any{"parent_task_id": "required"})
	}
	parent, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewValidationError("parent task does not exist", map[string]any{"parent_task_id": taskID})
		}
		return nil, err
	}
	return parent, nil
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return domain.DateOf(*a).Equal(domain.DateOf(*b))
}

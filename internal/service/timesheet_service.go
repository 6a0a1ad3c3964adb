package service

import (
	"context"
	"time"

	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/repository"
	apperrors "github.com/spec-kit/task-service/pkg/util/errorutil"
)

// TimesheetService records time logged against tasks.
type TimesheetService struct {
	lines    repository.TimesheetRepository
	tasks    repository.TaskRepository
	subtasks repository.SubtaskRepository
	users    repository.UserRepository
	clock    Clock
}

// TimesheetDependencies bundles collaborators for the timesheet service.
type TimesheetDependencies struct {
	TimesheetRepo repository.TimesheetRepository
	TaskRepo      repository.TaskRepository
	SubtaskRepo   repository.SubtaskRepository
	UserRepo      repository.UserRepository
	Clock         Clock
}

// TimesheetInput is the writable shape of a time log. Nil fields take the
// record defaults on create and keep their stored value on update, except
// SubtaskID which is always replaced.
type TimesheetInput struct {
	TaskID        string
	SubtaskID     *string
	Description   *string
	UserID        *string
	Date          *time.Time
	DurationHours *float64
}

// NewTimesheetService constructs the service.
func NewTimesheetService(deps TimesheetDependencies) *TimesheetService {
	return &TimesheetService{
		lines:    deps.TimesheetRepo,
		tasks:    deps.TaskRepo,
		subtasks: deps.SubtaskRepo,
		users:    deps.UserRepo,
		clock:    deps.Clock,
	}
}

// CreateLine logs time for the acting user unless another user is given.
func (s *TimesheetService) CreateLine(ctx context.Context, actor *domain.User, input TimesheetInput) (*domain.TimesheetLine, error) {
	env := envFor(actor, s.clock)
	if _, err := s.task(ctx, input.TaskID); err != nil {
		return nil, err
	}
	line := domain.NewTimesheetLine(env, input.TaskID)
	applyTimesheetInput(line, input)

	subtask, err := s.subtaskFor(ctx, line)
	if err != nil {
		return nil, err
	}
	if err := s.checkUser(ctx, line.UserID); err != nil {
		return nil, err
	}
	line.PrepareCreate(subtask)
	if err := line.Validate(env); err != nil {
		return nil, err
	}
	line.Recompute(subtask)
	if err := s.lines.Create(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

// GetLine loads a time log.
func (s *TimesheetService) GetLine(ctx context.Context, id string) (*domain.TimesheetLine, error) {
	line, err := s.lines.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("timesheet line", map[string]any{"id": id})
		}
		return nil, err
	}
	return line, nil
}

// ListLines lists time logs, newest date first.
func (s *TimesheetService) ListLines(ctx context.Context, filter repository.TimesheetFilter) ([]domain.TimesheetLine, error) {
	if filter.TaskID != nil {
		if _, err := s.tasks.GetByID(ctx, *filter.TaskID); err != nil {
			if apperrors.IsNotFound(err) {
				return nil, apperrors.NewNotFound("task", map[string]any{"id": *filter.TaskID})
			}
			return nil, err
		}
	}
	return s.lines.List(ctx, filter)
}

// UpdateLine rewrites a time log and re-runs its rules.
func (s *TimesheetService) UpdateLine(ctx context.Context, actor *domain.User, id string, input TimesheetInput) (*domain.TimesheetLine, error) {
	line, err := s.GetLine(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.TaskID != "" && input.TaskID != line.TaskID {
		if _, err := s.task(ctx, input.TaskID); err != nil {
			return nil, err
		}
		line.TaskID = input.TaskID
	}
	applyTimesheetInput(line, input)

	subtask, err := s.subtaskFor(ctx, line)
	if err != nil {
		return nil, err
	}
	if err := s.checkUser(ctx, line.UserID); err != nil {
		return nil, err
	}
	if err := line.Validate(envFor(actor, s.clock)); err != nil {
		return nil, err
	}
	line.Recompute(subtask)
	if err := s.lines.Update(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

// DeleteLine removes a time log.
func (s *TimesheetService) DeleteLine(ctx context.Context, id string) error {
	if err := s.lines.Delete(ctx, id); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("timesheet line", map[string]any{"id": id})
		}
		return err
	}
	return nil
}

// ChooseSubtask is the interactive reaction to picking a subtask: the
// description becomes the subtask's name and the derived fields follow.
func (s *TimesheetService) ChooseSubtask(ctx context.Context, line domain.TimesheetLine) (*domain.TimesheetLine, error) {
	subtask, err := s.subtaskFor(ctx, &line)
	if err != nil {
		return nil, err
	}
	line.OnSubtaskChosen(subtask)
	line.Recompute(subtask)
	return &line, nil
}

func (s *TimesheetService) task(ctx context.Context, taskID string) (*domain.Task, error) {
	if taskID == "" {
		return nil, apperrors.NewValidationError("task is required", map[string]any{"task_id": "required"})
	}
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewValidationError("task does not exist", map[string]any{"task_id": taskID})
		}
		return nil, err
	}
	return task, nil
}

// subtaskFor loads the line's subtask and requires it to belong to the line's task.
func (s *TimesheetService) subtaskFor(ctx context.Context, line *domain.TimesheetLine) (*domain.Subtask, error) {
	if line.SubtaskID == nil {
		return nil, nil
	}
	subtask, err := s.subtasks.GetByID(ctx, *line.SubtaskID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewValidationError("subtask does not exist", map[string]any{"subtask_id": *line.SubtaskID})
		}
		return nil, err
	}
	if line.TaskID != "" && subtask.ParentTaskID != line.TaskID {
		return nil, apperrors.NewValidationError("The selected subtask does not belong to the logged task.",
			map[string]any{"subtask_id": subtask.ID, "task_id": line.TaskID})
	}
	return subtask, nil
}

func (s *TimesheetService) checkUser(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.NewValidationError("user is required", map[string]any{"user_id": "required"})
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewValidationError("user does not exist", map[string]any{"user_id": userID})
		}
		return err
	}
	return nil
}

func applyTimesheetInput(line *domain.TimesheetLine, input TimesheetInput) {
	line.SubtaskID = input.SubtaskID
	if input.Description != nil {
		line.Description = *input.Description
	}
	if input.UserID != nil {
		line.UserID = *input.UserID
	}
	if input.Date != nil {
		line.Date = domain.DateOf(*input.Date)
	}
	if input.DurationHours != nil {
		line.DurationHours = *input.DurationHours
	}
}

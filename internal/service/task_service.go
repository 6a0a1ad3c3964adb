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

// TaskService owns the task aggregate that subtasks, teams and timesheet lines hang off.
type TaskService struct {
	tasks      repository.TaskRepository
	teams      repository.TeamRepository
	previews   ProgressPreviews
	dispatcher events.Dispatcher
	clock      Clock
	logger     *zap.Logger
}

// TaskDependencies bundles collaborators for the task service.
type TaskDependencies struct {
	TaskRepo   repository.TaskRepository
	TeamRepo   repository.TeamRepository
	Previews   ProgressPreviews
	Dispatcher events.Dispatcher
	Clock      Clock
	Logger     *zap.Logger
}

// TaskInput is the writable shape of a task.
type TaskInput struct {
	Name     string
	TeamID   *string
	TaskType domain.TaskType
	Deadline *time.Time
}

// ProgressView pairs the stored progress with a pending edit preview.
type ProgressView struct {
	TaskID  string
	Stored  float64
	Preview *float64
}

// NewTaskService constructs the service.
func NewTaskService(deps TaskDependencies) *TaskService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{
		tasks:      deps.TaskRepo,
		teams:      deps.TeamRepo,
		previews:   deps.Previews,
		dispatcher: deps.Dispatcher,
		clock:      deps.Clock,
		logger:     logger,
	}
}

// CreateTask stores a task and schedules its team's count refresh.
func (s *TaskService) CreateTask(ctx context.Context, actor *domain.User, input TaskInput) (*domain.Task, error) {
	env := envFor(actor, s.clock)
	task := &domain.Task{CompanyID: env.CompanyID}
	if err := s.apply(ctx, task, input); err != nil {
		return nil, err
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	if err := publish(ctx, s.dispatcher, events.Event{
		Type:    events.EventTaskCreated,
		TaskID:  task.ID,
		ActorID: env.UserID,
		Payload: events.TaskTeamPayload{NewTeamID: task.TeamID},
	}); err != nil {
		return nil, err
	}
	return task, nil
}

// GetTask loads a task.
func (s *TaskService) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("task", map[string]any{"id": id})
		}
		return nil, err
	}
	return task, nil
}

// ListTasks lists tasks, optionally restricted to a team.
func (s *TaskService) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	return s.tasks.List(ctx, filter)
}

// UpdateTask rewrites a task. A new deadline is mirrored onto its subtasks and
// a team move refreshes both teams' counts. Any pending progress preview is dropped.
func (s *TaskService) UpdateTask(ctx context.Context, actor *domain.User, id string, input TaskInput) (*domain.Task, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *task
	if err := s.apply(ctx, task, input); err != nil {
		return nil, err
	}
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	s.discardPreview(ctx, task.ID)

	if !domain.SameTeam(before.TeamID, task.TeamID) {
		if err := publish(ctx, s.dispatcher, events.Event{
			Type:    events.EventTaskTeamChanged,
			TaskID:  task.ID,
			ActorID: actorID(actor),
			Payload: events.TaskTeamPayload{OldTeamID: before.TeamID, NewTeamID: task.TeamID},
		}); err != nil {
			return nil, err
		}
	}
	if !sameInstant(before.Deadline, task.Deadline) {
		if err := publish(ctx, s.dispatcher, events.Event{
			Type:    events.EventTaskDeadlineChanged,
			TaskID:  task.ID,
			ActorID: actorID(actor),
			Payload: events.TaskDeadlinePayload{Deadline: task.Deadline},
		}); err != nil {
			return nil, err
		}
	}
	return task, nil
}

// DeleteTask removes a task with its timesheet lines and subtasks.
func (s *TaskService) DeleteTask(ctx context.Context, actor *domain.User, id string) error {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}
	s.discardPreview(ctx, id)
	return publish(ctx, s.dispatcher, events.Event{
		Type:    events.EventTaskDeleted,
		TaskID:  id,
		ActorID: actorID(actor),
		Payload: events.TaskTeamPayload{OldTeamID: task.TeamID},
	})
}

// ProgressPreview reports the stored progress and any uncommitted preview.
func (s *TaskService) ProgressPreview(ctx context.Context, id string) (*ProgressView, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	view := &ProgressView{TaskID: task.ID, Stored: task.Progress}
	if s.previews == nil {
		return view, nil
	}
	preview, ok, err := s.previews.LoadProgress(ctx, task.ID)
	if err != nil {
		s.logger.Warn("load progress preview", zap.String("task_id", task.ID), zap.Error(err))
		return view, nil
	}
	if ok {
		view.Preview = &preview
	}
	return view, nil
}

func (s *TaskService) apply(ctx context.Context, task *domain.Task, input TaskInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return apperrors.NewValidationError("task name is required", map[string]any{"name": "required"})
	}
	taskType := input.TaskType
	if taskType == "" {
		taskType = domain.TaskTypePersonal
	}
	if !taskType.Valid() {
		return apperrors.NewValidationError("unknown task type", map[string]any{"task_type": string(taskType)})
	}
	if input.TeamID != nil {
		if _, err := s.teams.GetByID(ctx, *input.TeamID); err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.NewValidationError("team does not exist", map[string]any{"team_id": *input.TeamID})
			}
			return err
		}
	}
	task.Name = name
	task.TeamID = input.TeamID
	task.TaskType = taskType
	task.Deadline = input.Deadline
	return nil
}

func (s *TaskService) discardPreview(ctx context.Context, taskID string) {
	if s.previews == nil {
		return
	}
	if err := s.previews.DiscardProgress(ctx, taskID); err != nil {
		s.logger.Warn("discard progress preview", zap.String("task_id", taskID), zap.Error(err))
	}
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

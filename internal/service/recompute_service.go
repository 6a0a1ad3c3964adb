package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/events"
	"github.com/spec-kit/task-service/internal/repository"
	apperrors "github.com/spec-kit/task-service/pkg/util/errorutil"
)

// RecomputeService keeps stored derived fields in step with their sources:
// team task counts, subtask parent deadlines and time log display names.
type RecomputeService struct {
	dispatcher events.Dispatcher
	tasks      repository.TaskRepository
	subtasks   repository.SubtaskRepository
	teams      repository.TeamRepository
	lines      repository.TimesheetRepository
	logger     *zap.Logger
}

// RecomputeDependencies bundles collaborators for the recompute service.
type RecomputeDependencies struct {
	Dispatcher    events.Dispatcher
	TaskRepo      repository.TaskRepository
	SubtaskRepo   repository.SubtaskRepository
	TeamRepo      repository.TeamRepository
	TimesheetRepo repository.TimesheetRepository
	Logger        *zap.Logger
}

// NewRecomputeService creates the service.
func NewRecomputeService(deps RecomputeDependencies) *RecomputeService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecomputeService{
		dispatcher: deps.Dispatcher,
		tasks:      deps.TaskRepo,
		subtasks:   deps.SubtaskRepo,
		teams:      deps.TeamRepo,
		lines:      deps.TimesheetRepo,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (r *RecomputeService) RegisterHandlers() {
	if r.dispatcher == nil {
		return
	}
	r.dispatcher.Subscribe(events.EventTaskCreated, r.handleTaskTeam)
	r.dispatcher.Subscribe(events.EventTaskTeamChanged, r.handleTaskTeam)
	r.dispatcher.Subscribe(events.EventTaskDeleted, r.handleTaskTeam)
	r.dispatcher.Subscribe(events.EventTaskDeadlineChanged, r.handleDeadlineChanged)
	r.dispatcher.Subscribe(events.EventSubtaskRenamed, r.handleSubtaskRenamed)
	r.dispatcher.Subscribe(events.EventSubtaskMoved, r.handleSubtaskMoved)
}

func (r *RecomputeService) handleTaskTeam(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TaskTeamPayload)
	if !ok {
		return fmt.Errorf("%s: unexpected payload %T", event.Type, event.Payload)
	}
	change := domain.TeamChange{OldTeamID: payload.OldTeamID, NewTeamID: payload.NewTeamID}
	for _, teamID := range change.Affected() {
		count, err := r.tasks.CountByTeam(ctx, teamID)
		if err != nil {
			return fmt.Errorf("count tasks of team %s: %w", teamID, err)
		}
		if err := r.teams.SetTaskCount(ctx, teamID, count); err != nil {
			if apperrors.IsNotFound(err) {
				continue
			}
			return fmt.Errorf("store task count of team %s: %w", teamID, err)
		}
		r.logger.Debug("team task count recomputed",
			zap.String("team_id", teamID), zap.Int("task_count", count), zap.String("event", string(event.Type)))
	}
	return nil
}

func (r *RecomputeService) handleDeadlineChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TaskDeadlinePayload)
	if !ok {
		return fmt.Errorf("%s: unexpected payload %T", event.Type, event.Payload)
	}
	if err := r.subtasks.SyncParentDeadline(ctx, event.TaskID, payload.Deadline); err != nil {
		return fmt.Errorf("sync parent deadline of task %s: %w", event.TaskID, err)
	}
	r.logger.Debug("subtask parent deadlines synced", zap.String("task_id", event.TaskID))
	return nil
}

func (r *RecomputeService) handleSubtaskRenamed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SubtaskPayload)
	if !ok {
		return fmt.Errorf("%s: unexpected payload %T", event.Type, event.Payload)
	}
	if err := r.lines.RefreshSubtask(ctx, payload.SubtaskID, payload.Name); err != nil {
		return fmt.Errorf("refresh time logs of subtask %s: %w", payload.SubtaskID, err)
	}
	r.logger.Debug("time log names refreshed", zap.String("subtask_id", payload.SubtaskID))
	return nil
}

// handleSubtaskMoved unlinks the time logs left on the subtask's previous task.
// Deletion detaches inside the repository instead.
func (r *RecomputeService) handleSubtaskMoved(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SubtaskPayload)
	if !ok {
		return fmt.Errorf("%s: unexpected payload %T", event.Type, event.Payload)
	}
	if err := r.lines.DetachSubtask(ctx, payload.SubtaskID); err != nil {
		return fmt.Errorf("detach time logs of subtask %s: %w", payload.SubtaskID, err)
	}
	r.logger.Debug("time logs detached", zap.String("subtask_id", payload.SubtaskID))
	return nil
}

package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/events"
	"github.com/spec-kit/task-service/internal/repository/memory"
	apperrors "github.com/spec-kit/task-service/pkg/util/errorutil"
)

var fixedNow = time.Date(2024, time.May, 10, 15, 30, 0, 0, time.UTC)

type fakePreviews struct {
	mu     sync.Mutex
	values map[string]float64
	fail   error
}

func newFakePreviews() *fakePreviews {
	return &fakePreviews{values: map[string]float64{}}
}

func (f *fakePreviews) SaveProgress(_ context.Context, taskID string, progress float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.values[taskID] = progress
	return nil
}

func (f *fakePreviews) LoadProgress(_ context.Context, taskID string) (float64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[taskID]
	return v, ok, nil
}

func (f *fakePreviews) DiscardProgress(_ context.Context, taskID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, taskID)
	return nil
}

type harness struct {
	store     *memory.Store
	previews  *fakePreviews
	tasks     *TaskService
	subtasks  *SubtaskService
	teams     *TeamService
	timesheet *TimesheetService
	actor     *domain.User
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := memory.NewStore()
	dispatcher := events.NewInMemoryDispatcher(nil)
	previews := newFakePreviews()
	clock := func() time.Time { return fixedNow }

	NewRecomputeService(RecomputeDependencies{
		Dispatcher:    dispatcher,
		TaskRepo:      store.Tasks(),
		SubtaskRepo:   store.Subtasks(),
		TeamRepo:      store.Teams(),
		TimesheetRepo: store.Timesheet(),
	}).RegisterHandlers()

	h := &harness{
		store:    store,
		previews: previews,
		tasks: NewTaskService(TaskDependencies{
			TaskRepo: store.Tasks(), TeamRepo: store.Teams(), Previews: previews, Dispatcher: dispatcher, Clock: clock,
		}),
		subtasks: NewSubtaskService(SubtaskDependencies{
			SubtaskRepo: store.Subtasks(), TaskRepo: store.Tasks(), UserRepo: store.Users(), Previews: previews, Dispatcher: dispatcher, Clock: clock,
		}),
		teams: NewTeamService(TeamDependencies{
			TeamRepo: store.Teams(), UserRepo: store.Users(), HistoryRepo: store.TeamHistory(), Clock: clock,
		}),
		timesheet: NewTimesheetService(TimesheetDependencies{
			TimesheetRepo: store.Timesheet(), TaskRepo: store.Tasks(), SubtaskRepo: store.Subtasks(), UserRepo: store.Users(), Clock: clock,
		}),
	}
	h.actor = h.user(t, "ada@example.com", false)
	return h
}

func (h *harness) user(t *testing.T, email string, share bool) *domain.User {
	t.Helper()
	u := &domain.User{Name: email, Email: email, Active: true, Share: share, CompanyID: "acme"}
	if err := h.store.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (h *harness) team(t *testing.T, name string, parent *string) *domain.Team {
	t.Helper()
	team, err := h.teams.CreateTeam(context.Background(), h.actor, TeamInput{
		Name: name, ManagerID: h.actor.ID, ParentTeamID: parent,
	})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	return team
}

func (h *harness) task(t *testing.T, name string, teamID *string, deadline *time.Time) *domain.Task {
	t.Helper()
	task, err := h.tasks.CreateTask(context.Background(), h.actor, TaskInput{Name: name, TeamID: teamID, Deadline: deadline})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func (h *harness) subtask(t *testing.T, taskID, name string, deadline *time.Time) *domain.Subtask {
	t.Helper()
	st, err := h.subtasks.CreateSubtask(context.Background(), SubtaskInput{ParentTaskID: taskID, Name: name, Deadline: deadline})
	if err != nil {
		t.Fatalf("create subtask: %v", err)
	}
	return st
}

func date(y int, m time.Month, d int) *time.Time {
	v := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &v
}

func ptr[T any](v T) *T { return &v }

func requireValidation(t *testing.T, err error, message string) {
	t.Helper()
	if !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var de *apperrors.DomainError
	if message != "" && (!errors.As(err, &de) || de.Message != message) {
		t.Fatalf("expected message %q, got %v", message, err)
	}
}

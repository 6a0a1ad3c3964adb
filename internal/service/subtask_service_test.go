package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/repository"
	apperrors "github.com/spec-kit/task-service/pkg/util/errorutil"
)

type failingSubtaskDelete struct {
	repository.SubtaskRepository
	err error
}

func (f failingSubtaskDelete) Delete(context.Context, string) error { return f.err }

func TestCreateSubtaskRejectsDeadlineAfterParent(t *testing.T) {
	h := newHarness(t)
	task := h.task(t, "Ship", nil, date(2024, time.June, 30))

	_, err := h.subtasks.CreateSubtask(context.Background(), SubtaskInput{
		ParentTaskID: task.ID, Name: "Docs", Deadline: date(2024, time.July, 1),
	})
	requireValidation(t, err,
		"Subtask deadline cannot exceed the main task deadline (Docs). Please select a date before or on 06/30/2024.")

	st := h.subtask(t, task.ID, "Docs", date(2024, time.June, 30))
	if st.Sequence != domain.DefaultSequence {
		t.Fatalf("expected default sequence, got %d", st.Sequence)
	}
}

func TestCreateSubtaskRequiresParent(t *testing.T) {
	h := newHarness(t)
	_, err := h.subtasks.CreateSubtask(context.Background(), SubtaskInput{ParentTaskID: "missing", Name: "Docs"})
	requireValidation(t, err, "parent task does not exist")
}

func TestUpdateSubtaskChecksDeadlineOnlyWhenTouched(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	task := h.task(t, "Ship", nil, date(2024, time.June, 30))
	st := h.subtask(t, task.ID, "Docs", date(2024, time.June, 20))

	// The parent moves earlier; the subtask is now out of range but untouched.
	if _, err := h.tasks.UpdateTask(ctx, h.actor, task.ID, TaskInput{Name: "Ship", Deadline: date(2024, time.June, 10)}); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if _, err := h.subtasks.UpdateSubtask(ctx, h.actor, st.ID, SubtaskInput{Name: "Docs v2", Deadline: st.Deadline}); err != nil {
		t.Fatalf("rename must not re-run the deadline rule: %v", err)
	}

	_, err := h.subtasks.UpdateSubtask(ctx, h.actor, st.ID, SubtaskInput{Name: "Docs v2", Deadline: date(2024, time.June, 25)})
	requireValidation(t, err, "")
}

func TestSubtaskAssigneeMustBeInternal(t *testing.T) {
	h := newHarness(t)
	portal := h.user(t, "guest@example.com", true)
	task := h.task(t, "Ship", nil, nil)

	_, err := h.subtasks.CreateSubtask(context.Background(), SubtaskInput{
		ParentTaskID: task.ID, Name: "Docs", AssigneeID: &portal.ID,
	})
	requireValidation(t, err, "assignee must be an active internal user")
}

func TestCheckDeadlineWarning(t *testing.T) {
	h := newHarness(t)
	task := h.task(t, "Ship", nil, date(2024, time.June, 30))

	warning, err := h.subtasks.CheckDeadline(context.Background(), task.ID, date(2024, time.July, 2))
	if err != nil {
		t.Fatalf("CheckDeadline: %v", err)
	}
	if warning == nil || warning.Title != "Invalid Deadline" {
		t.Fatalf("expected warning, got %+v", warning)
	}
	warning, _ = h.subtasks.CheckDeadline(context.Background(), task.ID, date(2024, time.June, 30))
	if warning != nil {
		t.Fatalf("same day must not warn")
	}
}

func TestToggleDoneWritesPreviewOnly(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	task := h.task(t, "Ship", nil, nil)
	a := h.subtask(t, task.ID, "A", nil)
	h.subtask(t, task.ID, "B", nil)

	a.IsDone = true
	outcome, err := h.subtasks.ToggleDone(ctx, DoneToggle{Subtask: *a})
	if err != nil {
		t.Fatalf("ToggleDone: %v", err)
	}
	if outcome.Progress == nil || *outcome.Progress != 50 {
		t.Fatalf("expected 50%% preview, got %+v", outcome)
	}
	if h.previews.values[task.ID] != 50 {
		t.Fatalf("preview not stored: %v", h.previews.values)
	}
	stored, _ := h.tasks.GetTask(ctx, task.ID)
	if stored.Progress != 0 {
		t.Fatalf("task row must not change, got %v", stored.Progress)
	}

	a.IsDone = false
	outcome, err = h.subtasks.ToggleDone(ctx, DoneToggle{Subtask: *a})
	if err != nil || outcome.Progress != nil {
		t.Fatalf("toggling off must compute nothing: %+v %v", outcome, err)
	}
}

func TestToggleDoneUsesEditorSiblings(t *testing.T) {
	h := newHarness(t)
	task := h.task(t, "Ship", nil, nil)
	unsaved := domain.Subtask{ParentTaskID: task.ID, Name: "new row", IsDone: true}
	siblings := []domain.Subtask{
		{ID: "x", ParentTaskID: task.ID, IsDone: true},
		{ID: "y", ParentTaskID: task.ID},
		{ID: "z", ParentTaskID: task.ID},
	}
	outcome, err := h.subtasks.ToggleDone(context.Background(), DoneToggle{Subtask: unsaved, Siblings: siblings})
	if err != nil {
		t.Fatalf("ToggleDone: %v", err)
	}
	if outcome.Progress == nil || *outcome.Progress != 50 {
		t.Fatalf("expected 2 of 4 done, got %+v", outcome)
	}
}

func TestToggleDoneSurvivesPreviewStoreFailure(t *testing.T) {
	h := newHarness(t)
	h.previews.fail = errors.New("redis down")
	task := h.task(t, "Ship", nil, nil)
	a := h.subtask(t, task.ID, "A", nil)
	a.IsDone = true

	outcome, err := h.subtasks.ToggleDone(context.Background(), DoneToggle{Subtask: *a})
	if err != nil {
		t.Fatalf("ToggleDone: %v", err)
	}
	if outcome.Progress == nil || *outcome.Progress != 100 {
		t.Fatalf("expected 100%%, got %+v", outcome)
	}
}

func TestSubtaskRenameAndDeleteRefreshTimeLogs(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	task := h.task(t, "Ship", nil, nil)
	st := h.subtask(t, task.ID, "Docs", nil)
	line, err := h.timesheet.CreateLine(ctx, h.actor, TimesheetInput{TaskID: task.ID, SubtaskID: &st.ID, Description: ptr("drafting")})
	if err != nil {
		t.Fatalf("CreateLine: %v", err)
	}
	if line.DisplayName != "Docs" {
		t.Fatalf("display name %q", line.DisplayName)
	}

	if _, err := h.subtasks.UpdateSubtask(ctx, h.actor, st.ID, SubtaskInput{Name: "Handbook"}); err != nil {
		t.Fatalf("UpdateSubtask: %v", err)
	}
	got, _ := h.timesheet.GetLine(ctx, line.ID)
	if got.DisplayName != "Handbook" {
		t.Fatalf("rename not propagated: %q", got.DisplayName)
	}

	if err := h.subtasks.DeleteSubtask(ctx, h.actor, st.ID); err != nil {
		t.Fatalf("DeleteSubtask: %v", err)
	}
	got, _ = h.timesheet.GetLine(ctx, line.ID)
	if got.SubtaskID != nil || got.DisplayName != "drafting" {
		t.Fatalf("expected detached line named by its description, got %+v", got)
	}
}

func TestSubtaskDeadlineReadsParentInClockZone(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	est := time.FixedZone("EST", -5*60*60)
	// 2026-05-02 04:30 UTC is still May 1st on an EST clock.
	task := h.task(t, "Ship", nil, ptr(time.Date(2026, time.May, 1, 23, 30, 0, 0, est).UTC()))

	if _, err := h.subtasks.CreateSubtask(ctx, SubtaskInput{
		ParentTaskID: task.ID, Name: "Docs", Deadline: date(2026, time.May, 2),
	}); err != nil {
		t.Fatalf("UTC clock must accept May 2nd: %v", err)
	}

	local := NewSubtaskService(SubtaskDependencies{
		SubtaskRepo: h.store.Subtasks(), TaskRepo: h.store.Tasks(), UserRepo: h.store.Users(),
		Clock: func() time.Time { return fixedNow.In(est) },
	})
	_, err := local.CreateSubtask(ctx, SubtaskInput{ParentTaskID: task.ID, Name: "Docs", Deadline: date(2026, time.May, 2)})
	requireValidation(t, err,
		"Subtask deadline cannot exceed the main task deadline (Docs). Please select a date before or on 05/01/2026.")

	warning, err := local.CheckDeadline(ctx, task.ID, date(2026, time.May, 2))
	if err != nil || warning == nil {
		t.Fatalf("expected warning on EST clock, got %+v %v", warning, err)
	}
}

func TestMoveSubtaskUnlinksTimeLogsOnOldTask(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	from := h.task(t, "Ship", nil, nil)
	to := h.task(t, "Support", nil, nil)
	st := h.subtask(t, from.ID, "Docs", nil)
	line, err := h.timesheet.CreateLine(ctx, h.actor, TimesheetInput{TaskID: from.ID, SubtaskID: &st.ID, Description: ptr("drafting")})
	if err != nil {
		t.Fatalf("CreateLine: %v", err)
	}

	if _, err := h.subtasks.UpdateSubtask(ctx, h.actor, st.ID, SubtaskInput{ParentTaskID: to.ID, Name: "Docs"}); err != nil {
		t.Fatalf("UpdateSubtask: %v", err)
	}
	got, _ := h.timesheet.GetLine(ctx, line.ID)
	if got.TaskID != from.ID || got.SubtaskID != nil || got.DisplayName != "drafting" {
		t.Fatalf("expected line detached on its own task, got %+v", got)
	}
}

func TestDeleteSubtaskFailureKeepsTimeLogsLinked(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	task := h.task(t, "Ship", nil, nil)
	st := h.subtask(t, task.ID, "Docs", nil)
	line, err := h.timesheet.CreateLine(ctx, h.actor, TimesheetInput{TaskID: task.ID, SubtaskID: &st.ID})
	if err != nil {
		t.Fatalf("CreateLine: %v", err)
	}

	boom := errors.New("connection reset")
	broken := NewSubtaskService(SubtaskDependencies{
		SubtaskRepo: failingSubtaskDelete{SubtaskRepository: h.store.Subtasks(), err: boom},
		TaskRepo:    h.store.Tasks(),
		UserRepo:    h.store.Users(),
	})
	if err := broken.DeleteSubtask(ctx, h.actor, st.ID); !errors.Is(err, boom) {
		t.Fatalf("expected storage error, got %v", err)
	}
	got, _ := h.timesheet.GetLine(ctx, line.ID)
	if got.SubtaskID == nil || *got.SubtaskID != st.ID || got.DisplayName != "Docs" {
		t.Fatalf("failed delete must leave the line linked, got %+v", got)
	}

	err = h.subtasks.DeleteSubtask(ctx, h.actor, "missing")
	if de := apperrors.ToDomainError(err); de == nil || de.Code != apperrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

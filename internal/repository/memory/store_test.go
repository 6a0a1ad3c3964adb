package memory

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/task-service/internal/domain"
	apperrors "github.com/spec-kit/task-service/pkg/util/errorutil"
)

func seedUser(t *testing.T, s *Store, name string) *domain.User {
	t.Helper()
	u := &domain.User{Name: name, Email: name + "@example.com", Active: true}
	if err := s.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestDeleteTaskCascadesToSubtasksAndLines(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	user := seedUser(t, s, "ada")

	task := &domain.Task{Name: "Launch"}
	other := &domain.Task{Name: "Other"}
	for _, tk := range []*domain.Task{task, other} {
		if err := s.Tasks().Create(ctx, tk); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}
	st := domain.NewSubtask(task.ID, "Docs")
	if err := s.Subtasks().Create(ctx, st); err != nil {
		t.Fatalf("create subtask: %v", err)
	}
	kept := &domain.TimesheetLine{TaskID: other.ID, UserID: user.ID, Date: time.Now(), DurationHours: 1}
	gone := &domain.TimesheetLine{TaskID: task.ID, SubtaskID: &st.ID, UserID: user.ID, Date: time.Now(), DurationHours: 1}
	for _, l := range []*domain.TimesheetLine{kept, gone} {
		if err := s.Timesheet().Create(ctx, l); err != nil {
			t.Fatalf("create line: %v", err)
		}
	}

	if err := s.Tasks().Delete(ctx, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Subtasks().GetByID(ctx, st.ID); !apperrors.IsNotFound(err) {
		t.Fatalf("subtask should be gone, got %v", err)
	}
	if _, err := s.Timesheet().GetByID(ctx, gone.ID); !apperrors.IsNotFound(err) {
		t.Fatalf("line should be gone, got %v", err)
	}
	if _, err := s.Timesheet().GetByID(ctx, kept.ID); err != nil {
		t.Fatalf("unrelated line removed: %v", err)
	}
}

func TestDeleteTeamRemovesSubtreeAndReleasesTasks(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	manager := seedUser(t, s, "ada")

	root := &domain.Team{Name: "Root", ManagerID: manager.ID, MemberIDs: []string{manager.ID}}
	if err := s.Teams().Create(ctx, root); err != nil {
		t.Fatalf("create root: %v", err)
	}
	child := &domain.Team{Name: "Child", ManagerID: manager.ID, ParentTeamID: &root.ID}
	if err := s.Teams().Create(ctx, child); err != nil {
		t.Fatalf("create child: %v", err)
	}
	sibling := &domain.Team{Name: "Sibling", ManagerID: manager.ID}
	if err := s.Teams().Create(ctx, sibling); err != nil {
		t.Fatalf("create sibling: %v", err)
	}
	task := &domain.Task{Name: "Owned", TeamID: &child.ID}
	if err := s.Tasks().Create(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := s.TeamHistory().Create(ctx, &domain.TeamHistory{TeamID: child.ID, Field: domain.TrackedTeamName}); err != nil {
		t.Fatalf("create history: %v", err)
	}

	removed, err := s.Teams().Delete(ctx, root.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(removed) != 2 || removed[0] != root.ID || removed[1] != child.ID {
		t.Fatalf("unexpected removed ids %v", removed)
	}
	got, err := s.Tasks().GetByID(ctx, task.ID)
	if err != nil || got.TeamID != nil {
		t.Fatalf("task should survive without team: %+v, %v", got, err)
	}
	if history, _ := s.TeamHistory().ListByTeam(ctx, child.ID); len(history) != 0 {
		t.Fatalf("history should be dropped, got %d", len(history))
	}
	if _, err := s.Teams().GetByID(ctx, sibling.ID); err != nil {
		t.Fatalf("sibling removed: %v", err)
	}
}

func TestGetTeamHydratesMembersAndChildren(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	manager := seedUser(t, s, "ada")

	root := &domain.Team{Name: "Root", ManagerID: manager.ID, MemberIDs: []string{manager.ID, manager.ID}}
	if err := s.Teams().Create(ctx, root); err != nil {
		t.Fatalf("create root: %v", err)
	}
	for i, name := range []string{"Beta", "Alpha"} {
		child := &domain.Team{Name: name, Sequence: 10 + i, ManagerID: manager.ID, ParentTeamID: &root.ID}
		if err := s.Teams().Create(ctx, child); err != nil {
			t.Fatalf("create child: %v", err)
		}
	}

	got, err := s.Teams().GetByID(ctx, root.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.MemberIDs) != 1 || got.MemberIDs[0] != manager.ID {
		t.Fatalf("unexpected members %v", got.MemberIDs)
	}
	if len(got.ChildTeamIDs) != 2 {
		t.Fatalf("unexpected children %v", got.ChildTeamIDs)
	}
	first, _ := s.Teams().GetByID(ctx, got.ChildTeamIDs[0])
	if first.Name != "Beta" {
		t.Fatalf("children should follow sequence order, got %s first", first.Name)
	}
}

func TestDetachSubtaskFallsBackToDescription(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	user := seedUser(t, s, "ada")
	task := &domain.Task{Name: "Launch"}
	if err := s.Tasks().Create(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}
	st := domain.NewSubtask(task.ID, "Docs")
	if err := s.Subtasks().Create(ctx, st); err != nil {
		t.Fatalf("create subtask: %v", err)
	}
	withText := &domain.TimesheetLine{TaskID: task.ID, SubtaskID: &st.ID, Description: "Review", UserID: user.ID, DurationHours: 1, DisplayName: "Docs"}
	blank := &domain.TimesheetLine{TaskID: task.ID, SubtaskID: &st.ID, UserID: user.ID, DurationHours: 1, DisplayName: "Docs"}
	for _, l := range []*domain.TimesheetLine{withText, blank} {
		if err := s.Timesheet().Create(ctx, l); err != nil {
			t.Fatalf("create line: %v", err)
		}
	}

	if err := s.Timesheet().DetachSubtask(ctx, st.ID); err != nil {
		t.Fatalf("detach: %v", err)
	}
	a, _ := s.Timesheet().GetByID(ctx, withText.ID)
	b, _ := s.Timesheet().GetByID(ctx, blank.ID)
	if a.SubtaskID != nil || a.DisplayName != "Review" {
		t.Fatalf("unexpected line %+v", a)
	}
	if b.SubtaskID != nil || b.DisplayName != "Time Log Entry" {
		t.Fatalf("unexpected line %+v", b)
	}
}

func TestDeleteSubtaskDetachesLinesInSameUnit(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	user := seedUser(t, s, "ada")
	task := &domain.Task{Name: "Launch"}
	if err := s.Tasks().Create(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}
	st := domain.NewSubtask(task.ID, "Docs")
	if err := s.Subtasks().Create(ctx, st); err != nil {
		t.Fatalf("create subtask: %v", err)
	}
	line := &domain.TimesheetLine{TaskID: task.ID, SubtaskID: &st.ID, Description: "Review", UserID: user.ID, DurationHours: 1, DisplayName: "Docs"}
	if err := s.Timesheet().Create(ctx, line); err != nil {
		t.Fatalf("create line: %v", err)
	}

	if err := s.Subtasks().Delete(ctx, st.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := s.Timesheet().GetByID(ctx, line.ID)
	if err != nil || got.SubtaskID != nil || got.DisplayName != "Review" {
		t.Fatalf("expected detached line, got %+v, %v", got, err)
	}
	if err := s.Subtasks().Delete(ctx, st.ID); !apperrors.IsNotFound(err) {
		t.Fatalf("second delete should miss, got %v", err)
	}
}

func TestListUsersByIDs(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	bob := seedUser(t, s, "bob")
	ada := seedUser(t, s, "ada")

	users, err := s.Users().ListByIDs(ctx, []string{bob.ID, "missing", ada.ID, bob.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 2 || users[0].ID != ada.ID || users[1].ID != bob.ID {
		t.Fatalf("unexpected users %+v", users)
	}
}

package service

import (
	"context"
	"testing"

	"github.com/spec-kit/task-service/internal/domain"
	apperrors "github.com/spec-kit/task-service/pkg/util/errorutil"
)

func TestCreateTeamDefaults(t *testing.T) {
	h := newHarness(t)
	member := h.user(t, "bob@example.com", false)
	team, err := h.teams.CreateTeam(context.Background(), h.actor, TeamInput{
		Name: "Alpha", ManagerID: h.actor.ID, MemberIDs: []string{member.ID, member.ID},
	})
	if err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}
	if !team.Active || team.Sequence != domain.DefaultSequence || team.Color != 0 {
		t.Fatalf("unexpected defaults %+v", team)
	}
	if team.CompanyID != "acme" {
		t.Fatalf("company should default to the actor's, got %q", team.CompanyID)
	}
	if len(team.MemberIDs) != 1 || team.MemberIDs[0] != member.ID {
		t.Fatalf("unexpected members %v", team.MemberIDs)
	}
}

func TestTeamRejectsPortalUsers(t *testing.T) {
	h := newHarness(t)
	portal := h.user(t, "guest@example.com", true)
	ctx := context.Background()

	_, err := h.teams.CreateTeam(ctx, h.actor, TeamInput{Name: "Alpha", ManagerID: portal.ID})
	requireValidation(t, err, "")
	_, err = h.teams.CreateTeam(ctx, h.actor, TeamInput{Name: "Alpha", ManagerID: h.actor.ID, MemberIDs: []string{portal.ID}})
	requireValidation(t, err, "")
}

func TestTeamRejectsRecursiveHierarchy(t *testing.T) {
	h := newHarness(t)
	root := h.team(t, "Root", nil)
	child := h.team(t, "Child", &root.ID)
	grandchild := h.team(t, "Grandchild", &child.ID)

	_, err := h.teams.UpdateTeam(context.Background(), h.actor, root.ID, TeamInput{
		Name: "Root", ManagerID: h.actor.ID, ParentTeamID: &grandchild.ID,
	})
	requireValidation(t, err, "You cannot create recursive team hierarchies.")

	got, _ := h.teams.GetTeam(context.Background(), root.ID)
	if len(got.ChildTeamIDs) != 1 || got.ChildTeamIDs[0] != child.ID {
		t.Fatalf("unexpected children %v", got.ChildTeamIDs)
	}
}

func TestUpdateTeamRecordsHistory(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	other := h.user(t, "carol@example.com", false)
	team := h.team(t, "Alpha", nil)

	if _, err := h.teams.UpdateTeam(ctx, h.actor, team.ID, TeamInput{Name: "Alpha", ManagerID: h.actor.ID, Color: 3}); err != nil {
		t.Fatalf("UpdateTeam: %v", err)
	}
	if _, err := h.teams.UpdateTeam(ctx, h.actor, team.ID, TeamInput{Name: "Omega", ManagerID: other.ID}); err != nil {
		t.Fatalf("UpdateTeam: %v", err)
	}
	history, err := h.teams.History(ctx, team.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected name and manager entries, got %+v", history)
	}
	fields := map[domain.TeamTrackedField]domain.TeamHistory{}
	for _, entry := range history {
		fields[entry.Field] = entry
	}
	if e := fields[domain.TrackedTeamName]; e.OldValue != "Alpha" || e.NewValue != "Omega" {
		t.Fatalf("unexpected name entry %+v", e)
	}
	if e := fields[domain.TrackedTeamManager]; e.NewValue != other.ID || e.ChangedByID == nil || *e.ChangedByID != h.actor.ID {
		t.Fatalf("unexpected manager entry %+v", e)
	}
}

func TestDeleteTeamRemovesSubtreeAndReleasesTasks(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	root := h.team(t, "Root", nil)
	child := h.team(t, "Child", &root.ID)
	sibling := h.team(t, "Sibling", nil)
	task := h.task(t, "Ship", &child.ID, nil)

	removed, err := h.teams.DeleteTeam(ctx, root.ID)
	if err != nil {
		t.Fatalf("DeleteTeam: %v", err)
	}
	if len(removed) != 2 {
		t.Fatalf("expected root and child removed, got %v", removed)
	}
	if _, err := h.teams.GetTeam(ctx, child.ID); !apperrors.IsNotFound(err) {
		t.Fatalf("child team survived: %v", err)
	}
	if _, err := h.teams.GetTeam(ctx, sibling.ID); err != nil {
		t.Fatalf("unrelated team removed: %v", err)
	}
	got, err := h.tasks.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("task must survive team deletion: %v", err)
	}
	if got.TeamID != nil {
		t.Fatalf("task still references deleted team")
	}
}

func TestTeamActions(t *testing.T) {
	h := newHarness(t)
	team := h.team(t, "Alpha", nil)
	ctx := context.Background()

	create, err := h.teams.CreateTaskAction(ctx, team.ID)
	if err != nil {
		t.Fatalf("CreateTaskAction: %v", err)
	}
	if create.Defaults["team_id"] != team.ID || create.Defaults["task_type"] != "team" || len(create.Filter) != 0 {
		t.Fatalf("unexpected create action %+v", create)
	}
	view, err := h.teams.ViewTasksAction(ctx, team.ID)
	if err != nil {
		t.Fatalf("ViewTasksAction: %v", err)
	}
	if len(view.Filter) != 1 || view.Filter[0].Value != team.ID || len(view.ViewModes) != 3 {
		t.Fatalf("unexpected view action %+v", view)
	}
	if _, err := h.teams.ViewTasksAction(ctx, "missing"); !apperrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

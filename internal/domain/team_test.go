package domain

import (
	"errors"
	"testing"

	apperrors "github.com/spec-kit/task-service/pkg/util/errorutil"
)

func strPtr(s string) *string { return &s }

func TestTaskCount(t *testing.T) {
	tasks := []Task{
		{ID: "1", TeamID: strPtr("ops")},
		{ID: "2", TeamID: strPtr("dev")},
		{ID: "3"},
		{ID: "4", TeamID: strPtr("ops")},
	}
	if got := TaskCount("ops", tasks); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := TaskCount("qa", tasks); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestTeamActions(t *testing.T) {
	team := &Team{ID: "team-7"}

	create := team.CreateTaskAction()
	if create.Target != TargetTask || len(create.ViewModes) != 1 || create.ViewModes[0] != ViewModeForm {
		t.Fatalf("unexpected create action: %+v", create)
	}
	if create.Filter != nil {
		t.Fatalf("create action must not filter")
	}
	if create.Defaults["team_id"] != "team-7" || create.Defaults["task_type"] != "team" {
		t.Fatalf("unexpected defaults: %v", create.Defaults)
	}

	view := team.ViewTasksAction()
	if len(view.ViewModes) != 3 || view.ViewModes[0] != ViewModeList {
		t.Fatalf("unexpected view modes: %v", view.ViewModes)
	}
	if len(view.Filter) != 1 || view.Filter[0].Field != "team_id" || view.Filter[0].Value != "team-7" {
		t.Fatalf("unexpected filter: %+v", view.Filter)
	}
	if view.Defaults["team_id"] != "team-7" {
		t.Fatalf("unexpected defaults: %v", view.Defaults)
	}
}

func TestCheckHierarchy(t *testing.T) {
	parents := map[string]*string{
		"root":  nil,
		"mid":   strPtr("root"),
		"leaf":  strPtr("mid"),
		"other": nil,
	}
	lookup := func(id string) (*string, error) {
		p, ok := parents[id]
		if !ok {
			return nil, apperrors.ErrNotFound
		}
		return p, nil
	}

	if err := CheckHierarchy("other", strPtr("leaf"), lookup); err != nil {
		t.Fatalf("unrelated parent must be accepted: %v", err)
	}
	if err := CheckHierarchy("", strPtr("leaf"), lookup); err != nil {
		t.Fatalf("new team must be accepted: %v", err)
	}
	if err := CheckHierarchy("root", strPtr("root"), lookup); !apperrors.IsValidation(err) {
		t.Fatalf("self parent must be rejected, got %v", err)
	}
	if err := CheckHierarchy("root", strPtr("leaf"), lookup); !apperrors.IsValidation(err) {
		t.Fatalf("descendant parent must be rejected, got %v", err)
	}
	if err := CheckHierarchy("root", strPtr("ghost"), lookup); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("missing parent must surface lookup error, got %v", err)
	}
}

func TestTrackTeamChanges(t *testing.T) {
	before := &Team{ID: "t", Name: "Ops", ManagerID: "u1", Color: 1}
	after := &Team{ID: "t", Name: "Operations", ManagerID: "u1", Color: 4}

	entries := TrackTeamChanges(Env{UserID: "admin"}, before, after)
	if len(entries) != 1 {
		t.Fatalf("expected only name to be tracked, got %+v", entries)
	}
	e := entries[0]
	if e.Field != TrackedTeamName || e.OldValue != "Ops" || e.NewValue != "Operations" || *e.ChangedByID != "admin" {
		t.Fatalf("unexpected entry: %+v", e)
	}

	after.ManagerID = "u2"
	if got := len(TrackTeamChanges(Env{}, before, after)); got != 2 {
		t.Fatalf("expected 2 entries, got %d", got)
	}
}

func TestTeamChangeAffected(t *testing.T) {
	cases := []struct {
		change TeamChange
		want   int
	}{
		{TeamChange{}, 0},
		{TeamChange{NewTeamID: strPtr("a")}, 1},
		{TeamChange{OldTeamID: strPtr("a")}, 1},
		{TeamChange{OldTeamID: strPtr("a"), NewTeamID: strPtr("a")}, 1},
		{TeamChange{OldTeamID: strPtr("a"), NewTeamID: strPtr("b")}, 2},
	}
	for i, tc := range cases {
		if got := len(tc.change.Affected()); got != tc.want {
			t.Fatalf("case %d: want %d got %d", i, tc.want, got)
		}
	}
}

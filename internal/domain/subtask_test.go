package domain

import (
	"strings"
	"testing"
	"time"

	apperrors "github.com/spec-kit/task-service/pkg/util/errorutil"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestSubtaskValidateDeadline(t *testing.T) {
	parentWithTime := time.Date(2026, time.March, 10, 23, 30, 0, 0, time.UTC)

	cases := []struct {
		name     string
		deadline *time.Time
		parent   *time.Time
		wantErr  bool
	}{
		{"both unset", nil, nil, false},
		{"only subtask set", date(2026, 3, 20), nil, false},
		{"only parent set", nil, date(2026, 3, 1), false},
		{"earlier", date(2026, 3, 9), date(2026, 3, 10), false},
		{"same day", date(2026, 3, 10), date(2026, 3, 10), false},
		{"same day as parent with time of day", date(2026, 3, 10), &parentWithTime, false},
		{"day after parent with time of day", date(2026, 3, 11), &parentWithTime, true},
		{"later", date(2026, 4, 1), date(2026, 3, 10), true},
	}

	for _, tc := range cases {
		st := Subtask{Name: "Write migration", Deadline: tc.deadline}
		err := st.ValidateDeadline(Env{}, tc.parent)
		if tc.wantErr != (err != nil) {
			t.Fatalf("%s: wantErr=%v got %v", tc.name, tc.wantErr, err)
		}
		if err != nil && !apperrors.IsValidation(err) {
			t.Fatalf("%s: expected DomainValidationError, got %T", tc.name, err)
		}
	}
}

func TestSubtaskValidateDeadline_MessageNamesSubtaskAndParentDate(t *testing.T) {
	st := Subtask{Name: "Review copy", Deadline: date(2026, 5, 2)}
	err := st.ValidateDeadline(Env{}, date(2026, 4, 30))
	if err == nil {
		t.Fatalf("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "(Review copy)") || !strings.Contains(msg, "04/30/2026") {
		t.Fatalf("unexpected message: %s", msg)
	}
}

func TestSubtaskValidateDeadline_ParentReadInEnvLocation(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	utcDeadline := time.Date(2026, time.May, 2, 4, 30, 0, 0, time.UTC)
	estDeadline := time.Date(2026, time.May, 1, 23, 30, 0, 0, est)
	if !utcDeadline.Equal(estDeadline) {
		t.Fatalf("fixture instants differ")
	}

	cases := []struct {
		name    string
		env     Env
		wantErr bool
	}{
		{"utc clock", Env{Now: time.Date(2026, time.April, 1, 12, 0, 0, 0, time.UTC)}, false},
		{"est clock", Env{Now: time.Date(2026, time.April, 1, 12, 0, 0, 0, est)}, true},
	}
	for _, tc := range cases {
		for _, parent := range []time.Time{utcDeadline, estDeadline} {
			st := Subtask{Name: "Docs", Deadline: date(2026, 5, 2)}
			err := st.ValidateDeadline(tc.env, &parent)
			if tc.wantErr != (err != nil) {
				t.Fatalf("%s, parent %s: wantErr=%v got %v", tc.name, parent, tc.wantErr, err)
			}
			if w := DeadlineWarning(tc.env, st.Deadline, &parent); tc.wantErr != (w != nil) {
				t.Fatalf("%s, parent %s: warning %+v", tc.name, parent, w)
			}
		}
	}
}

func TestDeadlineWarning(t *testing.T) {
	if w := DeadlineWarning(Env{}, date(2026, 3, 10), date(2026, 3, 10)); w != nil {
		t.Fatalf("expected no warning, got %+v", w)
	}
	w := DeadlineWarning(Env{}, date(2026, 3, 12), date(2026, 3, 10))
	if w == nil {
		t.Fatalf("expected warning")
	}
	if w.Title != "Invalid Deadline" || !strings.Contains(w.Message, "03/10/2026") {
		t.Fatalf("unexpected warning: %+v", w)
	}
}

func TestProgressOnDone(t *testing.T) {
	siblings := []Subtask{
		{ID: "a", IsDone: true},
		{ID: "b", IsDone: false},
		{ID: "c", IsDone: false},
		{ID: "d", IsDone: false},
	}

	toggled := Subtask{ID: "b", IsDone: true}
	progress, ok := ProgressOnDone(toggled, OverlaySubtask(siblings, toggled))
	if !ok || progress != 50 {
		t.Fatalf("expected 50%%, got %v (fired=%v)", progress, ok)
	}

	untoggled := Subtask{ID: "a", IsDone: false}
	if _, ok := ProgressOnDone(untoggled, OverlaySubtask(siblings, untoggled)); ok {
		t.Fatalf("toggling to not-done must not fire")
	}

	if _, ok := ProgressOnDone(Subtask{IsDone: true}, nil); ok {
		t.Fatalf("no subtasks must not fire")
	}
}

func TestProgressOnDone_UnsavedRowCountsTowardsTotal(t *testing.T) {
	siblings := []Subtask{{ID: "a", IsDone: true}}
	draft := Subtask{Name: "new row", IsDone: true}
	progress, ok := ProgressOnDone(draft, OverlaySubtask(siblings, draft))
	if !ok || progress != 100 {
		t.Fatalf("expected 100%%, got %v", progress)
	}

	siblings = []Subtask{{ID: "a"}, {ID: "b"}}
	progress, _ = ProgressOnDone(draft, OverlaySubtask(siblings, draft))
	if got := int(progress*100 + 0.5); got != 3333 {
		t.Fatalf("expected 33.33%%, got %v", progress)
	}
}

func TestSyncParentDeadline(t *testing.T) {
	st := NewSubtask("task-1", "x")
	if st.Sequence != DefaultSequence {
		t.Fatalf("expected default sequence, got %d", st.Sequence)
	}
	st.SyncParentDeadline(&Task{Deadline: date(2026, 1, 2)})
	if st.ParentDeadline == nil || !st.ParentDeadline.Equal(*date(2026, 1, 2)) {
		t.Fatalf("mirror not synced: %v", st.ParentDeadline)
	}
	st.SyncParentDeadline(&Task{})
	if st.ParentDeadline != nil {
		t.Fatalf("mirror should clear when parent deadline is removed")
	}
}

// Package memory implements the repository interfaces on process memory. It is
// used when no Postgres DSN is configured and as the backend of service tests.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/repository"
)

// Store holds every table behind one lock so cascades stay atomic.
type Store struct {
	mu        sync.RWMutex
	now       func() time.Time
	users     map[string]domain.User
	tasks     map[string]domain.Task
	subtasks  map[string]domain.Subtask
	teams     map[string]domain.Team
	members   map[string][]string
	history   []domain.TeamHistory
	timesheet map[string]domain.TimesheetLine
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		now:       time.Now,
		users:     make(map[string]domain.User),
		tasks:     make(map[string]domain.Task),
		subtasks:  make(map[string]domain.Subtask),
		teams:     make(map[string]domain.Team),
		members:   make(map[string][]string),
		timesheet: make(map[string]domain.TimesheetLine),
	}
}

// Users returns the user repository view.
func (s *Store) Users() repository.UserRepository { return &userRepo{s} }

// Tasks returns the task repository view.
func (s *Store) Tasks() repository.TaskRepository { return &taskRepo{s} }

// Subtasks returns the subtask repository view.
func (s *Store) Subtasks() repository.SubtaskRepository { return &subtaskRepo{s} }

// Teams returns the team repository view.
func (s *Store) Teams() repository.TeamRepository { return &teamRepo{s} }

// TeamHistory returns the team history repository view.
func (s *Store) TeamHistory() repository.TeamHistoryRepository { return &historyRepo{s} }

// Timesheet returns the timesheet repository view.
func (s *Store) Timesheet() repository.TimesheetRepository { return &timesheetRepo{s} }

func (s *Store) stamp() (string, time.Time) {
	return uuid.NewString(), s.now()
}

func paginate[T any](items []T, limit, offset, fallback int) []T {
	if limit <= 0 {
		limit = fallback
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

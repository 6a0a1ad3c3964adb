package memory

import (
	"context"
	"sort"
	"time"

	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/repository"
	apperrors "github.com/spec-kit/task-service/pkg/util/errorutil"
)

type taskRepo struct{ s *Store }

func (r *taskRepo) Create(_ context.Context, task *domain.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	task.ID, task.CreatedAt = r.s.stamp()
	task.UpdatedAt = task.CreatedAt
	r.s.tasks[task.ID] = cloneTask(*task)
	return nil
}

func (r *taskRepo) Update(_ context.Context, task *domain.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.tasks[task.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	task.CreatedAt = existing.CreatedAt
	task.CompanyID = existing.CompanyID
	task.UpdatedAt = r.s.now()
	r.s.tasks[task.ID] = cloneTask(*task)
	return nil
}

func (r *taskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	task, ok := r.s.tasks[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	t := cloneTask(task)
	return &t, nil
}

func (r *taskRepo) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []domain.Task
	for _, task := range r.s.tasks {
		if filter.TeamID != nil && !domain.SameTeam(task.TeamID, filter.TeamID) {
			continue
		}
		if filter.CompanyID != nil && task.CompanyID != *filter.CompanyID {
			continue
		}
		result = append(result, cloneTask(task))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].UpdatedAt.Equal(result[j].UpdatedAt) {
			return result[i].UpdatedAt.After(result[j].UpdatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return paginate(result, filter.Limit, filter.Offset, 50), nil
}

func (r *taskRepo) CountByTeam(_ context.Context, teamID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := make([]domain.Task, 0, len(r.s.tasks))
	for _, task := range r.s.tasks {
		all = append(all, task)
	}
	return domain.TaskCount(teamID, all), nil
}

func (r *taskRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[id]; !ok {
		return apperrors.ErrNotFound
	}
	for lineID, line := range r.s.timesheet {
		if line.TaskID == id {
			delete(r.s.timesheet, lineID)
		}
	}
	for subtaskID, st := range r.s.subtasks {
		if st.ParentTaskID == id {
			delete(r.s.subtasks, subtaskID)
		}
	}
	delete(r.s.tasks, id)
	return nil
}

func cloneTask(t domain.Task) domain.Task {
	t.TeamID = cloneString(t.TeamID)
	t.Deadline = cloneTime(t.Deadline)
	return t
}

// releaseTeams clears the team reference of tasks owned by any of ids. Caller holds the lock.
func (s *Store) releaseTeams(ids map[string]struct{}, now time.Time) {
	for taskID, task := range s.tasks {
		if task.TeamID == nil {
			continue
		}
		if _, ok := ids[*task.TeamID]; ok {
			task.TeamID = nil
			task.UpdatedAt = now
			s.tasks[taskID] = task
		}
	}
}

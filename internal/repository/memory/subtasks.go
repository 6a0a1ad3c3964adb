package memory

import (
	"context"
	"sort"
	"time"

	"github.com/spec-kit/task-service/internal/domain"
	apperrors "github.com/spec-kit/task-service/pkg/util/errorutil"
)

type subtaskRepo struct{ s *Store }

func (r *subtaskRepo) Create(_ context.Context, subtask *domain.Subtask) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[subtask.ParentTaskID]; !ok {
		return apperrors.ErrNotFound
	}
	subtask.ID, subtask.CreatedAt = r.s.stamp()
	subtask.UpdatedAt = subtask.CreatedAt
	r.s.subtasks[subtask.ID] = cloneSubtask(*subtask)
	return nil
}

func (r *subtaskRepo) Update(_ context.Context, subtask *domain.Subtask) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.subtasks[subtask.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	subtask.CreatedAt = existing.CreatedAt
	subtask.UpdatedAt = r.s.now()
	r.s.subtasks[subtask.ID] = cloneSubtask(*subtask)
	return nil
}

func (r *subtaskRepo) GetByID(_ context.Context, id string) (*domain.Subtask, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.subtasks[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	c := cloneSubtask(st)
	return &c, nil
}

func (r *subtaskRepo) ListByTask(_ context.Context, taskID string) ([]domain.Subtask, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []domain.Subtask
	for _, st := range r.s.subtasks {
		if st.ParentTaskID == taskID {
			result = append(result, cloneSubtask(st))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Sequence != result[j].Sequence {
			return result[i].Sequence < result[j].Sequence
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *subtaskRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.subtasks[id]; !ok {
		return apperrors.ErrNotFound
	}
	r.s.detachLines(id)
	delete(r.s.subtasks, id)
	return nil
}

func (r *subtaskRepo) SyncParentDeadline(_ context.Context, taskID string, deadline *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	for id, st := range r.s.subtasks {
		if st.ParentTaskID != taskID {
			continue
		}
		st.ParentDeadline = cloneTime(deadline)
		st.UpdatedAt = now
		r.s.subtasks[id] = st
	}
	return nil
}

func cloneSubtask(st domain.Subtask) domain.Subtask {
	st.AssigneeID = cloneString(st.AssigneeID)
	st.Deadline = cloneTime(st.Deadline)
	st.ParentDeadline = cloneTime(st.ParentDeadline)
	return st
}

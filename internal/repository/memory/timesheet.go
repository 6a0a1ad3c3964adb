package memory

import (
	"context"
	"sort"

	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/repository"
	apperrors "github.com/spec-kit/task-service/pkg/util/errorutil"
)

type timesheetRepo struct{ s *Store }

func (r *timesheetRepo) Create(_ context.Context, line *domain.TimesheetLine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[line.TaskID]; !ok {
		return apperrors.ErrNotFound
	}
	line.ID, line.CreatedAt = r.s.stamp()
	line.UpdatedAt = line.CreatedAt
	r.s.timesheet[line.ID] = cloneLine(*line)
	return nil
}

func (r *timesheetRepo) Update(_ context.Context, line *domain.TimesheetLine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.timesheet[line.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	line.CreatedAt = existing.CreatedAt
	line.CompanyID = existing.CompanyID
	line.UpdatedAt = r.s.now()
	r.s.timesheet[line.ID] = cloneLine(*line)
	return nil
}

func (r *timesheetRepo) GetByID(_ context.Context, id string) (*domain.TimesheetLine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	line, ok := r.s.timesheet[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	l := cloneLine(line)
	return &l, nil
}

func (r *timesheetRepo) List(_ context.Context, filter repository.TimesheetFilter) ([]domain.TimesheetLine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []domain.TimesheetLine
	for _, line := range r.s.timesheet {
		if filter.TaskID != nil && line.TaskID != *filter.TaskID {
			continue
		}
		if filter.UserID != nil && line.UserID != *filter.UserID {
			continue
		}
		if filter.DateFrom != nil && line.Date.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && line.Date.After(*filter.DateTo) {
			continue
		}
		result = append(result, cloneLine(line))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return paginate(result, filter.Limit, filter.Offset, 100), nil
}

func (r *timesheetRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.timesheet[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.s.timesheet, id)
	return nil
}

func (r *timesheetRepo) RefreshSubtask(_ context.Context, subtaskID, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	for id, line := range r.s.timesheet {
		if line.SubtaskID == nil || *line.SubtaskID != subtaskID {
			continue
		}
		line.DisplayName = name
		line.UpdatedAt = now
		r.s.timesheet[id] = line
	}
	return nil
}

func (r *timesheetRepo) DetachSubtask(_ context.Context, subtaskID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.detachLines(subtaskID)
	return nil
}

// detachLines expects s.mu to be held.
func (s *Store) detachLines(subtaskID string) {
	now := s.now()
	for id, line := range s.timesheet {
		if line.SubtaskID == nil || *line.SubtaskID != subtaskID {
			continue
		}
		line.SubtaskID = nil
		line.Recompute(nil)
		line.UpdatedAt = now
		s.timesheet[id] = line
	}
}

func cloneLine(l domain.TimesheetLine) domain.TimesheetLine {
	l.SubtaskID = cloneString(l.SubtaskID)
	return l
}

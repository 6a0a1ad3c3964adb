package memory

import (
	"context"

	"github.com/spec-kit/task-service/internal/domain"
)

type historyRepo struct{ s *Store }

func (r *historyRepo) Create(_ context.Context, history *domain.TeamHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	history.ID, history.CreatedAt = r.s.stamp()
	entry := *history
	entry.ChangedByID = cloneString(history.ChangedByID)
	r.s.history = append(r.s.history, entry)
	return nil
}

func (r *historyRepo) ListByTeam(_ context.Context, teamID string) ([]domain.TeamHistory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []domain.TeamHistory
	for _, entry := range r.s.history {
		if entry.TeamID == teamID {
			result = append(result, entry)
		}
	}
	return result, nil
}

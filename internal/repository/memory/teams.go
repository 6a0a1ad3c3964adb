package memory

import (
	"context"
	"sort"

	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/repository"
	apperrors "github.com/spec-kit/task-service/pkg/util/errorutil"
)

type teamRepo struct{ s *Store }

func (r *teamRepo) Create(_ context.Context, team *domain.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	team.ID, team.CreatedAt = r.s.stamp()
	team.UpdatedAt = team.CreatedAt
	r.s.teams[team.ID] = cloneTeam(*team)
	r.s.members[team.ID] = uniqueSorted(team.MemberIDs)
	return nil
}

func (r *teamRepo) Update(_ context.Context, team *domain.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.teams[team.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	team.CreatedAt = existing.CreatedAt
	team.TaskCount = existing.TaskCount
	team.UpdatedAt = r.s.now()
	r.s.teams[team.ID] = cloneTeam(*team)
	r.s.members[team.ID] = uniqueSorted(team.MemberIDs)
	return nil
}

func (r *teamRepo) GetByID(_ context.Context, id string) (*domain.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	team, ok := r.s.teams[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	t := r.s.hydrateTeam(team)
	return &t, nil
}

func (r *teamRepo) List(_ context.Context, filter repository.TeamFilter) ([]domain.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []domain.Team
	for _, team := range r.s.teams {
		if !filter.IncludeInactive && !team.Active {
			continue
		}
		if filter.CompanyID != nil && team.CompanyID != *filter.CompanyID {
			continue
		}
		if filter.ParentTeamID != nil && !domain.SameTeam(team.ParentTeamID, filter.ParentTeamID) {
			continue
		}
		result = append(result, cloneTeam(team))
	}
	sortTeams(result)
	return result, nil
}

func (r *teamRepo) ParentOf(_ context.Context, id string) (*string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	team, ok := r.s.teams[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return cloneString(team.ParentTeamID), nil
}

func (r *teamRepo) SetTaskCount(_ context.Context, id string, count int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	team, ok := r.s.teams[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	team.TaskCount = count
	r.s.teams[id] = team
	return nil
}

func (r *teamRepo) Delete(_ context.Context, id string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.teams[id]; !ok {
		return nil, apperrors.ErrNotFound
	}

	subtree := map[string]struct{}{id: {}}
	order := []string{id}
	for i := 0; i < len(order); i++ {
		for childID, team := range r.s.teams {
			if team.ParentTeamID == nil || *team.ParentTeamID != order[i] {
				continue
			}
			if _, seen := subtree[childID]; seen {
				continue
			}
			subtree[childID] = struct{}{}
			order = append(order, childID)
		}
	}

	r.s.releaseTeams(subtree, r.s.now())
	kept := r.s.history[:0]
	for _, entry := range r.s.history {
		if _, ok := subtree[entry.TeamID]; !ok {
			kept = append(kept, entry)
		}
	}
	r.s.history = kept
	for _, teamID := range order {
		delete(r.s.teams, teamID)
		delete(r.s.members, teamID)
	}
	return order, nil
}

// hydrateTeam fills the derived member and child collections. Caller holds the lock.
func (s *Store) hydrateTeam(team domain.Team) domain.Team {
	t := cloneTeam(team)
	t.MemberIDs = append([]string(nil), s.members[team.ID]...)
	var children []domain.Team
	for _, other := range s.teams {
		if other.ParentTeamID != nil && *other.ParentTeamID == team.ID {
			children = append(children, other)
		}
	}
	sortTeams(children)
	t.ChildTeamIDs = nil
	for _, child := range children {
		t.ChildTeamIDs = append(t.ChildTeamIDs, child.ID)
	}
	return t
}

func sortTeams(teams []domain.Team) {
	sort.Slice(teams, func(i, j int) bool {
		if teams[i].Sequence != teams[j].Sequence {
			return teams[i].Sequence < teams[j].Sequence
		}
		return teams[i].Name < teams[j].Name
	})
}

func cloneTeam(t domain.Team) domain.Team {
	t.ParentTeamID = cloneString(t.ParentTeamID)
	t.MemberIDs = append([]string(nil), t.MemberIDs...)
	t.ChildTeamIDs = append([]string(nil), t.ChildTeamIDs...)
	return t
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

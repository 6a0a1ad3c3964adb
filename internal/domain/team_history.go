package domain

import "time"

// TeamTrackedField names a team attribute whose changes are recorded.
type TeamTrackedField string

const (
	TrackedTeamName    TeamTrackedField = "name"
	TrackedTeamManager TeamTrackedField = "manager_id"
)

// TeamHistory is an immutable change-tracking entry for a team.
type TeamHistory struct {
	ID          string
	TeamID      string
	ChangedByID *string
	Field       TeamTrackedField
	OldValue    string
	NewValue    string
	CreatedAt   time.Time
}

// TrackTeamChanges diffs the tracked fields of before and after.
func TrackTeamChanges(env Env, before, after *Team) []TeamHistory {
	var changedBy *string
	if env.UserID != "" {
		id := env.UserID
		changedBy = &id
	}
	var entries []TeamHistory
	add := func(field TeamTrackedField, oldVal, newVal string) {
		if oldVal == newVal {
			return
		}
		entries = append(entries, TeamHistory{
			TeamID:      after.ID,
			ChangedByID: changedBy,
			Field:       field,
			OldValue:    oldVal,
			NewValue:    newVal,
		})
	}
	add(TrackedTeamName, before.Name, after.Name)
	add(TrackedTeamManager, before.ManagerID, after.ManagerID)
	return entries
}

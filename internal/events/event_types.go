package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTaskCreated         EventType = "task_created"
	EventTaskTeamChanged     EventType = "task_team_changed"
	EventTaskDeadlineChanged EventType = "task_deadline_changed"
	EventTaskDeleted         EventType = "task_deleted"
	EventSubtaskRenamed      EventType = "subtask_renamed"
	EventSubtaskMoved        EventType = "subtask_moved"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TaskID    string      `json:"task_id"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TaskTeamPayload is carried by task created / team changed / deleted events.
type TaskTeamPayload struct {
	OldTeamID *string `json:"old_team_id,omitempty"`
	NewTeamID *string `json:"new_team_id,omitempty"`
}

// TaskDeadlinePayload carries the new parent deadline.
type TaskDeadlinePayload struct {
	Deadline *time.Time `json:"deadline,omitempty"`
}

// SubtaskPayload identifies the subtask behind a subtask event.
type SubtaskPayload struct {
	SubtaskID string `json:"subtask_id"`
	Name      string `json:"name,omitempty"`
}

package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/events"
)

// Clock returns the current time in the service's configured location.
type Clock func() time.Time

// NewClock reads the wall clock in loc.
func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return func() time.Time { return time.Now().In(loc) }
}

// ProgressPreviews stores uncommitted task progress computed while a task is edited.
type ProgressPreviews interface {
	SaveProgress(ctx context.Context, taskID string, progress float64) error
	LoadProgress(ctx context.Context, taskID string) (float64, bool, error)
	DiscardProgress(ctx context.Context, taskID string) error
}

func envFor(actor *domain.User, clock Clock) domain.Env {
	if clock == nil {
		clock = time.Now
	}
	env := domain.Env{Now: clock()}
	if actor != nil {
		env.UserID = actor.ID
		env.CompanyID = actor.CompanyID
	}
	return env
}

func actorID(actor *domain.User) string {
	if actor == nil {
		return ""
	}
	return actor.ID
}

// publish stamps and dispatches an event. Handler errors are returned because
// they leave stored derived fields stale.
func publish(ctx context.Context, dispatcher events.Dispatcher, event events.Event) error {
	if dispatcher == nil {
		return nil
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return dispatcher.Publish(ctx, event)
}

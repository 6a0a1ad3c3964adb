package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcher_InvokesHandlersInOrderAndJoinsErrors(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	var calls []string
	boom := errors.New("boom")

	d.Subscribe(EventTaskCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "first:"+e.TaskID)
		return boom
	})
	d.Subscribe(EventTaskCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.TaskID)
		return nil
	})
	d.Subscribe(EventTaskDeleted, func(context.Context, Event) error {
		t.Fatalf("unrelated handler must not run")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTaskCreated, TaskID: "t1"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined handler error, got %v", err)
	}
	if len(calls) != 2 || calls[0] != "first:t1" || calls[1] != "second:t1" {
		t.Fatalf("unexpected calls: %v", calls)
	}
}

func TestDispatcher_NoListeners(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	if err := d.Publish(context.Background(), Event{Type: EventSubtaskMoved}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

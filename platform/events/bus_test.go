package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"agency_portal_backend/platform/logger"
)

type stubEvent struct {
	BaseEvent
	name string
}

func (e stubEvent) EventName() string { return e.name }

func TestPublishSync_RunsHandlersInSubscriptionOrder(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))

	var order []int
	bus.Subscribe("lead.captured", HandlerFunc(func(context.Context, Event) error {
		order = append(order, 1)
		return nil
	}))
	bus.Subscribe("lead.captured", HandlerFunc(func(context.Context, Event) error {
		order = append(order, 2)
		return nil
	}))

	if err := bus.PublishSync(context.Background(), stubEvent{NewBaseEvent(), "lead.captured"}); err != nil {
		t.Fatalf("unexpected publish error: %v", err)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("expected handlers in order [1 2], got %v", order)
	}
}

func TestPublishSync_ReturnsFirstHandlerError(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))

	wantErr := errors.New("smtp down")
	var secondRan bool
	bus.Subscribe("milestone.completed", HandlerFunc(func(context.Context, Event) error {
		return wantErr
	}))
	bus.Subscribe("milestone.completed", HandlerFunc(func(context.Context, Event) error {
		secondRan = true
		return nil
	}))

	err := bus.PublishSync(context.Background(), stubEvent{NewBaseEvent(), "milestone.completed"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected handler error, got %v", err)
	}
	if secondRan {
		t.Fatalf("expected dispatch to stop after first error")
	}
}

func TestPublish_DoesNotDeliverToOtherEventTypes(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))

	delivered := make(chan string, 2)
	bus.Subscribe("lead.captured", HandlerFunc(func(_ context.Context, e Event) error {
		delivered <- e.EventName()
		return nil
	}))

	bus.Publish(context.Background(), stubEvent{NewBaseEvent(), "milestone.completed"})
	bus.Publish(context.Background(), stubEvent{NewBaseEvent(), "lead.captured"})

	select {
	case name := <-delivered:
		if name != "lead.captured" {
			t.Fatalf("expected lead.captured delivery, got %s", name)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expected async delivery of subscribed event")
	}

	select {
	case name := <-delivered:
		t.Fatalf("unexpected extra delivery: %s", name)
	case <-time.After(100 * time.Millisecond):
	}
}

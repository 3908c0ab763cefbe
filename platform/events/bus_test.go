package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"trainops_backend/platform/logger"
)

type testEvent struct {
	BaseEvent
	name string
}

func (e testEvent) EventName() string { return e.name }

func TestPublishDispatchesToSubscribers(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	done := make(chan string, 1)
	bus.Subscribe("thing.happened", HandlerFunc(func(_ context.Context, event Event) error {
		done <- event.EventName()
		return nil
	}))

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "thing.happened"})

	select {
	case name := <-done:
		if name != "thing.happened" {
			t.Fatalf("expected thing.happened, got %s", name)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler was never invoked")
	}
}

func TestPublishIgnoresUnsubscribedEvents(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	called := make(chan struct{}, 1)
	bus.Subscribe("other.event", HandlerFunc(func(context.Context, Event) error {
		called <- struct{}{}
		return nil
	}))

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "thing.happened"})

	select {
	case <-called:
		t.Fatal("handler for a different event must not fire")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPublishSyncJoinsHandlerErrors(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	wantErr := errors.New("delivery failed")
	bus.Subscribe("thing.happened", HandlerFunc(func(context.Context, Event) error { return nil }))
	bus.Subscribe("thing.happened", HandlerFunc(func(context.Context, Event) error { return wantErr }))

	err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "thing.happened"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected joined handler error, got %v", err)
	}
}

func TestPublishRecoversFromHandlerPanic(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	bus.Subscribe("thing.happened", HandlerFunc(func(context.Context, Event) error {
		panic("boom")
	}))

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "thing.happened"})
	time.Sleep(50 * time.Millisecond)
}

package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
)

type testSchedulerConfig struct {
	url   string
	queue string
}

func (c testSchedulerConfig) GetRedisURL() string       { return c.url }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string { return c.queue }

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}); err == nil {
		t.Fatal("expected error without redis url")
	}
}

func TestScheduleFollowUpReminderEnqueues(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{url: "redis://" + srv.Addr(), queue: "trainops"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()

	runAt := time.Now().Add(24 * time.Hour)
	if err := client.ScheduleFollowUpReminder(context.Background(), uuid.New(), runAt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// asynq keeps future tasks in the queue's scheduled set.
	if !srv.Exists("asynq:{trainops}:scheduled") {
		t.Fatalf("expected a scheduled task, redis keys: %v", srv.Keys())
	}
}

func TestFollowUpReminderPayloadRoundTrip(t *testing.T) {
	id := uuid.New().String()
	task, err := NewFollowUpReminderTask(FollowUpReminderPayload{EnquiryID: id})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Type() != TaskFollowUpReminder {
		t.Fatalf("expected task type %s, got %s", TaskFollowUpReminder, task.Type())
	}

	payload, err := ParseFollowUpReminderPayload(task)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.EnquiryID != id {
		t.Fatalf("expected enquiry id %s, got %s", id, payload.EnquiryID)
	}
}

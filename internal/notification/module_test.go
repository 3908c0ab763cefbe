package notification

import (
	"context"
	"testing"

	"trainops_backend/internal/email"
	"trainops_backend/internal/events"
	"trainops_backend/platform/logger"

	"github.com/google/uuid"
)

type testNotificationConfig struct{}

func (testNotificationConfig) GetAppBaseURL() string { return "https://console.example.com/" }

func newTestModule() *Module {
	return New(nil, email.NoopSender{}, testNotificationConfig{}, logger.New("development"))
}

// The guards below must short-circuit before any storage access; the
// module is constructed with a nil pool so a regression panics.

func TestHandleLeadsAssignedSkipsSelfAssignment(t *testing.T) {
	m := newTestModule()
	actor := uuid.New()

	err := m.Handle(context.Background(), events.LeadsAssigned{
		BaseEvent:  events.NewBaseEvent(),
		JobOrderID: uuid.New(),
		JobName:    "March intake",
		EnquiryIDs: []uuid.UUID{uuid.New()},
		ManagerID:  actor,
		AssignerID: actor,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHandleJobOrderReassignedSkipsSelfReassignment(t *testing.T) {
	m := newTestModule()
	actor := uuid.New()

	err := m.Handle(context.Background(), events.JobOrderReassigned{
		BaseEvent:      events.NewBaseEvent(),
		JobOrderID:     uuid.New(),
		NewManagerID:   actor,
		ReassignedByID: actor,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHandleJobLeadStatusChangedIgnoresPending(t *testing.T) {
	m := newTestModule()

	err := m.Handle(context.Background(), events.JobLeadStatusChanged{
		BaseEvent:   events.NewBaseEvent(),
		JobOrderID:  uuid.New(),
		JobLeadID:   uuid.New(),
		ManagerID:   uuid.New(),
		Status:      "PENDING",
		ChangedByID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHandleJobLeadStatusChangedIgnoresOwnClosure(t *testing.T) {
	m := newTestModule()
	manager := uuid.New()

	err := m.Handle(context.Background(), events.JobLeadStatusChanged{
		BaseEvent:   events.NewBaseEvent(),
		JobOrderID:  uuid.New(),
		JobLeadID:   uuid.New(),
		ManagerID:   manager,
		Status:      "CLOSED",
		ChangedByID: manager,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHandleEnquiryStatusChangedIgnoresUnassigned(t *testing.T) {
	m := newTestModule()

	err := m.Handle(context.Background(), events.EnquiryStatusChanged{
		BaseEvent:   events.NewBaseEvent(),
		EnquiryID:   uuid.New(),
		ChangedByID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHandleFollowUpDueIgnoresUnassigned(t *testing.T) {
	m := newTestModule()

	err := m.Handle(context.Background(), events.FollowUpDue{
		BaseEvent:   events.NewBaseEvent(),
		EnquiryID:   uuid.New(),
		EnquiryName: "Asha Verma",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBuildURLJoinsCleanly(t *testing.T) {
	m := newTestModule()

	got := m.buildURL("/job-orders/abc")
	want := "https://console.example.com/job-orders/abc"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

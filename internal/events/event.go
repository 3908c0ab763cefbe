// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"trainops_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Enquiry Domain Events
// =============================================================================

// EnquiryStatusChanged is published after a status transition commits,
// together with its audit activity row.
type EnquiryStatusChanged struct {
	BaseEvent
	EnquiryID        uuid.UUID  `json:"enquiryId"`
	PreviousStatus   string     `json:"previousStatus"`
	NewStatus        string     `json:"newStatus"`
	ChangedByID      uuid.UUID  `json:"changedById"`
	AssignedWorkerID *uuid.UUID `json:"assignedWorkerId,omitempty"`
	Direct           bool       `json:"direct"` // true for the direct-enrollment shortcut
}

func (e EnquiryStatusChanged) EventName() string { return "enquiries.status.changed" }

// =============================================================================
// Job Order Domain Events
// =============================================================================

// LeadsAssigned is published after a single or bulk assignment commits.
type LeadsAssigned struct {
	BaseEvent
	JobOrderID uuid.UUID   `json:"jobOrderId"`
	JobName    string      `json:"jobName"`
	EnquiryIDs []uuid.UUID `json:"enquiryIds"`
	ManagerID  uuid.UUID   `json:"managerId"`
	AssignerID uuid.UUID   `json:"assignerId"`
	BranchID   uuid.UUID   `json:"branchId"`
}

func (e LeadsAssigned) EventName() string { return "joborders.leads.assigned" }

// JobOrderReassigned is published when an order moves to a new manager.
type JobOrderReassigned struct {
	BaseEvent
	JobOrderID        uuid.UUID `json:"jobOrderId"`
	JobName           string    `json:"jobName"`
	PreviousManagerID uuid.UUID `json:"previousManagerId"`
	NewManagerID      uuid.UUID `json:"newManagerId"`
	ReassignedByID    uuid.UUID `json:"reassignedById"`
}

func (e JobOrderReassigned) EventName() string { return "joborders.reassigned" }

// JobLeadStatusChanged is published when a job lead flips between
// pending and closed.
type JobLeadStatusChanged struct {
	BaseEvent
	JobOrderID  uuid.UUID `json:"jobOrderId"`
	JobLeadID   uuid.UUID `json:"jobLeadId"`
	EnquiryID   uuid.UUID `json:"enquiryId"`
	ManagerID   uuid.UUID `json:"managerId"`
	Status      string    `json:"status"`
	ChangedByID uuid.UUID `json:"changedById"`
}

func (e JobLeadStatusChanged) EventName() string { return "joborders.joblead.status_changed" }

// =============================================================================
// Scheduler Events
// =============================================================================

// FollowUpDue fires when a scheduled follow-up reminder comes due and
// the enquiry is still waiting on it.
type FollowUpDue struct {
	BaseEvent
	EnquiryID   uuid.UUID  `json:"enquiryId"`
	EnquiryName string     `json:"enquiryName"`
	WorkerID    *uuid.UUID `json:"workerId,omitempty"`
}

func (e FollowUpDue) EventName() string { return "enquiries.followup.due" }

// NotificationOutboxDue fires when an outbox row's run_at has passed
// and it should be delivered.
type NotificationOutboxDue struct {
	BaseEvent
	OutboxID uuid.UUID `json:"outboxId"`
}

func (e NotificationOutboxDue) EventName() string { return "notification.outbox.due" }

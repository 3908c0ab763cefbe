// Package notification turns domain events into in-app notifications
// and outbox-backed emails. Domain modules publish events and never
// talk to the email provider directly; failures here are logged and
// swallowed so they cannot affect the originating operation.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"trainops_backend/internal/email"
	"trainops_backend/internal/events"
	apphttp "trainops_backend/internal/http"
	notifhandler "trainops_backend/internal/notification/handler"
	"trainops_backend/internal/notification/inapp"
	notificationoutbox "trainops_backend/internal/notification/outbox"
	"trainops_backend/platform/config"
	"trainops_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	kindAssignmentEmail   = "assignment_email"
	kindReassignmentEmail = "reassignment_email"
	kindFollowUpEmail     = "followup_email"

	maxOutboxRetryAttempts = 5
	outboxRetryBaseDelay   = time.Minute
	outboxRetryMaxDelay    = 60 * time.Minute
)

type assignmentEmailPayload struct {
	WorkerID   string `json:"workerId"`
	JobOrderID string `json:"jobOrderId"`
	JobName    string `json:"jobName"`
	LeadCount  int    `json:"leadCount"`
}

type reassignmentEmailPayload struct {
	ManagerID  string `json:"managerId"`
	JobOrderID string `json:"jobOrderId"`
	JobName    string `json:"jobName"`
}

type followUpEmailPayload struct {
	WorkerID    string `json:"workerId"`
	EnquiryID   string `json:"enquiryId"`
	EnquiryName string `json:"enquiryName"`
}

// Module handles all notification-related event subscriptions.
type Module struct {
	pool         *pgxpool.Pool
	sender       email.Sender
	cfg          config.NotificationConfig
	log          *logger.Logger
	outbox       *notificationoutbox.Repository
	inAppService *inapp.Service
	inAppHandler *notifhandler.HTTPHandler
}

// New creates the notification module.
func New(pool *pgxpool.Pool, sender email.Sender, cfg config.NotificationConfig, log *logger.Logger) *Module {
	inAppRepo := inapp.NewRepository(pool)
	inAppSvc := inapp.NewService(inAppRepo, log)

	return &Module{
		pool:         pool,
		sender:       sender,
		cfg:          cfg,
		log:          log,
		outbox:       notificationoutbox.New(pool),
		inAppService: inAppSvc,
		inAppHandler: notifhandler.NewHTTPHandler(inAppSvc),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "notification" }

// RegisterRoutes registers the in-app notification API routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	notifications := ctx.Protected.Group("/notifications")
	m.inAppHandler.RegisterRoutes(notifications)
}

// InAppService exposes the in-app notification service for tests and
// integration points.
func (m *Module) InAppService() *inapp.Service { return m.inAppService }

// Outbox exposes the outbox repository for the scheduler dispatcher.
func (m *Module) Outbox() *notificationoutbox.Repository { return m.outbox }

// RegisterHandlers subscribes to the domain events this module acts on.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.LeadsAssigned{}.EventName(), m)
	bus.Subscribe(events.JobOrderReassigned{}.EventName(), m)
	bus.Subscribe(events.JobLeadStatusChanged{}.EventName(), m)
	bus.Subscribe(events.EnquiryStatusChanged{}.EventName(), m)
	bus.Subscribe(events.FollowUpDue{}.EventName(), m)
	bus.Subscribe(events.NotificationOutboxDue{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadsAssigned:
		return m.handleLeadsAssigned(ctx, e)
	case events.JobOrderReassigned:
		return m.handleJobOrderReassigned(ctx, e)
	case events.JobLeadStatusChanged:
		return m.handleJobLeadStatusChanged(ctx, e)
	case events.EnquiryStatusChanged:
		return m.handleEnquiryStatusChanged(ctx, e)
	case events.FollowUpDue:
		return m.handleFollowUpDue(ctx, e)
	case events.NotificationOutboxDue:
		return m.handleOutboxDue(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleLeadsAssigned(ctx context.Context, e events.LeadsAssigned) error {
	// The assignment engine only publishes when manager != assigner,
	// but keep the guard local too.
	if e.ManagerID == e.AssignerID {
		return nil
	}

	orderID := e.JobOrderID
	content := fmt.Sprintf("%d lead(s) assigned to you under job order %q.", len(e.EnquiryIDs), e.JobName)
	if err := m.inAppService.Send(ctx, inapp.SendParams{
		UserID:       e.ManagerID,
		Title:        "New leads assigned",
		Content:      content,
		ResourceID:   &orderID,
		ResourceType: "job_order",
		Category:     "info",
	}); err != nil {
		m.log.Error("assignment notification failed", "jobOrderId", e.JobOrderID, "error", err)
	}

	m.enqueueEmail(ctx, kindAssignmentEmail, assignmentEmailPayload{
		WorkerID:   e.ManagerID.String(),
		JobOrderID: e.JobOrderID.String(),
		JobName:    e.JobName,
		LeadCount:  len(e.EnquiryIDs),
	})
	return nil
}

func (m *Module) handleJobOrderReassigned(ctx context.Context, e events.JobOrderReassigned) error {
	if e.NewManagerID == e.ReassignedByID {
		return nil
	}

	orderID := e.JobOrderID
	if err := m.inAppService.Send(ctx, inapp.SendParams{
		UserID:       e.NewManagerID,
		Title:        "Job order handed over to you",
		Content:      fmt.Sprintf("Job order %q is now under your management.", e.JobName),
		ResourceID:   &orderID,
		ResourceType: "job_order",
		Category:     "info",
	}); err != nil {
		m.log.Error("reassignment notification failed", "jobOrderId", e.JobOrderID, "error", err)
	}

	m.enqueueEmail(ctx, kindReassignmentEmail, reassignmentEmailPayload{
		ManagerID:  e.NewManagerID.String(),
		JobOrderID: e.JobOrderID.String(),
		JobName:    e.JobName,
	})
	return nil
}

func (m *Module) handleJobLeadStatusChanged(ctx context.Context, e events.JobLeadStatusChanged) error {
	// Only closures by someone other than the managing worker are
	// interesting to the manager.
	if e.Status != "CLOSED" || e.ChangedByID == e.ManagerID {
		return nil
	}

	orderID := e.JobOrderID
	if err := m.inAppService.Send(ctx, inapp.SendParams{
		UserID:       e.ManagerID,
		Title:        "Job lead closed",
		Content:      "A lead on one of your job orders was closed.",
		ResourceID:   &orderID,
		ResourceType: "job_order",
		Category:     "success",
	}); err != nil {
		m.log.Error("job lead notification failed", "jobLeadId", e.JobLeadID, "error", err)
	}
	return nil
}

func (m *Module) handleEnquiryStatusChanged(ctx context.Context, e events.EnquiryStatusChanged) error {
	if e.AssignedWorkerID == nil || *e.AssignedWorkerID == e.ChangedByID {
		return nil
	}

	enquiryID := e.EnquiryID
	if err := m.inAppService.Send(ctx, inapp.SendParams{
		UserID:       *e.AssignedWorkerID,
		Title:        "Lead status changed",
		Content:      fmt.Sprintf("One of your leads moved from %s to %s.", e.PreviousStatus, e.NewStatus),
		ResourceID:   &enquiryID,
		ResourceType: "enquiry",
		Category:     "info",
	}); err != nil {
		m.log.Error("status change notification failed", "enquiryId", e.EnquiryID, "error", err)
	}
	return nil
}

func (m *Module) handleFollowUpDue(ctx context.Context, e events.FollowUpDue) error {
	if e.WorkerID == nil {
		return nil
	}

	enquiryID := e.EnquiryID
	if err := m.inAppService.Send(ctx, inapp.SendParams{
		UserID:       *e.WorkerID,
		Title:        "Follow-up due",
		Content:      fmt.Sprintf("Your follow-up with %s is due today.", e.EnquiryName),
		ResourceID:   &enquiryID,
		ResourceType: "enquiry",
		Category:     "warning",
	}); err != nil {
		m.log.Error("follow-up notification failed", "enquiryId", e.EnquiryID, "error", err)
	}

	m.enqueueEmail(ctx, kindFollowUpEmail, followUpEmailPayload{
		WorkerID:    e.WorkerID.String(),
		EnquiryID:   e.EnquiryID.String(),
		EnquiryName: e.EnquiryName,
	})
	return nil
}

// handleOutboxDue delivers one claimed outbox row. Transient send
// failures push the row back to pending with backoff until the
// attempt budget runs out.
func (m *Module) handleOutboxDue(ctx context.Context, e events.NotificationOutboxDue) error {
	rec, err := m.outbox.GetByID(ctx, e.OutboxID)
	if err != nil {
		m.log.Warn("outbox record not found", "outboxId", e.OutboxID, "error", err)
		return nil
	}
	if rec.Status == notificationoutbox.StatusSucceeded || rec.Status == notificationoutbox.StatusFailed {
		return nil
	}

	if err := m.outbox.MarkProcessing(ctx, rec.ID); err != nil {
		m.log.Warn("outbox mark processing failed", "outboxId", rec.ID, "error", err)
		return nil
	}

	if sendErr := m.deliver(ctx, rec); sendErr != nil {
		attempts := rec.Attempts + 1
		if attempts >= maxOutboxRetryAttempts {
			_ = m.outbox.MarkFailed(ctx, rec.ID, sendErr.Error())
			m.log.Error("outbox delivery failed permanently", "outboxId", rec.ID, "kind", rec.Kind, "error", sendErr)
			return nil
		}
		delay := outboxRetryBaseDelay << uint(attempts)
		if delay > outboxRetryMaxDelay {
			delay = outboxRetryMaxDelay
		}
		msg := sendErr.Error()
		_ = m.outbox.MarkPending(ctx, rec.ID, time.Now().UTC().Add(delay), &msg)
		m.log.Warn("outbox delivery failed, will retry", "outboxId", rec.ID, "kind", rec.Kind, "attempts", attempts, "error", sendErr)
		return nil
	}

	_ = m.outbox.MarkSucceeded(ctx, rec.ID)
	m.log.Info("outbox delivered", "outboxId", rec.ID, "kind", rec.Kind)
	return nil
}

func (m *Module) deliver(ctx context.Context, rec notificationoutbox.Record) error {
	switch rec.Kind {
	case kindAssignmentEmail:
		var p assignmentEmailPayload
		if err := json.Unmarshal(rec.Payload, &p); err != nil {
			return fmt.Errorf("invalid payload: %w", err)
		}
		name, toEmail, err := m.resolveWorker(ctx, p.WorkerID)
		if err != nil {
			return err
		}
		link := m.buildURL("/job-orders/" + p.JobOrderID)
		return m.sender.SendAssignmentEmail(ctx, toEmail, name, p.JobName, p.LeadCount, link)
	case kindReassignmentEmail:
		var p reassignmentEmailPayload
		if err := json.Unmarshal(rec.Payload, &p); err != nil {
			return fmt.Errorf("invalid payload: %w", err)
		}
		name, toEmail, err := m.resolveWorker(ctx, p.ManagerID)
		if err != nil {
			return err
		}
		link := m.buildURL("/job-orders/" + p.JobOrderID)
		return m.sender.SendReassignmentEmail(ctx, toEmail, name, p.JobName, link)
	case kindFollowUpEmail:
		var p followUpEmailPayload
		if err := json.Unmarshal(rec.Payload, &p); err != nil {
			return fmt.Errorf("invalid payload: %w", err)
		}
		name, toEmail, err := m.resolveWorker(ctx, p.WorkerID)
		if err != nil {
			return err
		}
		link := m.buildURL("/enquiries/" + p.EnquiryID)
		return m.sender.SendFollowUpReminderEmail(ctx, toEmail, name, p.EnquiryName, link)
	default:
		return fmt.Errorf("unknown outbox kind %q", rec.Kind)
	}
}

func (m *Module) enqueueEmail(ctx context.Context, kind string, payload any) {
	id, err := m.outbox.Insert(ctx, notificationoutbox.InsertParams{
		Kind:    kind,
		Payload: payload,
		RunAt:   time.Now().UTC(),
	})
	if err != nil {
		m.log.Error("outbox enqueue failed", "kind", kind, "error", err)
		return
	}
	m.log.Info("outbox message enqueued", "outboxId", id, "kind", kind)
}

func (m *Module) resolveWorker(ctx context.Context, rawID string) (name, toEmail string, err error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return "", "", fmt.Errorf("invalid worker id: %w", err)
	}
	err = m.pool.QueryRow(ctx, `SELECT name, email FROM staff_workers WHERE id = $1`, id).Scan(&name, &toEmail)
	if err != nil {
		return "", "", fmt.Errorf("resolve worker %s: %w", id, err)
	}
	return name, toEmail, nil
}

func (m *Module) buildURL(path string) string {
	return strings.TrimRight(m.cfg.GetAppBaseURL(), "/") + path
}

var _ apphttp.Module = (*Module)(nil)

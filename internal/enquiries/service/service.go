// Package service provides business logic for enquiries: intake, the
// status state machine, and the audit trail around it.
package service

import (
	"context"
	"fmt"
	"time"

	"trainops_backend/internal/enquiries/domain"
	"trainops_backend/internal/enquiries/repository"
	"trainops_backend/internal/enquiries/transport"
	"trainops_backend/internal/events"
	staffdomain "trainops_backend/internal/staff/domain"
	"trainops_backend/platform/apperr"
	"trainops_backend/platform/logger"
	"trainops_backend/platform/phone"
	"trainops_backend/platform/sanitize"

	"github.com/google/uuid"
)

// FollowUpScheduler schedules a delayed follow-up reminder. Optional;
// without it follow-ups are recorded but never remind anyone.
type FollowUpScheduler interface {
	ScheduleFollowUpReminder(ctx context.Context, enquiryID uuid.UUID, runAt time.Time) error
}

// Service provides enquiry operations.
type Service struct {
	repo      repository.Repository
	bus       events.Bus
	log       *logger.Logger
	reminders FollowUpScheduler
}

// New creates the enquiries service.
func New(repo repository.Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

// SetFollowUpScheduler injects the reminder scheduler when redis is
// configured.
func (s *Service) SetFollowUpScheduler(scheduler FollowUpScheduler) {
	s.reminders = scheduler
}

// Create registers a new enquiry with status NEW. The phone number is
// normalized to E.164 before storage.
func (s *Service) Create(ctx context.Context, caller staffdomain.Caller, req transport.CreateEnquiryRequest) (repository.Enquiry, error) {
	enquiry, err := s.repo.Create(ctx, repository.CreateParams{
		Name:      sanitize.Text(req.Name),
		Phone:     phone.NormalizeE164(req.Phone),
		Email:     req.Email,
		BranchID:  req.BranchID,
		Source:    sanitize.Text(req.Source),
		Course:    sanitize.Text(req.Course),
		Notes:     sanitize.TextPtr(req.Notes),
		CreatedBy: caller.ID,
	})
	if err != nil {
		return repository.Enquiry{}, err
	}

	s.log.Info("enquiry created", "id", enquiry.ID, "branch", enquiry.BranchID, "source", enquiry.Source)
	return enquiry, nil
}

// Get loads a single enquiry.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (repository.Enquiry, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns enquiries scoped to the caller: restricted roles see
// only their own leads, branch managers see their branch.
func (s *Service) List(ctx context.Context, caller staffdomain.Caller, req transport.ListEnquiriesRequest) ([]repository.Enquiry, int, int, int, error) {
	page, limit := normalizePage(req.Page, req.Limit)

	params := repository.ListParams{
		Search:     req.Search,
		Unassigned: req.Unassigned,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	}

	if req.Status != "" {
		status, err := domain.ParseStatus(req.Status)
		if err != nil {
			return nil, 0, 0, 0, apperr.Validation("unknown status filter")
		}
		params.Status = &status
	}
	if req.BranchID != "" {
		branchID, err := uuid.Parse(req.BranchID)
		if err != nil {
			return nil, 0, 0, 0, apperr.Validation("invalid branch filter")
		}
		params.BranchID = &branchID
	}
	if req.AssignedTo != "" {
		workerID, err := uuid.Parse(req.AssignedTo)
		if err != nil {
			return nil, 0, 0, 0, apperr.Validation("invalid worker filter")
		}
		params.AssignedWorkerID = &workerID
	}

	switch {
	case caller.Role.RestrictedToOwnWork():
		callerID := caller.ID
		params.AssignedWorkerID = &callerID
		params.Unassigned = false
	case caller.Role == staffdomain.RoleManager && caller.BranchID != nil:
		params.BranchID = caller.BranchID
	}

	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	return items, total, page, limit, nil
}

// UpdateStatus performs a manual status transition and records the
// paired STATUS_CHANGE activity.
func (s *Service) UpdateStatus(ctx context.Context, caller staffdomain.Caller, id uuid.UUID, req transport.UpdateStatusRequest) (repository.Enquiry, error) {
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		return repository.Enquiry{}, apperr.Validation(fmt.Sprintf("unknown status %q", req.Status))
	}
	return s.transition(ctx, caller, id, status, domain.ActivityStatusChange, req.Remarks, false)
}

// EnrollDirect is the shortcut for a sale closed outside the admission
// workflow: forces ENROLLED with an ENROLLMENT_DIRECT audit entry.
func (s *Service) EnrollDirect(ctx context.Context, caller staffdomain.Caller, id uuid.UUID, req transport.EnrollDirectRequest) (repository.Enquiry, error) {
	return s.transition(ctx, caller, id, domain.StatusEnrolled, domain.ActivityEnrollmentDirect, req.Remarks, true)
}

// LogFollowUp moves the enquiry to FOLLOW_UP and records the planned
// date in the audit entry.
func (s *Service) LogFollowUp(ctx context.Context, caller staffdomain.Caller, id uuid.UUID, req transport.FollowUpRequest) (repository.Enquiry, error) {
	description := "Follow up on " + req.FollowUpDate
	if req.Remarks != nil && *req.Remarks != "" {
		description += ": " + *req.Remarks
	}
	enquiry, err := s.transition(ctx, caller, id, domain.StatusFollowUp, domain.ActivityFollowUp, &description, false)
	if err != nil {
		return repository.Enquiry{}, err
	}

	// Best effort: a reminder that fails to schedule does not undo
	// the recorded follow-up.
	if s.reminders != nil {
		if date, parseErr := time.Parse("2006-01-02", req.FollowUpDate); parseErr == nil {
			runAt := time.Date(date.Year(), date.Month(), date.Day(), 9, 0, 0, 0, time.UTC)
			if schedErr := s.reminders.ScheduleFollowUpReminder(ctx, id, runAt); schedErr != nil {
				s.log.Warn("follow-up reminder scheduling failed", "id", id, "error", schedErr)
			}
		}
	}
	return enquiry, nil
}

// LogCall records a call outcome: the outcome is the new status, the
// remarks become the audit description.
func (s *Service) LogCall(ctx context.Context, caller staffdomain.Caller, id uuid.UUID, req transport.CallLogRequest) (repository.Enquiry, error) {
	status, err := domain.ParseStatus(req.Outcome)
	if err != nil {
		return repository.Enquiry{}, apperr.Validation(fmt.Sprintf("unknown call outcome %q", req.Outcome))
	}
	return s.transition(ctx, caller, id, status, domain.ActivityCallLog, req.Remarks, false)
}

// ListActivities returns the enquiry's audit timeline, newest first.
func (s *Service) ListActivities(ctx context.Context, id uuid.UUID) ([]repository.Activity, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListActivities(ctx, id)
}

// Delete irreversibly removes an enquiry. Admin only.
func (s *Service) Delete(ctx context.Context, caller staffdomain.Caller, id uuid.UUID) error {
	if !caller.Role.CanDeleteEnquiries() {
		return apperr.Forbidden("only admins can delete enquiries")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("enquiry deleted", "id", id, "deletedBy", caller.ID)
	return nil
}

func (s *Service) transition(ctx context.Context, caller staffdomain.Caller, id uuid.UUID, status domain.Status, activityType domain.ActivityType, remarks *string, direct bool) (repository.Enquiry, error) {
	params := repository.StatusUpdateParams{
		EnquiryID:    id,
		NewStatus:    status,
		ActivityType: activityType,
		Remarks:      sanitize.TextPtr(remarks),
		ActorID:      caller.ID,
	}
	if caller.Role.RestrictedToOwnWork() {
		callerID := caller.ID
		params.RestrictToWorkerID = &callerID
	}

	result, err := s.repo.UpdateStatusWithActivity(ctx, params)
	if err != nil {
		return repository.Enquiry{}, err
	}

	s.log.Info("enquiry status changed",
		"id", id,
		"previous", result.Activity.PreviousStatus,
		"new", result.Activity.NewStatus,
		"type", activityType,
	)

	if s.bus != nil {
		s.bus.Publish(ctx, events.EnquiryStatusChanged{
			BaseEvent:        events.NewBaseEvent(),
			EnquiryID:        id,
			PreviousStatus:   string(result.Activity.PreviousStatus),
			NewStatus:        string(result.Activity.NewStatus),
			ChangedByID:      caller.ID,
			AssignedWorkerID: result.Enquiry.AssignedWorkerID,
			Direct:           direct,
		})
	}

	return result.Enquiry, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

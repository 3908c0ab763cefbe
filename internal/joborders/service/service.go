// Package service implements the assignment engine, the job lead
// status tracker, and the role-scoped job order query layer.
package service

import (
	"context"
	"strings"
	"time"

	"trainops_backend/internal/events"
	"trainops_backend/internal/joborders/domain"
	"trainops_backend/internal/joborders/repository"
	"trainops_backend/internal/joborders/transport"
	staffdomain "trainops_backend/internal/staff/domain"
	staffrepo "trainops_backend/internal/staff/repository"
	"trainops_backend/platform/apperr"
	"trainops_backend/platform/logger"
	"trainops_backend/platform/sanitize"

	"github.com/google/uuid"
)

// StaffDirectory is the slice of the staff read model the assignment
// preconditions need.
type StaffDirectory interface {
	GetWorker(ctx context.Context, id uuid.UUID) (staffrepo.Worker, error)
	BranchExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// JobOrderView is a job order with its derived progress attached.
type JobOrderView struct {
	repository.JobOrder
	Progress domain.Progress `json:"progress"`
}

// JobOrderDetailView is the single-record view: order, leads, progress.
type JobOrderDetailView struct {
	repository.JobOrder
	Leads    []repository.JobLead `json:"leads"`
	Progress domain.Progress      `json:"progress"`
}

// BulkAssignResult reports how many leads a bulk assignment covered.
type BulkAssignResult struct {
	JobOrder repository.JobOrder `json:"jobOrder"`
	Count    int                 `json:"count"`
}

// Service provides job order operations.
type Service struct {
	repo  repository.Repository
	staff StaffDirectory
	bus   events.Bus
	log   *logger.Logger
	now   func() time.Time
}

// New creates the job orders service.
func New(repo repository.Repository, staff StaffDirectory, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, staff: staff, bus: bus, log: log, now: time.Now}
}

// AssignOne assigns a single enquiry to a worker. An enquiry that is
// already assigned gets re-assigned: its old job lead is removed and a
// fresh job order is created.
func (s *Service) AssignOne(ctx context.Context, caller staffdomain.Caller, req transport.AssignOneRequest) (repository.JobOrder, error) {
	window, err := s.validateAssignment(ctx, caller, req.JobName, req.StartDate, req.EndDate, req.BranchID, req.WorkerID)
	if err != nil {
		return repository.JobOrder{}, err
	}

	order, err := s.repo.Assign(ctx, repository.AssignParams{
		EnquiryIDs:      []uuid.UUID{req.EnquiryID},
		ManagerID:       req.WorkerID,
		AssignerID:      caller.ID,
		BranchID:        req.BranchID,
		JobName:         sanitize.Text(req.JobName),
		Description:     sanitize.TextPtr(req.Description),
		Remarks:         sanitize.TextPtr(req.Remarks),
		StartDate:       window.start,
		EndDate:         window.end,
		ReplaceExisting: true,
	})
	if err != nil {
		return repository.JobOrder{}, err
	}

	s.afterAssignment(ctx, caller, order, []uuid.UUID{req.EnquiryID})
	return order, nil
}

// AssignBulk assigns a batch of unassigned enquiries to one worker
// under a single job order. All-or-nothing: one already-assigned lead
// fails the whole batch.
func (s *Service) AssignBulk(ctx context.Context, caller staffdomain.Caller, req transport.AssignBulkRequest) (BulkAssignResult, error) {
	window, err := s.validateAssignment(ctx, caller, req.JobName, req.StartDate, req.EndDate, req.BranchID, req.WorkerID)
	if err != nil {
		return BulkAssignResult{}, err
	}
	ids := dedupe(req.EnquiryIDs)

	order, err := s.repo.Assign(ctx, repository.AssignParams{
		EnquiryIDs:      ids,
		ManagerID:       req.WorkerID,
		AssignerID:      caller.ID,
		BranchID:        req.BranchID,
		JobName:         sanitize.Text(req.JobName),
		Description:     sanitize.TextPtr(req.Description),
		Remarks:         sanitize.TextPtr(req.Remarks),
		StartDate:       window.start,
		EndDate:         window.end,
		ReplaceExisting: false,
	})
	if err != nil {
		return BulkAssignResult{}, err
	}

	s.afterAssignment(ctx, caller, order, ids)
	return BulkAssignResult{JobOrder: order, Count: len(ids)}, nil
}

// Get returns one job order with leads and progress. Callers outside
// the scoping rule get Forbidden, not NotFound, so existence cannot be
// probed.
func (s *Service) Get(ctx context.Context, caller staffdomain.Caller, id uuid.UUID) (JobOrderDetailView, error) {
	detail, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return JobOrderDetailView{}, err
	}
	if !inScope(caller, detail.JobOrder) {
		return JobOrderDetailView{}, apperr.Forbidden("you do not have access to this job order")
	}

	closed := 0
	for _, lead := range detail.Leads {
		if lead.Status == domain.LeadClosed {
			closed++
		}
	}
	return JobOrderDetailView{
		JobOrder: detail.JobOrder,
		Leads:    detail.Leads,
		Progress: domain.ComputeProgress(len(detail.Leads), closed),
	}, nil
}

// List returns job orders scoped to the caller's role, with progress
// derived per row.
func (s *Service) List(ctx context.Context, caller staffdomain.Caller, req transport.ListJobOrdersRequest) ([]JobOrderView, int, int, int, error) {
	page, limit := normalizePage(req.Page, req.Limit)

	params := repository.ListParams{
		Pending:   req.Pending,
		Completed: req.Completed,
		Due:       req.Due,
		Search:    req.Search,
		Limit:     limit,
		Offset:    (page - 1) * limit,
	}
	if req.ManagerID != "" {
		managerID, err := uuid.Parse(req.ManagerID)
		if err != nil {
			return nil, 0, 0, 0, apperr.Validation("invalid manager filter")
		}
		params.ManagerID = &managerID
	}
	if req.BranchID != "" {
		branchID, err := uuid.Parse(req.BranchID)
		if err != nil {
			return nil, 0, 0, 0, apperr.Validation("invalid branch filter")
		}
		params.BranchID = &branchID
	}

	switch {
	case caller.Role == staffdomain.RoleAdmin:
		// Unrestricted, filters apply as given.
	case caller.Role == staffdomain.RoleManager && caller.BranchID != nil:
		params.BranchID = caller.BranchID
	default:
		callerID := caller.ID
		params.ManagerID = &callerID
	}

	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, 0, 0, err
	}

	views := make([]JobOrderView, 0, len(items))
	for _, item := range items {
		views = append(views, JobOrderView{
			JobOrder: item.JobOrder,
			Progress: domain.ComputeProgress(item.TotalLeads, item.ClosedLeads),
		})
	}
	return views, total, page, limit, nil
}

// Progress recomputes a job order's completion from its lead rows.
func (s *Service) Progress(ctx context.Context, jobOrderID uuid.UUID) (domain.Progress, error) {
	total, closed, err := s.repo.CountJobLeads(ctx, jobOrderID)
	if err != nil {
		return domain.Progress{}, err
	}
	return domain.ComputeProgress(total, closed), nil
}

// SetJobLeadStatus flips one job lead between PENDING and CLOSED.
// Self-restricted roles may only act on leads under orders they manage.
func (s *Service) SetJobLeadStatus(ctx context.Context, caller staffdomain.Caller, jobLeadID uuid.UUID, req transport.SetJobLeadStatusRequest) (repository.JobLead, error) {
	status, err := domain.ParseLeadStatus(req.Status)
	if err != nil {
		return repository.JobLead{}, err
	}

	detail, err := s.repo.GetJobLead(ctx, jobLeadID)
	if err != nil {
		return repository.JobLead{}, err
	}
	if caller.Role.RestrictedToOwnWork() && detail.OrderManagerID != caller.ID {
		return repository.JobLead{}, apperr.Forbidden("you can only update job leads assigned to you")
	}

	lead, err := s.repo.SetJobLeadStatus(ctx, jobLeadID, status)
	if err != nil {
		return repository.JobLead{}, err
	}

	s.log.Info("job lead status changed", "jobLeadId", jobLeadID, "status", status, "by", caller.ID)
	if s.bus != nil {
		s.bus.Publish(ctx, events.JobLeadStatusChanged{
			BaseEvent:   events.NewBaseEvent(),
			JobOrderID:  lead.JobOrderID,
			JobLeadID:   lead.ID,
			EnquiryID:   lead.EnquiryID,
			ManagerID:   detail.OrderManagerID,
			Status:      string(status),
			ChangedByID: caller.ID,
		})
	}
	return lead, nil
}

// Reassign moves a job order to a new manager in the same branch. The
// existing job leads stay attached.
func (s *Service) Reassign(ctx context.Context, caller staffdomain.Caller, jobOrderID uuid.UUID, req transport.ReassignRequest) (repository.JobOrder, error) {
	if !caller.Role.CanReassignJobOrders() {
		return repository.JobOrder{}, apperr.Forbidden("you are not allowed to reassign job orders")
	}

	detail, err := s.repo.GetByID(ctx, jobOrderID)
	if err != nil {
		return repository.JobOrder{}, err
	}
	manager, err := s.staff.GetWorker(ctx, req.NewManagerID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return repository.JobOrder{}, apperr.NotFound("worker not found")
		}
		return repository.JobOrder{}, err
	}
	if manager.BranchID == nil || *manager.BranchID != detail.BranchID {
		return repository.JobOrder{}, apperr.Validation("new manager is not in the job order's branch")
	}

	order, err := s.repo.Reassign(ctx, jobOrderID, req.NewManagerID)
	if err != nil {
		return repository.JobOrder{}, err
	}

	s.log.Info("job order reassigned", "jobOrderId", jobOrderID, "from", detail.ManagerID, "to", req.NewManagerID, "by", caller.ID)
	if s.bus != nil && req.NewManagerID != caller.ID {
		s.bus.Publish(ctx, events.JobOrderReassigned{
			BaseEvent:         events.NewBaseEvent(),
			JobOrderID:        order.ID,
			JobName:           order.Name,
			PreviousManagerID: detail.ManagerID,
			NewManagerID:      req.NewManagerID,
			ReassignedByID:    caller.ID,
		})
	}
	return order, nil
}

// Delete removes a job order and its job leads. Admin only.
func (s *Service) Delete(ctx context.Context, caller staffdomain.Caller, jobOrderID uuid.UUID) error {
	if !caller.Role.CanDeleteJobOrders() {
		return apperr.Forbidden("only admins can delete job orders")
	}
	if err := s.repo.Delete(ctx, jobOrderID); err != nil {
		return err
	}
	s.log.Info("job order deleted", "jobOrderId", jobOrderID, "deletedBy", caller.ID)
	return nil
}

type dateWindow struct {
	start time.Time
	end   time.Time
}

// validateAssignment runs the precondition ladder shared by single and
// bulk assignment. Checks run in order and each violation maps to its
// own error so the caller can tell which rule failed.
func (s *Service) validateAssignment(ctx context.Context, caller staffdomain.Caller, jobName, startDate, endDate string, branchID, workerID uuid.UUID) (dateWindow, error) {
	if !caller.Role.CanAssignLeads() {
		return dateWindow{}, apperr.Forbidden("you are not allowed to assign leads")
	}
	if strings.TrimSpace(jobName) == "" {
		return dateWindow{}, apperr.Validation("job name is required")
	}

	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return dateWindow{}, apperr.Validation("invalid start date")
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return dateWindow{}, apperr.Validation("invalid end date")
	}
	today := s.today()
	if start.Before(today) {
		return dateWindow{}, apperr.Validation("start date cannot be in the past")
	}
	if start.After(end) {
		return dateWindow{}, apperr.Validation("start date cannot be after end date")
	}

	exists, err := s.staff.BranchExists(ctx, branchID)
	if err != nil {
		return dateWindow{}, err
	}
	if !exists {
		return dateWindow{}, apperr.NotFound("branch not found")
	}

	worker, err := s.staff.GetWorker(ctx, workerID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return dateWindow{}, apperr.NotFound("worker not found")
		}
		return dateWindow{}, err
	}
	if worker.BranchID == nil {
		return dateWindow{}, apperr.Validation("worker has no branch assignment")
	}
	if *worker.BranchID != branchID {
		return dateWindow{}, apperr.Validation("worker is not in the chosen branch")
	}

	return dateWindow{start: start, end: end}, nil
}

func (s *Service) afterAssignment(ctx context.Context, caller staffdomain.Caller, order repository.JobOrder, enquiryIDs []uuid.UUID) {
	s.log.Info("leads assigned",
		"jobOrderId", order.ID,
		"manager", order.ManagerID,
		"count", len(enquiryIDs),
		"by", caller.ID,
	)
	if s.bus != nil && order.ManagerID != caller.ID {
		s.bus.Publish(ctx, events.LeadsAssigned{
			BaseEvent:  events.NewBaseEvent(),
			JobOrderID: order.ID,
			JobName:    order.Name,
			EnquiryIDs: enquiryIDs,
			ManagerID:  order.ManagerID,
			AssignerID: caller.ID,
			BranchID:   order.BranchID,
		})
	}
}

// today strips the time of day so the no-past-start rule compares
// calendar dates only.
func (s *Service) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// inScope applies the same scoping rule as List: admins see all,
// managers with a home branch see the branch, everyone else only
// orders they manage.
func inScope(caller staffdomain.Caller, order repository.JobOrder) bool {
	switch {
	case caller.Role == staffdomain.RoleAdmin:
		return true
	case caller.Role == staffdomain.RoleManager && caller.BranchID != nil:
		return order.BranchID == *caller.BranchID
	default:
		return order.ManagerID == caller.ID
	}
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
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

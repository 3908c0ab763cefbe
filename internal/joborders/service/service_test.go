package service

import (
	"context"
	"testing"
	"time"

	"trainops_backend/internal/joborders/domain"
	"trainops_backend/internal/joborders/repository"
	"trainops_backend/internal/joborders/transport"
	staffdomain "trainops_backend/internal/staff/domain"
	staffrepo "trainops_backend/internal/staff/repository"
	"trainops_backend/platform/apperr"
	"trainops_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	assignCalls  int
	assignParams repository.AssignParams
	assignErr    error
	assignResult repository.JobOrder

	getDetail repository.JobOrderDetail
	getErr    error

	listParams  repository.ListParams
	listResult  []repository.JobOrderSummary
	listTotal   int
	jobLead     repository.JobLeadDetail
	jobLeadErr  error
	setResult   repository.JobLead
	countTotal  int
	countClosed int

	reassignResult repository.JobOrder
	deleteCalls    int
}

func (f *fakeRepo) Assign(_ context.Context, params repository.AssignParams) (repository.JobOrder, error) {
	f.assignCalls++
	f.assignParams = params
	if f.assignErr != nil {
		return repository.JobOrder{}, f.assignErr
	}
	return f.assignResult, nil
}

func (f *fakeRepo) GetByID(context.Context, uuid.UUID) (repository.JobOrderDetail, error) {
	return f.getDetail, f.getErr
}

func (f *fakeRepo) List(_ context.Context, params repository.ListParams) ([]repository.JobOrderSummary, int, error) {
	f.listParams = params
	return f.listResult, f.listTotal, nil
}

func (f *fakeRepo) GetJobLead(context.Context, uuid.UUID) (repository.JobLeadDetail, error) {
	return f.jobLead, f.jobLeadErr
}

func (f *fakeRepo) SetJobLeadStatus(context.Context, uuid.UUID, domain.LeadStatus) (repository.JobLead, error) {
	return f.setResult, nil
}

func (f *fakeRepo) CountJobLeads(context.Context, uuid.UUID) (int, int, error) {
	return f.countTotal, f.countClosed, nil
}

func (f *fakeRepo) Reassign(context.Context, uuid.UUID, uuid.UUID) (repository.JobOrder, error) {
	return f.reassignResult, nil
}

func (f *fakeRepo) Delete(context.Context, uuid.UUID) error {
	f.deleteCalls++
	return nil
}

type fakeStaff struct {
	workers  map[uuid.UUID]staffrepo.Worker
	branches map[uuid.UUID]bool
}

func (f *fakeStaff) GetWorker(_ context.Context, id uuid.UUID) (staffrepo.Worker, error) {
	w, ok := f.workers[id]
	if !ok {
		return staffrepo.Worker{}, apperr.NotFound("worker not found")
	}
	return w, nil
}

func (f *fakeStaff) BranchExists(_ context.Context, id uuid.UUID) (bool, error) {
	return f.branches[id], nil
}

var fixedNow = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

func newTestService(repo *fakeRepo, staff *fakeStaff) *Service {
	s := New(repo, staff, nil, logger.New("development"))
	s.now = func() time.Time { return fixedNow }
	return s
}

func validAssignOneRequest(enquiryID, workerID, branchID uuid.UUID) transport.AssignOneRequest {
	return transport.AssignOneRequest{
		EnquiryID: enquiryID,
		WorkerID:  workerID,
		BranchID:  branchID,
		JobName:   "March intake",
		StartDate: "2026-03-11",
		EndDate:   "2026-03-20",
	}
}

func managerCaller(branchID uuid.UUID) staffdomain.Caller {
	return staffdomain.Caller{ID: uuid.New(), Role: staffdomain.RoleManager, BranchID: &branchID}
}

func TestAssignOneTelecallerForbidden(t *testing.T) {
	repo := &fakeRepo{}
	branchID := uuid.New()
	svc := newTestService(repo, &fakeStaff{branches: map[uuid.UUID]bool{branchID: true}})

	caller := staffdomain.Caller{ID: uuid.New(), Role: staffdomain.RoleTelecaller}
	_, err := svc.AssignOne(context.Background(), caller, validAssignOneRequest(uuid.New(), uuid.New(), branchID))

	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if repo.assignCalls != 0 {
		t.Fatalf("expected no repository call, got %d", repo.assignCalls)
	}
}

func TestAssignOneBlankJobName(t *testing.T) {
	branchID := uuid.New()
	svc := newTestService(&fakeRepo{}, &fakeStaff{branches: map[uuid.UUID]bool{branchID: true}})

	req := validAssignOneRequest(uuid.New(), uuid.New(), branchID)
	req.JobName = "   "
	_, err := svc.AssignOne(context.Background(), managerCaller(branchID), req)

	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAssignOneStartDateInPast(t *testing.T) {
	branchID := uuid.New()
	workerID := uuid.New()
	staff := &fakeStaff{
		branches: map[uuid.UUID]bool{branchID: true},
		workers:  map[uuid.UUID]staffrepo.Worker{workerID: {ID: workerID, BranchID: &branchID}},
	}
	svc := newTestService(&fakeRepo{}, staff)

	req := validAssignOneRequest(uuid.New(), workerID, branchID)
	req.StartDate = "2026-03-09"
	_, err := svc.AssignOne(context.Background(), managerCaller(branchID), req)

	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAssignOneStartOnTodayAllowed(t *testing.T) {
	branchID := uuid.New()
	workerID := uuid.New()
	staff := &fakeStaff{
		branches: map[uuid.UUID]bool{branchID: true},
		workers:  map[uuid.UUID]staffrepo.Worker{workerID: {ID: workerID, BranchID: &branchID}},
	}
	repo := &fakeRepo{assignResult: repository.JobOrder{ID: uuid.New(), ManagerID: workerID}}
	svc := newTestService(repo, staff)

	req := validAssignOneRequest(uuid.New(), workerID, branchID)
	req.StartDate = "2026-03-10"
	if _, err := svc.AssignOne(context.Background(), managerCaller(branchID), req); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestAssignOneStartAfterEnd(t *testing.T) {
	branchID := uuid.New()
	workerID := uuid.New()
	staff := &fakeStaff{
		branches: map[uuid.UUID]bool{branchID: true},
		workers:  map[uuid.UUID]staffrepo.Worker{workerID: {ID: workerID, BranchID: &branchID}},
	}
	svc := newTestService(&fakeRepo{}, staff)

	req := validAssignOneRequest(uuid.New(), workerID, branchID)
	req.StartDate = "2026-03-21"
	req.EndDate = "2026-03-20"
	_, err := svc.AssignOne(context.Background(), managerCaller(branchID), req)

	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAssignOneUnknownBranch(t *testing.T) {
	branchID := uuid.New()
	svc := newTestService(&fakeRepo{}, &fakeStaff{branches: map[uuid.UUID]bool{}})

	_, err := svc.AssignOne(context.Background(), managerCaller(branchID), validAssignOneRequest(uuid.New(), uuid.New(), branchID))

	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAssignOneWorkerOutsideBranch(t *testing.T) {
	branchID := uuid.New()
	otherBranch := uuid.New()
	workerID := uuid.New()
	staff := &fakeStaff{
		branches: map[uuid.UUID]bool{branchID: true},
		workers:  map[uuid.UUID]staffrepo.Worker{workerID: {ID: workerID, BranchID: &otherBranch}},
	}
	svc := newTestService(&fakeRepo{}, staff)

	_, err := svc.AssignOne(context.Background(), managerCaller(branchID), validAssignOneRequest(uuid.New(), workerID, branchID))

	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAssignOneReplacesExistingAssignment(t *testing.T) {
	branchID := uuid.New()
	workerID := uuid.New()
	staff := &fakeStaff{
		branches: map[uuid.UUID]bool{branchID: true},
		workers:  map[uuid.UUID]staffrepo.Worker{workerID: {ID: workerID, BranchID: &branchID}},
	}
	repo := &fakeRepo{assignResult: repository.JobOrder{ID: uuid.New(), ManagerID: workerID}}
	svc := newTestService(repo, staff)

	if _, err := svc.AssignOne(context.Background(), managerCaller(branchID), validAssignOneRequest(uuid.New(), workerID, branchID)); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if !repo.assignParams.ReplaceExisting {
		t.Fatal("single assignment should replace an existing job lead")
	}
}

func TestAssignBulkDeduplicatesAndCounts(t *testing.T) {
	branchID := uuid.New()
	workerID := uuid.New()
	staff := &fakeStaff{
		branches: map[uuid.UUID]bool{branchID: true},
		workers:  map[uuid.UUID]staffrepo.Worker{workerID: {ID: workerID, BranchID: &branchID}},
	}
	repo := &fakeRepo{assignResult: repository.JobOrder{ID: uuid.New(), ManagerID: workerID}}
	svc := newTestService(repo, staff)

	dup := uuid.New()
	req := transport.AssignBulkRequest{
		EnquiryIDs: []uuid.UUID{dup, uuid.New(), dup},
		WorkerID:   workerID,
		BranchID:   branchID,
		JobName:    "Bulk batch",
		StartDate:  "2026-03-11",
		EndDate:    "2026-03-20",
	}

	result, err := svc.AssignBulk(context.Background(), managerCaller(branchID), req)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if result.Count != 2 {
		t.Fatalf("expected 2 deduplicated leads, got %d", result.Count)
	}
	if repo.assignParams.ReplaceExisting {
		t.Fatal("bulk assignment must not replace existing job leads")
	}
	if len(repo.assignParams.EnquiryIDs) != 2 {
		t.Fatalf("expected 2 enquiry ids passed to repository, got %d", len(repo.assignParams.EnquiryIDs))
	}
}

func TestAssignBulkAllOrNothingOnConflict(t *testing.T) {
	branchID := uuid.New()
	workerID := uuid.New()
	staff := &fakeStaff{
		branches: map[uuid.UUID]bool{branchID: true},
		workers:  map[uuid.UUID]staffrepo.Worker{workerID: {ID: workerID, BranchID: &branchID}},
	}
	repo := &fakeRepo{assignErr: apperr.Conflict("some leads are already assigned")}
	svc := newTestService(repo, staff)

	req := transport.AssignBulkRequest{
		EnquiryIDs: []uuid.UUID{uuid.New(), uuid.New()},
		WorkerID:   workerID,
		BranchID:   branchID,
		JobName:    "Bulk batch",
		StartDate:  "2026-03-11",
		EndDate:    "2026-03-20",
	}

	_, err := svc.AssignBulk(context.Background(), managerCaller(branchID), req)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestGetOutOfScopeReturnsForbidden(t *testing.T) {
	orderBranch := uuid.New()
	repo := &fakeRepo{getDetail: repository.JobOrderDetail{
		JobOrder: repository.JobOrder{ID: uuid.New(), ManagerID: uuid.New(), BranchID: orderBranch},
	}}
	svc := newTestService(repo, &fakeStaff{})

	caller := staffdomain.Caller{ID: uuid.New(), Role: staffdomain.RoleTelecaller}
	_, err := svc.Get(context.Background(), caller, uuid.New())

	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden for out-of-scope caller, got %v", err)
	}
}

func TestGetComputesProgressFromLeads(t *testing.T) {
	managerID := uuid.New()
	orderID := uuid.New()
	repo := &fakeRepo{getDetail: repository.JobOrderDetail{
		JobOrder: repository.JobOrder{ID: orderID, ManagerID: managerID, BranchID: uuid.New()},
		Leads: []repository.JobLead{
			{Status: domain.LeadClosed},
			{Status: domain.LeadClosed},
			{Status: domain.LeadPending},
		},
	}}
	svc := newTestService(repo, &fakeStaff{})

	caller := staffdomain.Caller{ID: managerID, Role: staffdomain.RoleTelecaller}
	view, err := svc.Get(context.Background(), caller, orderID)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if view.Progress.Total != 3 || view.Progress.Closed != 2 {
		t.Fatalf("expected 2/3 closed, got %d/%d", view.Progress.Closed, view.Progress.Total)
	}
	if view.Progress.Percentage != 67 {
		t.Fatalf("expected 67%%, got %d", view.Progress.Percentage)
	}
}

func TestListScoping(t *testing.T) {
	branchID := uuid.New()

	t.Run("admin sees everything", func(t *testing.T) {
		repo := &fakeRepo{}
		svc := newTestService(repo, &fakeStaff{})
		caller := staffdomain.Caller{ID: uuid.New(), Role: staffdomain.RoleAdmin}

		if _, _, _, _, err := svc.List(context.Background(), caller, transport.ListJobOrdersRequest{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if repo.listParams.ManagerID != nil || repo.listParams.BranchID != nil {
			t.Fatal("admin listing must not be scoped")
		}
	})

	t.Run("branch manager scoped to branch", func(t *testing.T) {
		repo := &fakeRepo{}
		svc := newTestService(repo, &fakeStaff{})
		caller := managerCaller(branchID)

		if _, _, _, _, err := svc.List(context.Background(), caller, transport.ListJobOrdersRequest{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if repo.listParams.BranchID == nil || *repo.listParams.BranchID != branchID {
			t.Fatal("manager listing must be scoped to the home branch")
		}
	})

	t.Run("telecaller scoped to own orders", func(t *testing.T) {
		repo := &fakeRepo{}
		svc := newTestService(repo, &fakeStaff{})
		caller := staffdomain.Caller{ID: uuid.New(), Role: staffdomain.RoleTelecaller}

		if _, _, _, _, err := svc.List(context.Background(), caller, transport.ListJobOrdersRequest{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if repo.listParams.ManagerID == nil || *repo.listParams.ManagerID != caller.ID {
			t.Fatal("restricted roles must only see orders they manage")
		}
	})
}

func TestSetJobLeadStatusRestrictedToOwnOrders(t *testing.T) {
	repo := &fakeRepo{jobLead: repository.JobLeadDetail{
		JobLead:        repository.JobLead{ID: uuid.New(), Status: domain.LeadPending},
		OrderManagerID: uuid.New(),
	}}
	svc := newTestService(repo, &fakeStaff{})

	caller := staffdomain.Caller{ID: uuid.New(), Role: staffdomain.RoleCounselor}
	_, err := svc.SetJobLeadStatus(context.Background(), caller, uuid.New(), transport.SetJobLeadStatusRequest{Status: "CLOSED"})

	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestSetJobLeadStatusAcceptsLowercase(t *testing.T) {
	managerID := uuid.New()
	leadID := uuid.New()
	repo := &fakeRepo{
		jobLead:   repository.JobLeadDetail{JobLead: repository.JobLead{ID: leadID}, OrderManagerID: managerID},
		setResult: repository.JobLead{ID: leadID, Status: domain.LeadClosed},
	}
	svc := newTestService(repo, &fakeStaff{})

	caller := staffdomain.Caller{ID: managerID, Role: staffdomain.RoleTelecaller}
	lead, err := svc.SetJobLeadStatus(context.Background(), caller, leadID, transport.SetJobLeadStatusRequest{Status: "closed"})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if lead.Status != domain.LeadClosed {
		t.Fatalf("expected CLOSED, got %s", lead.Status)
	}
}

func TestReassignRejectsManagerOutsideBranch(t *testing.T) {
	orderBranch := uuid.New()
	otherBranch := uuid.New()
	newManagerID := uuid.New()
	repo := &fakeRepo{getDetail: repository.JobOrderDetail{
		JobOrder: repository.JobOrder{ID: uuid.New(), BranchID: orderBranch},
	}}
	staff := &fakeStaff{workers: map[uuid.UUID]staffrepo.Worker{
		newManagerID: {ID: newManagerID, BranchID: &otherBranch},
	}}
	svc := newTestService(repo, staff)

	caller := staffdomain.Caller{ID: uuid.New(), Role: staffdomain.RoleAdmin}
	_, err := svc.Reassign(context.Background(), caller, uuid.New(), transport.ReassignRequest{NewManagerID: newManagerID})

	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReassignForbiddenForRestrictedRoles(t *testing.T) {
	svc := newTestService(&fakeRepo{}, &fakeStaff{})

	caller := staffdomain.Caller{ID: uuid.New(), Role: staffdomain.RoleTelecaller}
	_, err := svc.Reassign(context.Background(), caller, uuid.New(), transport.ReassignRequest{NewManagerID: uuid.New()})

	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestDeleteAdminOnly(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, &fakeStaff{})

	manager := staffdomain.Caller{ID: uuid.New(), Role: staffdomain.RoleManager}
	if err := svc.Delete(context.Background(), manager, uuid.New()); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden for manager, got %v", err)
	}
	if repo.deleteCalls != 0 {
		t.Fatal("expected no delete call")
	}

	admin := staffdomain.Caller{ID: uuid.New(), Role: staffdomain.RoleAdmin}
	if err := svc.Delete(context.Background(), admin, uuid.New()); err != nil {
		t.Fatalf("expected success for admin, got %v", err)
	}
	if repo.deleteCalls != 1 {
		t.Fatalf("expected one delete call, got %d", repo.deleteCalls)
	}
}

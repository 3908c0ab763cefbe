package service

import (
	"context"
	"testing"
	"time"

	"trainops_backend/internal/enquiries/domain"
	"trainops_backend/internal/enquiries/repository"
	"trainops_backend/internal/enquiries/transport"
	staffdomain "trainops_backend/internal/staff/domain"
	"trainops_backend/platform/apperr"
	"trainops_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	createParams repository.CreateParams
	createResult repository.Enquiry

	getResult repository.Enquiry
	getErr    error

	listParams repository.ListParams

	updateParams repository.StatusUpdateParams
	updateResult repository.StatusUpdateResult
	updateErr    error

	activities  []repository.Activity
	deleteCalls int
}

func (f *fakeRepo) Create(_ context.Context, params repository.CreateParams) (repository.Enquiry, error) {
	f.createParams = params
	return f.createResult, nil
}

func (f *fakeRepo) GetByID(context.Context, uuid.UUID) (repository.Enquiry, error) {
	return f.getResult, f.getErr
}

func (f *fakeRepo) List(_ context.Context, params repository.ListParams) ([]repository.Enquiry, int, error) {
	f.listParams = params
	return nil, 0, nil
}

func (f *fakeRepo) UpdateStatusWithActivity(_ context.Context, params repository.StatusUpdateParams) (repository.StatusUpdateResult, error) {
	f.updateParams = params
	if f.updateErr != nil {
		return repository.StatusUpdateResult{}, f.updateErr
	}
	return f.updateResult, nil
}

func (f *fakeRepo) ListActivities(context.Context, uuid.UUID) ([]repository.Activity, error) {
	return f.activities, nil
}

func (f *fakeRepo) Delete(context.Context, uuid.UUID) error {
	f.deleteCalls++
	return nil
}

type fakeScheduler struct {
	calls []time.Time
	err   error
}

func (f *fakeScheduler) ScheduleFollowUpReminder(_ context.Context, _ uuid.UUID, runAt time.Time) error {
	f.calls = append(f.calls, runAt)
	return f.err
}

func adminCaller() staffdomain.Caller {
	return staffdomain.Caller{ID: uuid.New(), Role: staffdomain.RoleAdmin}
}

func TestCreateNormalizesAndSanitizesInput(t *testing.T) {
	repo := &fakeRepo{createResult: repository.Enquiry{ID: uuid.New()}}
	svc := New(repo, nil, logger.New("development"))

	notes := "<script>alert(1)</script>call after 6pm"
	_, err := svc.Create(context.Background(), adminCaller(), transport.CreateEnquiryRequest{
		Name:     "  Asha Verma <b>  ",
		Phone:    "98765 43210",
		BranchID: uuid.New(),
		Source:   "walk-in",
		Course:   "Data Science",
		Notes:    &notes,
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if repo.createParams.Name != "Asha Verma" {
		t.Fatalf("expected sanitized name, got %q", repo.createParams.Name)
	}
	if repo.createParams.Phone != "+919876543210" {
		t.Fatalf("expected E.164 phone, got %q", repo.createParams.Phone)
	}
	if repo.createParams.Notes == nil || *repo.createParams.Notes != "alert(1)call after 6pm" {
		t.Fatalf("expected stripped notes, got %v", repo.createParams.Notes)
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc := New(&fakeRepo{}, nil, logger.New("development"))

	_, err := svc.UpdateStatus(context.Background(), adminCaller(), uuid.New(), transport.UpdateStatusRequest{Status: "MAYBE"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateStatusPairsActivityWithWrite(t *testing.T) {
	enquiryID := uuid.New()
	repo := &fakeRepo{updateResult: repository.StatusUpdateResult{
		Enquiry: repository.Enquiry{ID: enquiryID, Status: domain.StatusContacted},
		Activity: repository.Activity{
			EnquiryID:      enquiryID,
			Type:           domain.ActivityStatusChange,
			PreviousStatus: domain.StatusNew,
			NewStatus:      domain.StatusContacted,
		},
	}}
	svc := New(repo, nil, logger.New("development"))

	enquiry, err := svc.UpdateStatus(context.Background(), adminCaller(), enquiryID, transport.UpdateStatusRequest{Status: "contacted"})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if enquiry.Status != domain.StatusContacted {
		t.Fatalf("expected CONTACTED, got %s", enquiry.Status)
	}
	if repo.updateParams.ActivityType != domain.ActivityStatusChange {
		t.Fatalf("expected STATUS_CHANGE activity, got %s", repo.updateParams.ActivityType)
	}
	if repo.updateParams.NewStatus != domain.StatusContacted {
		t.Fatalf("expected status parsed case-insensitively, got %s", repo.updateParams.NewStatus)
	}
}

func TestUpdateStatusRestrictsSelfScopedRoles(t *testing.T) {
	repo := &fakeRepo{updateResult: repository.StatusUpdateResult{}}
	svc := New(repo, nil, logger.New("development"))

	caller := staffdomain.Caller{ID: uuid.New(), Role: staffdomain.RoleTelecaller}
	if _, err := svc.UpdateStatus(context.Background(), caller, uuid.New(), transport.UpdateStatusRequest{Status: "CONTACTED"}); err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if repo.updateParams.RestrictToWorkerID == nil || *repo.updateParams.RestrictToWorkerID != caller.ID {
		t.Fatal("telecaller transition must be restricted to own leads")
	}
}

func TestEnrollDirectForcesEnrolledWithDirectActivity(t *testing.T) {
	repo := &fakeRepo{updateResult: repository.StatusUpdateResult{
		Enquiry: repository.Enquiry{Status: domain.StatusEnrolled},
	}}
	svc := New(repo, nil, logger.New("development"))

	if _, err := svc.EnrollDirect(context.Background(), adminCaller(), uuid.New(), transport.EnrollDirectRequest{}); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if repo.updateParams.NewStatus != domain.StatusEnrolled {
		t.Fatalf("expected ENROLLED, got %s", repo.updateParams.NewStatus)
	}
	if repo.updateParams.ActivityType != domain.ActivityEnrollmentDirect {
		t.Fatalf("expected ENROLLMENT_DIRECT activity, got %s", repo.updateParams.ActivityType)
	}
}

func TestLogFollowUpSchedulesReminder(t *testing.T) {
	repo := &fakeRepo{updateResult: repository.StatusUpdateResult{
		Enquiry: repository.Enquiry{Status: domain.StatusFollowUp},
	}}
	svc := New(repo, nil, logger.New("development"))
	sched := &fakeScheduler{}
	svc.SetFollowUpScheduler(sched)

	_, err := svc.LogFollowUp(context.Background(), adminCaller(), uuid.New(), transport.FollowUpRequest{FollowUpDate: "2026-04-02"})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if repo.updateParams.ActivityType != domain.ActivityFollowUp {
		t.Fatalf("expected FOLLOW_UP activity, got %s", repo.updateParams.ActivityType)
	}
	if len(sched.calls) != 1 {
		t.Fatalf("expected one reminder scheduled, got %d", len(sched.calls))
	}
	want := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	if !sched.calls[0].Equal(want) {
		t.Fatalf("expected reminder at %v, got %v", want, sched.calls[0])
	}
}

func TestLogFollowUpSurvivesSchedulerFailure(t *testing.T) {
	repo := &fakeRepo{updateResult: repository.StatusUpdateResult{
		Enquiry: repository.Enquiry{Status: domain.StatusFollowUp},
	}}
	svc := New(repo, nil, logger.New("development"))
	svc.SetFollowUpScheduler(&fakeScheduler{err: context.DeadlineExceeded})

	if _, err := svc.LogFollowUp(context.Background(), adminCaller(), uuid.New(), transport.FollowUpRequest{FollowUpDate: "2026-04-02"}); err != nil {
		t.Fatalf("reminder failure must not fail the follow-up, got %v", err)
	}
}

func TestLogCallUsesOutcomeAsStatus(t *testing.T) {
	repo := &fakeRepo{updateResult: repository.StatusUpdateResult{
		Enquiry: repository.Enquiry{Status: domain.StatusNotInterested},
	}}
	svc := New(repo, nil, logger.New("development"))

	if _, err := svc.LogCall(context.Background(), adminCaller(), uuid.New(), transport.CallLogRequest{Outcome: "not_interested"}); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if repo.updateParams.NewStatus != domain.StatusNotInterested {
		t.Fatalf("expected NOT_INTERESTED, got %s", repo.updateParams.NewStatus)
	}
	if repo.updateParams.ActivityType != domain.ActivityCallLog {
		t.Fatalf("expected CALL_LOG activity, got %s", repo.updateParams.ActivityType)
	}
}

func TestListScopesRestrictedRolesToOwnLeads(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(repo, nil, logger.New("development"))

	caller := staffdomain.Caller{ID: uuid.New(), Role: staffdomain.RoleCounselor}
	if _, _, _, _, err := svc.List(context.Background(), caller, transport.ListEnquiriesRequest{Unassigned: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.listParams.AssignedWorkerID == nil || *repo.listParams.AssignedWorkerID != caller.ID {
		t.Fatal("counselor listing must be scoped to own leads")
	}
	if repo.listParams.Unassigned {
		t.Fatal("restricted roles cannot browse the unassigned pool")
	}
}

func TestListScopesManagerToBranch(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(repo, nil, logger.New("development"))

	branchID := uuid.New()
	caller := staffdomain.Caller{ID: uuid.New(), Role: staffdomain.RoleManager, BranchID: &branchID}
	if _, _, _, _, err := svc.List(context.Background(), caller, transport.ListEnquiriesRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.listParams.BranchID == nil || *repo.listParams.BranchID != branchID {
		t.Fatal("manager listing must be scoped to the home branch")
	}
}

func TestDeleteAdminOnly(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(repo, nil, logger.New("development"))

	manager := staffdomain.Caller{ID: uuid.New(), Role: staffdomain.RoleManager}
	if err := svc.Delete(context.Background(), manager, uuid.New()); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden for manager, got %v", err)
	}

	if err := svc.Delete(context.Background(), adminCaller(), uuid.New()); err != nil {
		t.Fatalf("expected success for admin, got %v", err)
	}
	if repo.deleteCalls != 1 {
		t.Fatalf("expected one delete call, got %d", repo.deleteCalls)
	}
}

package repository

import (
	"context"

	"github.com/google/uuid"

	"trainops_backend/internal/joborders/domain"
)

// Repository defines persistence for job orders and their job leads.
type Repository interface {
	// Assign runs the whole assignment as one transaction: lock the
	// target enquiries, re-validate the unassigned precondition (or
	// clear stale job leads when replacing), update assigned_worker_id,
	// insert the job order and one job lead per enquiry.
	Assign(ctx context.Context, params AssignParams) (JobOrder, error)

	// GetByID loads a job order together with its job leads.
	GetByID(ctx context.Context, id uuid.UUID) (JobOrderDetail, error)

	// List returns job orders matching the params plus the total count.
	List(ctx context.Context, params ListParams) ([]JobOrderSummary, int, error)

	// GetJobLead loads one job lead with its parent order's manager and
	// branch for access checks.
	GetJobLead(ctx context.Context, id uuid.UUID) (JobLeadDetail, error)

	// SetJobLeadStatus updates a single job lead's status.
	SetJobLeadStatus(ctx context.Context, id uuid.UUID, status domain.LeadStatus) (JobLead, error)

	// CountJobLeads returns total and closed lead counts for an order.
	CountJobLeads(ctx context.Context, jobOrderID uuid.UUID) (total, closed int, err error)

	// Reassign swaps the order's manager. Job leads stay attached.
	Reassign(ctx context.Context, jobOrderID, newManagerID uuid.UUID) (JobOrder, error)

	// Delete removes the order and, by cascade, its job leads.
	Delete(ctx context.Context, jobOrderID uuid.UUID) error
}

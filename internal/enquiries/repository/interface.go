package repository

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence boundary for enquiries and their audit
// trail. The status-changing method writes the status and its activity
// entry in one transaction; a status write without its paired activity
// is an invariant violation.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Enquiry, error)
	GetByID(ctx context.Context, id uuid.UUID) (Enquiry, error)
	List(ctx context.Context, params ListParams) ([]Enquiry, int, error)
	UpdateStatusWithActivity(ctx context.Context, params StatusUpdateParams) (StatusUpdateResult, error)
	ListActivities(ctx context.Context, enquiryID uuid.UUID) ([]Activity, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

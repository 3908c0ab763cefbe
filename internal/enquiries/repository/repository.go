// Package repository provides pgx-backed persistence for enquiries.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trainops_backend/internal/enquiries/domain"
	"trainops_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opCreate       = "enquiries.repository.create"
	opGetByID      = "enquiries.repository.get_by_id"
	opList         = "enquiries.repository.list"
	opUpdateStatus = "enquiries.repository.update_status"
	opDelete       = "enquiries.repository.delete"

	enquiryColumns = `id, name, phone, email, branch_id, source, course, status,
		assigned_worker_id, last_contact_date, notes, created_by, created_at, updated_at`
)

// Enquiry is an inbound sales lead record. Branch, source, course and
// creator are immutable after creation.
type Enquiry struct {
	ID               uuid.UUID     `json:"id"`
	Name             string        `json:"name"`
	Phone            string        `json:"phone"`
	Email            *string       `json:"email,omitempty"`
	BranchID         uuid.UUID     `json:"branchId"`
	Source           string        `json:"source"`
	Course           string        `json:"course"`
	Status           domain.Status `json:"status"`
	AssignedWorkerID *uuid.UUID    `json:"assignedWorkerId,omitempty"`
	LastContactDate  *time.Time    `json:"lastContactDate,omitempty"`
	Notes            *string       `json:"notes,omitempty"`
	CreatedBy        uuid.UUID     `json:"createdBy"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// CreateParams holds the immutable intake fields plus contact details.
type CreateParams struct {
	Name      string
	Phone     string
	Email     *string
	BranchID  uuid.UUID
	Source    string
	Course    string
	Notes     *string
	CreatedBy uuid.UUID
}

// ListParams filters and paginates the enquiry listing.
type ListParams struct {
	Status           *domain.Status
	BranchID         *uuid.UUID
	AssignedWorkerID *uuid.UUID
	Unassigned       bool
	Search           string
	Limit            int
	Offset           int
}

// StatusUpdateParams drives the transactional status write.
// RestrictToWorkerID, when set, rejects the update unless the enquiry
// is assigned to exactly that worker.
type StatusUpdateParams struct {
	EnquiryID          uuid.UUID
	NewStatus          domain.Status
	ActivityType       domain.ActivityType
	Remarks            *string
	ActorID            uuid.UUID
	RestrictToWorkerID *uuid.UUID
}

// StatusUpdateResult carries the updated enquiry and its audit entry.
type StatusUpdateResult struct {
	Enquiry  Enquiry
	Activity Activity
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

// New creates the enquiries repository.
func New(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, params CreateParams) (Enquiry, error) {
	var e Enquiry
	err := r.pool.QueryRow(ctx, `
		INSERT INTO enquiries (name, phone, email, branch_id, source, course, status, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+enquiryColumns+`
	`, params.Name, params.Phone, params.Email, params.BranchID, params.Source,
		params.Course, domain.StatusNew, params.Notes, params.CreatedBy,
	).Scan(scanTargets(&e)...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Enquiry{}, apperr.Validation("invalid branch reference").WithOp(opCreate)
		}
		return Enquiry{}, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("create enquiry failed: %v", err), err).WithOp(opCreate)
	}
	return e, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id uuid.UUID) (Enquiry, error) {
	var e Enquiry
	err := r.pool.QueryRow(ctx, `
		SELECT `+enquiryColumns+` FROM enquiries WHERE id = $1
	`, id).Scan(scanTargets(&e)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return Enquiry{}, apperr.NotFound("enquiry not found").WithOp(opGetByID)
	}
	if err != nil {
		return Enquiry{}, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("get enquiry failed: %v", err), err).WithOp(opGetByID)
	}
	return e, nil
}

func (r *pgxRepository) List(ctx context.Context, params ListParams) ([]Enquiry, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.Status != nil {
		where += " AND status = " + arg(*params.Status)
	}
	if params.BranchID != nil {
		where += " AND branch_id = " + arg(*params.BranchID)
	}
	if params.AssignedWorkerID != nil {
		where += " AND assigned_worker_id = " + arg(*params.AssignedWorkerID)
	}
	if params.Unassigned {
		where += " AND assigned_worker_id IS NULL"
	}
	if params.Search != "" {
		pattern := "%" + params.Search + "%"
		placeholder := arg(pattern)
		where += fmt.Sprintf(" AND (name ILIKE %s OR phone ILIKE %s OR email ILIKE %s)", placeholder, placeholder, placeholder)
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM enquiries"+where, args...).Scan(&total); err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("count enquiries failed: %v", err), err).WithOp(opList)
	}

	query := "SELECT " + enquiryColumns + " FROM enquiries" + where +
		" ORDER BY created_at DESC LIMIT " + arg(params.Limit) + " OFFSET " + arg(params.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("list enquiries failed: %v", err), err).WithOp(opList)
	}
	defer rows.Close()

	items := make([]Enquiry, 0, params.Limit)
	for rows.Next() {
		var e Enquiry
		if scanErr := rows.Scan(scanTargets(&e)...); scanErr != nil {
			return nil, 0, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("scan enquiry failed: %v", scanErr), scanErr).WithOp(opList)
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}

// UpdateStatusWithActivity writes the new status and its audit entry in
// one transaction. The current row is locked first so the recorded
// previous status can never race with a concurrent transition.
func (r *pgxRepository) UpdateStatusWithActivity(ctx context.Context, params StatusUpdateParams) (StatusUpdateResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return StatusUpdateResult{}, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("begin tx failed: %v", err), err).WithOp(opUpdateStatus)
	}
	defer tx.Rollback(ctx)

	var previous domain.Status
	var assignedWorkerID *uuid.UUID
	err = tx.QueryRow(ctx, `
		SELECT status, assigned_worker_id FROM enquiries WHERE id = $1 FOR UPDATE
	`, params.EnquiryID).Scan(&previous, &assignedWorkerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return StatusUpdateResult{}, apperr.NotFound("enquiry not found").WithOp(opUpdateStatus)
	}
	if err != nil {
		return StatusUpdateResult{}, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("lock enquiry failed: %v", err), err).WithOp(opUpdateStatus)
	}

	if params.RestrictToWorkerID != nil {
		if assignedWorkerID == nil || *assignedWorkerID != *params.RestrictToWorkerID {
			return StatusUpdateResult{}, apperr.Forbidden("you can only update leads assigned to you").WithOp(opUpdateStatus)
		}
	}

	var e Enquiry
	err = tx.QueryRow(ctx, `
		UPDATE enquiries
		SET status = $2, last_contact_date = now(), updated_at = now()
		WHERE id = $1
		RETURNING `+enquiryColumns+`
	`, params.EnquiryID, params.NewStatus).Scan(scanTargets(&e)...)
	if err != nil {
		return StatusUpdateResult{}, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("update status failed: %v", err), err).WithOp(opUpdateStatus)
	}

	activity, err := insertActivityTx(ctx, tx, activityInsert{
		EnquiryID:      params.EnquiryID,
		Type:           params.ActivityType,
		Title:          domain.ActivityTitle(params.ActivityType, previous, params.NewStatus),
		Description:    params.Remarks,
		PreviousStatus: previous,
		NewStatus:      params.NewStatus,
		CreatedBy:      params.ActorID,
	})
	if err != nil {
		return StatusUpdateResult{}, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("insert activity failed: %v", err), err).WithOp(opUpdateStatus)
	}

	if err := tx.Commit(ctx); err != nil {
		return StatusUpdateResult{}, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("commit failed: %v", err), err).WithOp(opUpdateStatus)
	}

	return StatusUpdateResult{Enquiry: e, Activity: activity}, nil
}

func (r *pgxRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Child activities and job leads go with the enquiry (FK cascade).
	tag, err := r.pool.Exec(ctx, `DELETE FROM enquiries WHERE id = $1`, id)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, fmt.Sprintf("delete enquiry failed: %v", err), err).WithOp(opDelete)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("enquiry not found").WithOp(opDelete)
	}
	return nil
}

func scanTargets(e *Enquiry) []any {
	return []any{
		&e.ID, &e.Name, &e.Phone, &e.Email, &e.BranchID, &e.Source, &e.Course,
		&e.Status, &e.AssignedWorkerID, &e.LastContactDate, &e.Notes,
		&e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	}
}

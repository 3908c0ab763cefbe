// Package repository provides pgx-backed persistence for job orders.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trainops_backend/internal/joborders/domain"
	"trainops_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opAssign           = "joborders.repository.assign"
	opGetByID          = "joborders.repository.get_by_id"
	opList             = "joborders.repository.list"
	opGetJobLead       = "joborders.repository.get_job_lead"
	opSetJobLeadStatus = "joborders.repository.set_job_lead_status"
	opCountJobLeads    = "joborders.repository.count_job_leads"
	opReassign         = "joborders.repository.reassign"
	opDelete           = "joborders.repository.delete"

	jobOrderColumns = `id, code, name, description, remarks, manager_id, assigner_id,
		branch_id, start_date, end_date, created_at, updated_at`
	jobLeadColumns = `id, job_order_id, enquiry_id, status, assigner_id, assignee_id, created_at, updated_at`
)

// JobOrder is one fulfillment assignment batch.
type JobOrder struct {
	ID          uuid.UUID `json:"id"`
	Code        *string   `json:"code,omitempty"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Remarks     *string   `json:"remarks,omitempty"`
	ManagerID   uuid.UUID `json:"managerId"`
	AssignerID  uuid.UUID `json:"assignerId"`
	BranchID    uuid.UUID `json:"branchId"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// JobLead binds one enquiry to one job order with its own sub-status.
type JobLead struct {
	ID         uuid.UUID         `json:"id"`
	JobOrderID uuid.UUID         `json:"jobOrderId"`
	EnquiryID  uuid.UUID         `json:"enquiryId"`
	Status     domain.LeadStatus `json:"status"`
	AssignerID uuid.UUID         `json:"assignerId"`
	AssigneeID uuid.UUID         `json:"assigneeId"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// JobOrderDetail is an order with its leads loaded in the same read.
type JobOrderDetail struct {
	JobOrder
	Leads []JobLead `json:"leads"`
}

// JobOrderSummary is a listing row with live lead counts attached so
// progress can be derived without a second query per order.
type JobOrderSummary struct {
	JobOrder
	TotalLeads  int `json:"-"`
	ClosedLeads int `json:"-"`
}

// JobLeadDetail is a job lead with its parent order's manager and
// branch, loaded for access checks.
type JobLeadDetail struct {
	JobLead
	OrderManagerID uuid.UUID
	OrderBranchID  uuid.UUID
}

// AssignParams drives the assignment transaction. ReplaceExisting is
// set for single re-assignment (stale job leads are deleted first);
// when false every target must be unassigned or the call fails.
type AssignParams struct {
	EnquiryIDs      []uuid.UUID
	ManagerID       uuid.UUID
	AssignerID      uuid.UUID
	BranchID        uuid.UUID
	JobName         string
	Description     *string
	Remarks         *string
	StartDate       time.Time
	EndDate         time.Time
	ReplaceExisting bool
}

// ListParams filters and paginates the job order listing. Scoping is
// decided by the service; the repository applies whatever is set.
type ListParams struct {
	ManagerID *uuid.UUID
	BranchID  *uuid.UUID
	Pending   bool
	Completed bool
	Due       bool
	Search    string
	Limit     int
	Offset    int
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

// New creates the job orders repository.
func New(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

// Assign executes the full assignment atomically. The target enquiries
// are locked first so the unassigned precondition cannot race with a
// concurrent assignment; the unique index on job_leads.enquiry_id is
// the declarative backstop.
func (r *pgxRepository) Assign(ctx context.Context, params AssignParams) (JobOrder, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return JobOrder{}, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("begin tx failed: %v", err), err).WithOp(opAssign)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT id, assigned_worker_id FROM enquiries WHERE id = ANY($1) FOR UPDATE
	`, params.EnquiryIDs)
	if err != nil {
		return JobOrder{}, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("lock enquiries failed: %v", err), err).WithOp(opAssign)
	}
	assigned := 0
	found := make(map[uuid.UUID]bool, len(params.EnquiryIDs))
	for rows.Next() {
		var id uuid.UUID
		var workerID *uuid.UUID
		if scanErr := rows.Scan(&id, &workerID); scanErr != nil {
			rows.Close()
			return JobOrder{}, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("scan enquiry failed: %v", scanErr), scanErr).WithOp(opAssign)
		}
		found[id] = true
		if workerID != nil {
			assigned++
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return JobOrder{}, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("lock enquiries failed: %v", err), err).WithOp(opAssign)
	}
	for _, id := range params.EnquiryIDs {
		if !found[id] {
			return JobOrder{}, apperr.NotFound("enquiry not found").WithOp(opAssign)
		}
	}

	if params.ReplaceExisting {
		if _, err := tx.Exec(ctx, `DELETE FROM job_leads WHERE enquiry_id = ANY($1)`, params.EnquiryIDs); err != nil {
			return JobOrder{}, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("clear stale job leads failed: %v", err), err).WithOp(opAssign)
		}
	} else {
		var attached int
		err := tx.QueryRow(ctx, `
			SELECT COUNT(*) FROM job_leads WHERE enquiry_id = ANY($1)
		`, params.EnquiryIDs).Scan(&attached)
		if err != nil {
			return JobOrder{}, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("check job leads failed: %v", err), err).WithOp(opAssign)
		}
		if assigned > 0 || attached > 0 {
			return JobOrder{}, apperr.Conflict("some leads are already assigned").WithOp(opAssign)
		}
	}

	if _, err := tx.Exec(ctx, `
		UPDATE enquiries SET assigned_worker_id = $2, updated_at = now() WHERE id = ANY($1)
	`, params.EnquiryIDs, params.ManagerID); err != nil {
		return JobOrder{}, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("update enquiries failed: %v", err), err).WithOp(opAssign)
	}

	var order JobOrder
	err = tx.QueryRow(ctx, `
		INSERT INTO job_orders (name, description, remarks, manager_id, assigner_id, branch_id, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+jobOrderColumns+`
	`, params.JobName, params.Description, params.Remarks, params.ManagerID,
		params.AssignerID, params.BranchID, params.StartDate, params.EndDate,
	).Scan(orderScanTargets(&order)...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return JobOrder{}, apperr.Validation("invalid branch or worker reference").WithOp(opAssign)
		}
		return JobOrder{}, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("insert job order failed: %v", err), err).WithOp(opAssign)
	}

	for _, enquiryID := range params.EnquiryIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO job_leads (job_order_id, enquiry_id, status, assigner_id, assignee_id)
			VALUES ($1, $2, $3, $4, $5)
		`, order.ID, enquiryID, domain.LeadPending, params.AssignerID, params.ManagerID); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return JobOrder{}, apperr.Conflict("some leads are already assigned").WithOp(opAssign)
			}
			return JobOrder{}, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("insert job lead failed: %v", err), err).WithOp(opAssign)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return JobOrder{}, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("commit failed: %v", err), err).WithOp(opAssign)
	}
	return order, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id uuid.UUID) (JobOrderDetail, error) {
	var detail JobOrderDetail
	err := r.pool.QueryRow(ctx, `
		SELECT `+jobOrderColumns+` FROM job_orders WHERE id = $1
	`, id).Scan(orderScanTargets(&detail.JobOrder)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return JobOrderDetail{}, apperr.NotFound("job order not found").WithOp(opGetByID)
	}
	if err != nil {
		return JobOrderDetail{}, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("get job order failed: %v", err), err).WithOp(opGetByID)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+jobLeadColumns+` FROM job_leads WHERE job_order_id = $1 ORDER BY created_at
	`, id)
	if err != nil {
		return JobOrderDetail{}, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("list job leads failed: %v", err), err).WithOp(opGetByID)
	}
	defer rows.Close()

	detail.Leads = make([]JobLead, 0)
	for rows.Next() {
		var lead JobLead
		if scanErr := rows.Scan(leadScanTargets(&lead)...); scanErr != nil {
			return JobOrderDetail{}, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("scan job lead failed: %v", scanErr), scanErr).WithOp(opGetByID)
		}
		detail.Leads = append(detail.Leads, lead)
	}
	return detail, rows.Err()
}

func (r *pgxRepository) List(ctx context.Context, params ListParams) ([]JobOrderSummary, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.ManagerID != nil {
		where += " AND j.manager_id = " + arg(*params.ManagerID)
	}
	if params.BranchID != nil {
		where += " AND j.branch_id = " + arg(*params.BranchID)
	}
	if params.Pending {
		where += " AND EXISTS (SELECT 1 FROM job_leads jl WHERE jl.job_order_id = j.id AND jl.status = 'PENDING')"
	}
	if params.Completed {
		where += ` AND EXISTS (SELECT 1 FROM job_leads jl WHERE jl.job_order_id = j.id)
			AND NOT EXISTS (SELECT 1 FROM job_leads jl WHERE jl.job_order_id = j.id AND jl.status = 'PENDING')`
	}
	if params.Due {
		where += ` AND j.end_date < CURRENT_DATE
			AND EXISTS (SELECT 1 FROM job_leads jl WHERE jl.job_order_id = j.id AND jl.status = 'PENDING')`
	}
	if params.Search != "" {
		pattern := "%" + params.Search + "%"
		placeholder := arg(pattern)
		where += fmt.Sprintf(" AND (j.name ILIKE %s OR j.code ILIKE %s)", placeholder, placeholder)
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM job_orders j"+where, args...).Scan(&total); err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("count job orders failed: %v", err), err).WithOp(opList)
	}

	query := `SELECT j.id, j.code, j.name, j.description, j.remarks, j.manager_id, j.assigner_id,
			j.branch_id, j.start_date, j.end_date, j.created_at, j.updated_at,
			(SELECT COUNT(*) FROM job_leads jl WHERE jl.job_order_id = j.id) AS total_leads,
			(SELECT COUNT(*) FROM job_leads jl WHERE jl.job_order_id = j.id AND jl.status = 'CLOSED') AS closed_leads
		FROM job_orders j` + where +
		" ORDER BY j.created_at DESC LIMIT " + arg(params.Limit) + " OFFSET " + arg(params.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("list job orders failed: %v", err), err).WithOp(opList)
	}
	defer rows.Close()

	items := make([]JobOrderSummary, 0, params.Limit)
	for rows.Next() {
		var s JobOrderSummary
		targets := append(orderScanTargets(&s.JobOrder), &s.TotalLeads, &s.ClosedLeads)
		if scanErr := rows.Scan(targets...); scanErr != nil {
			return nil, 0, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("scan job order failed: %v", scanErr), scanErr).WithOp(opList)
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

// getJobLeadQuery joins the parent order so the service can run its
// manager access check without a second read.
const getJobLeadQuery = `
	SELECT jl.id, jl.job_order_id, jl.enquiry_id, jl.status, jl.assigner_id, jl.assignee_id,
		jl.created_at, jl.updated_at, j.manager_id, j.branch_id
	FROM job_leads jl
	JOIN job_orders j ON j.id = jl.job_order_id
	WHERE jl.id = $1`

func (r *pgxRepository) GetJobLead(ctx context.Context, id uuid.UUID) (JobLeadDetail, error) {
	var d JobLeadDetail
	err := r.pool.QueryRow(ctx, getJobLeadQuery, id).Scan(&d.ID, &d.JobOrderID, &d.EnquiryID, &d.Status, &d.AssignerID, &d.AssigneeID,
		&d.CreatedAt, &d.UpdatedAt, &d.OrderManagerID, &d.OrderBranchID)
	if errors.Is(err, pgx.ErrNoRows) {
		return JobLeadDetail{}, apperr.NotFound("job lead not found").WithOp(opGetJobLead)
	}
	if err != nil {
		return JobLeadDetail{}, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("get job lead failed: %v", err), err).WithOp(opGetJobLead)
	}
	return d, nil
}

func (r *pgxRepository) SetJobLeadStatus(ctx context.Context, id uuid.UUID, status domain.LeadStatus) (JobLead, error) {
	var lead JobLead
	err := r.pool.QueryRow(ctx, `
		UPDATE job_leads SET status = $2, updated_at = now() WHERE id = $1
		RETURNING `+jobLeadColumns+`
	`, id, status).Scan(leadScanTargets(&lead)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return JobLead{}, apperr.NotFound("job lead not found").WithOp(opSetJobLeadStatus)
	}
	if err != nil {
		return JobLead{}, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("update job lead failed: %v", err), err).WithOp(opSetJobLeadStatus)
	}
	return lead, nil
}

func (r *pgxRepository) CountJobLeads(ctx context.Context, jobOrderID uuid.UUID) (int, int, error) {
	var total, closed int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'CLOSED')
		FROM job_leads WHERE job_order_id = $1
	`, jobOrderID).Scan(&total, &closed)
	if err != nil {
		return 0, 0, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("count job leads failed: %v", err), err).WithOp(opCountJobLeads)
	}
	return total, closed, nil
}

func (r *pgxRepository) Reassign(ctx context.Context, jobOrderID, newManagerID uuid.UUID) (JobOrder, error) {
	var order JobOrder
	err := r.pool.QueryRow(ctx, `
		UPDATE job_orders SET manager_id = $2, updated_at = now() WHERE id = $1
		RETURNING `+jobOrderColumns+`
	`, jobOrderID, newManagerID).Scan(orderScanTargets(&order)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return JobOrder{}, apperr.NotFound("job order not found").WithOp(opReassign)
	}
	if err != nil {
		return JobOrder{}, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("reassign job order failed: %v", err), err).WithOp(opReassign)
	}
	return order, nil
}

func (r *pgxRepository) Delete(ctx context.Context, jobOrderID uuid.UUID) error {
	// Job leads go with the order (FK cascade).
	tag, err := r.pool.Exec(ctx, `DELETE FROM job_orders WHERE id = $1`, jobOrderID)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, fmt.Sprintf("delete job order failed: %v", err), err).WithOp(opDelete)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("job order not found").WithOp(opDelete)
	}
	return nil
}

func orderScanTargets(o *JobOrder) []any {
	return []any{
		&o.ID, &o.Code, &o.Name, &o.Description, &o.Remarks, &o.ManagerID,
		&o.AssignerID, &o.BranchID, &o.StartDate, &o.EndDate, &o.CreatedAt, &o.UpdatedAt,
	}
}

func leadScanTargets(l *JobLead) []any {
	return []any{
		&l.ID, &l.JobOrderID, &l.EnquiryID, &l.Status, &l.AssignerID,
		&l.AssigneeID, &l.CreatedAt, &l.UpdatedAt,
	}
}

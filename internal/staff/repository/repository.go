// Package repository provides pgx-backed access to branches and staff
// workers. Account management itself lives in the identity provider;
// this is the read side other modules validate against.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trainops_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opGetWorker    = "staff.repository.get_worker"
	opListWorkers  = "staff.repository.list_workers"
	opGetBranch    = "staff.repository.get_branch"
	opBranchExists = "staff.repository.branch_exists"
	opListBranches = "staff.repository.list_branches"
)

// Worker is a staff member who can be assigned fulfillment work.
type Worker struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	BranchID  *uuid.UUID `json:"branchId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Branch is an operating location of the business.
type Branch struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	CreatedAt time.Time `json:"createdAt"`
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

// New creates the staff repository.
func New(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) GetWorker(ctx context.Context, id uuid.UUID) (Worker, error) {
	var w Worker
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, role, branch_id, created_at
		FROM staff_workers
		WHERE id = $1
	`, id).Scan(&w.ID, &w.Name, &w.Email, &w.Role, &w.BranchID, &w.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Worker{}, apperr.NotFound("worker not found").WithOp(opGetWorker)
	}
	if err != nil {
		return Worker{}, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("get worker failed: %v", err), err).WithOp(opGetWorker)
	}
	return w, nil
}

func (r *pgxRepository) ListWorkers(ctx context.Context, branchID *uuid.UUID) ([]Worker, error) {
	query := `
		SELECT id, name, email, role, branch_id, created_at
		FROM staff_workers
	`
	args := []any{}
	if branchID != nil {
		query += ` WHERE branch_id = $1`
		args = append(args, *branchID)
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("list workers failed: %v", err), err).WithOp(opListWorkers)
	}
	defer rows.Close()

	workers := make([]Worker, 0)
	for rows.Next() {
		var w Worker
		if scanErr := rows.Scan(&w.ID, &w.Name, &w.Email, &w.Role, &w.BranchID, &w.CreatedAt); scanErr != nil {
			return nil, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("scan worker failed: %v", scanErr), scanErr).WithOp(opListWorkers)
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

func (r *pgxRepository) GetBranch(ctx context.Context, id uuid.UUID) (Branch, error) {
	var b Branch
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, city, created_at
		FROM branches
		WHERE id = $1
	`, id).Scan(&b.ID, &b.Name, &b.City, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Branch{}, apperr.NotFound("branch not found").WithOp(opGetBranch)
	}
	if err != nil {
		return Branch{}, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("get branch failed: %v", err), err).WithOp(opGetBranch)
	}
	return b, nil
}

func (r *pgxRepository) BranchExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM branches WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("branch exists failed: %v", err), err).WithOp(opBranchExists)
	}
	return exists, nil
}

func (r *pgxRepository) ListBranches(ctx context.Context) ([]Branch, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, city, created_at
		FROM branches
		ORDER BY name
	`)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("list branches failed: %v", err), err).WithOp(opListBranches)
	}
	defer rows.Close()

	branches := make([]Branch, 0)
	for rows.Next() {
		var b Branch
		if scanErr := rows.Scan(&b.ID, &b.Name, &b.City, &b.CreatedAt); scanErr != nil {
			return nil, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("scan branch failed: %v", scanErr), scanErr).WithOp(opListBranches)
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

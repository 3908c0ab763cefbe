// Package service provides read operations over staff and branches.
package service

import (
	"context"

	"trainops_backend/internal/staff/repository"

	"github.com/google/uuid"
)

// Service exposes the staff read model to handlers and other modules.
type Service struct {
	repo repository.Repository
}

// New creates the staff service.
func New(repo repository.Repository) *Service {
	return &Service{repo: repo}
}

// GetWorker loads a single worker.
func (s *Service) GetWorker(ctx context.Context, id uuid.UUID) (repository.Worker, error) {
	return s.repo.GetWorker(ctx, id)
}

// ListWorkers lists workers, optionally scoped to one branch.
func (s *Service) ListWorkers(ctx context.Context, branchID *uuid.UUID) ([]repository.Worker, error) {
	return s.repo.ListWorkers(ctx, branchID)
}

// GetBranch loads a single branch.
func (s *Service) GetBranch(ctx context.Context, id uuid.UUID) (repository.Branch, error) {
	return s.repo.GetBranch(ctx, id)
}

// BranchExists reports whether the branch id references a real branch.
func (s *Service) BranchExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.repo.BranchExists(ctx, id)
}

// ListBranches lists every branch.
func (s *Service) ListBranches(ctx context.Context) ([]repository.Branch, error) {
	return s.repo.ListBranches(ctx)
}

package repository

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the read model over branches and staff workers.
type Repository interface {
	GetWorker(ctx context.Context, id uuid.UUID) (Worker, error)
	ListWorkers(ctx context.Context, branchID *uuid.UUID) ([]Worker, error)
	GetBranch(ctx context.Context, id uuid.UUID) (Branch, error)
	BranchExists(ctx context.Context, id uuid.UUID) (bool, error)
	ListBranches(ctx context.Context) ([]Branch, error)
}

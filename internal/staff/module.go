// Package staff provides the branches and staff-workers bounded context.
// Other modules validate branch and worker references through its service.
package staff

import (
	apphttp "trainops_backend/internal/http"
	"trainops_backend/internal/staff/handler"
	"trainops_backend/internal/staff/repository"
	"trainops_backend/internal/staff/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the staff bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the staff module.
func NewModule(pool *pgxpool.Pool) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	h := handler.New(svc)

	return &Module{handler: h, service: svc, repo: repo}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "staff"
}

// Service returns the service layer for other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository exposes the staff repository so other modules can resolve
// worker and branch references.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts staff routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/staff")
	group.GET("/workers", m.handler.ListWorkers)
	group.GET("/workers/:id", m.handler.GetWorker)
	group.GET("/branches", m.handler.ListBranches)
}

var _ apphttp.Module = (*Module)(nil)

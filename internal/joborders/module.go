// Package joborders provides the assignment engine, job lead status
// tracking, and the role-scoped job order query layer.
package joborders

import (
	"trainops_backend/internal/events"
	apphttp "trainops_backend/internal/http"
	"trainops_backend/internal/joborders/handler"
	"trainops_backend/internal/joborders/repository"
	"trainops_backend/internal/joborders/service"
	staffrepo "trainops_backend/internal/staff/repository"
	"trainops_backend/platform/logger"
	"trainops_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the job orders bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the job orders module.
func NewModule(pool *pgxpool.Pool, staff staffrepo.Repository, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, staff, bus, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc, repo: repo}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "joborders"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts job order routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	orders := ctx.Protected.Group("/job-orders")
	orders.POST("/assign", m.handler.AssignOne)
	orders.POST("/assign-bulk", m.handler.AssignBulk)
	orders.GET("", m.handler.List)
	orders.GET("/:id", m.handler.Get)
	orders.PATCH("/:id/reassign", m.handler.Reassign)

	ctx.Protected.PATCH("/job-leads/:id/status", m.handler.SetJobLeadStatus)

	ctx.Admin.DELETE("/job-orders/:id", m.handler.Delete)
}

var _ apphttp.Module = (*Module)(nil)

// Package enquiries provides the enquiry bounded context: intake, the
// status state machine, and the append-only activity audit trail.
package enquiries

import (
	"trainops_backend/internal/enquiries/handler"
	"trainops_backend/internal/enquiries/repository"
	"trainops_backend/internal/enquiries/service"
	"trainops_backend/internal/events"
	apphttp "trainops_backend/internal/http"
	"trainops_backend/platform/logger"
	"trainops_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the enquiries bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the enquiries module.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc, repo: repo}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "enquiries"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts enquiry routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/enquiries")
	group.POST("", m.handler.Create)
	group.GET("", m.handler.List)
	group.GET("/:id", m.handler.Get)
	group.PATCH("/:id/status", m.handler.UpdateStatus)
	group.POST("/:id/enroll", m.handler.EnrollDirect)
	group.POST("/:id/follow-up", m.handler.LogFollowUp)
	group.POST("/:id/call-log", m.handler.LogCall)
	group.GET("/:id/activities", m.handler.ListActivities)

	ctx.Admin.DELETE("/enquiries/:id", m.handler.Delete)
}

var _ apphttp.Module = (*Module)(nil)

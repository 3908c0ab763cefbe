package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"trainops_backend/internal/staff/service"
	"trainops_backend/platform/httpkit"
)

// Handler handles HTTP requests for the staff read model.
type Handler struct {
	svc *service.Service
}

// New creates a new staff handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// ListWorkers returns staff workers, optionally filtered by branch.
// GET /api/v1/staff/workers?branchId=
func (h *Handler) ListWorkers(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var branchID *uuid.UUID
	if raw := c.Query("branchId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid branch ID", nil)
			return
		}
		branchID = &parsed
	}

	workers, err := h.svc.ListWorkers(c.Request.Context(), branchID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, "workers retrieved", workers)
}

// GetWorker returns one staff worker.
// GET /api/v1/staff/workers/:id
func (h *Handler) GetWorker(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid worker ID", nil)
		return
	}

	worker, err := h.svc.GetWorker(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, "worker retrieved", worker)
}

// ListBranches returns every branch.
// GET /api/v1/staff/branches
func (h *Handler) ListBranches(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	branches, err := h.svc.ListBranches(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, "branches retrieved", branches)
}

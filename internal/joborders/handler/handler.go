package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"trainops_backend/internal/joborders/service"
	"trainops_backend/internal/joborders/transport"
	staffdomain "trainops_backend/internal/staff/domain"
	"trainops_backend/platform/httpkit"
	"trainops_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for job orders and job leads.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new job orders handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func caller(c *gin.Context) (staffdomain.Caller, bool) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return staffdomain.Caller{}, false
	}
	return staffdomain.NewCaller(identity.UserID(), identity.Roles(), identity.HomeBranchID()), true
}

// AssignOne assigns a single enquiry to a worker.
// POST /api/v1/job-orders/assign
func (h *Handler) AssignOne(c *gin.Context) {
	var req transport.AssignOneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	who, ok := caller(c)
	if !ok {
		return
	}

	order, err := h.svc.AssignOne(c.Request.Context(), who, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, "lead assigned", order)
}

// AssignBulk assigns a batch of enquiries under one job order.
// POST /api/v1/job-orders/assign-bulk
func (h *Handler) AssignBulk(c *gin.Context) {
	var req transport.AssignBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	who, ok := caller(c)
	if !ok {
		return
	}

	result, err := h.svc.AssignBulk(c.Request.Context(), who, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, "leads assigned", result)
}

// List returns job orders scoped to the caller.
// GET /api/v1/job-orders
func (h *Handler) List(c *gin.Context) {
	var req transport.ListJobOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	who, ok := caller(c)
	if !ok {
		return
	}

	items, total, page, limit, err := h.svc.List(c.Request.Context(), who, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OKPaged(c, "job orders retrieved", items, httpkit.Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: (total + limit - 1) / limit,
	})
}

// Get returns one job order with its leads and progress.
// GET /api/v1/job-orders/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid job order ID", nil)
		return
	}
	who, ok := caller(c)
	if !ok {
		return
	}

	detail, err := h.svc.Get(c.Request.Context(), who, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, "job order retrieved", detail)
}

// Reassign moves a job order to a new manager.
// PATCH /api/v1/job-orders/:id/reassign
func (h *Handler) Reassign(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid job order ID", nil)
		return
	}
	var req transport.ReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	who, ok := caller(c)
	if !ok {
		return
	}

	order, err := h.svc.Reassign(c.Request.Context(), who, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, "job order reassigned", order)
}

// SetJobLeadStatus flips a single job lead's status.
// PATCH /api/v1/job-leads/:id/status
func (h *Handler) SetJobLeadStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid job lead ID", nil)
		return
	}
	var req transport.SetJobLeadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	who, ok := caller(c)
	if !ok {
		return
	}

	lead, err := h.svc.SetJobLeadStatus(c.Request.Context(), who, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, "job lead status updated", lead)
}

// Delete removes a job order and its leads (admin only).
// DELETE /api/v1/admin/job-orders/:id
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid job order ID", nil)
		return
	}
	who, ok := caller(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), who, id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, "job order deleted", nil)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"trainops_backend/internal/enquiries/service"
	"trainops_backend/internal/enquiries/transport"
	staffdomain "trainops_backend/internal/staff/domain"
	"trainops_backend/platform/httpkit"
	"trainops_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid enquiry ID"
)

// Handler handles HTTP requests for enquiries.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new enquiries handler.
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

// Create registers a new enquiry.
// POST /api/v1/enquiries
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateEnquiryRequest
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

	enquiry, err := h.svc.Create(c.Request.Context(), who, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, "enquiry created", enquiry)
}

// List returns enquiries scoped to the caller.
// GET /api/v1/enquiries
func (h *Handler) List(c *gin.Context) {
	var req transport.ListEnquiriesRequest
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
	httpkit.OKPaged(c, "enquiries retrieved", items, httpkit.Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: (total + limit - 1) / limit,
	})
}

// Get returns one enquiry.
// GET /api/v1/enquiries/:id
func (h *Handler) Get(c *gin.Context) {
	if _, ok := caller(c); !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	enquiry, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, "enquiry retrieved", enquiry)
}

// UpdateStatus performs a manual status transition.
// PATCH /api/v1/enquiries/:id/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	var req transport.UpdateStatusRequest
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

	enquiry, err := h.svc.UpdateStatus(c.Request.Context(), who, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, "status updated", enquiry)
}

// EnrollDirect closes a sale without the admission workflow.
// POST /api/v1/enquiries/:id/enroll
func (h *Handler) EnrollDirect(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	var req transport.EnrollDirectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	who, ok := caller(c)
	if !ok {
		return
	}

	enquiry, err := h.svc.EnrollDirect(c.Request.Context(), who, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, "enquiry enrolled", enquiry)
}

// LogFollowUp schedules a follow-up.
// POST /api/v1/enquiries/:id/follow-up
func (h *Handler) LogFollowUp(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	var req transport.FollowUpRequest
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

	enquiry, err := h.svc.LogFollowUp(c.Request.Context(), who, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, "follow-up recorded", enquiry)
}

// LogCall records a call outcome.
// POST /api/v1/enquiries/:id/call-log
func (h *Handler) LogCall(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	var req transport.CallLogRequest
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

	enquiry, err := h.svc.LogCall(c.Request.Context(), who, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, "call logged", enquiry)
}

// ListActivities returns the audit timeline for an enquiry.
// GET /api/v1/enquiries/:id/activities
func (h *Handler) ListActivities(c *gin.Context) {
	if _, ok := caller(c); !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	activities, err := h.svc.ListActivities(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, "activities retrieved", activities)
}

// Delete irreversibly removes an enquiry (admin only).
// DELETE /api/v1/admin/enquiries/:id
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	who, ok := caller(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), who, id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, "enquiry deleted", nil)
}

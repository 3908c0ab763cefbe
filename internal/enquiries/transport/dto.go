package transport

import "github.com/google/uuid"

// CreateEnquiryRequest contains the intake fields for a new enquiry.
type CreateEnquiryRequest struct {
	Name     string    `json:"name" validate:"required,min=1,max=200"`
	Phone    string    `json:"phone" validate:"required,min=5,max=20"`
	Email    *string   `json:"email,omitempty" validate:"omitempty,email"`
	BranchID uuid.UUID `json:"branchId" validate:"required"`
	Source   string    `json:"source" validate:"required,max=100"`
	Course   string    `json:"course" validate:"required,max=200"`
	Notes    *string   `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// UpdateStatusRequest drives a manual status transition.
type UpdateStatusRequest struct {
	Status  string  `json:"status" validate:"required"`
	Remarks *string `json:"remarks,omitempty" validate:"omitempty,max=2000"`
}

// EnrollDirectRequest is the direct-enrollment shortcut payload.
type EnrollDirectRequest struct {
	Remarks *string `json:"remarks,omitempty" validate:"omitempty,max=2000"`
}

// FollowUpRequest schedules a follow-up and moves the enquiry to FOLLOW_UP.
type FollowUpRequest struct {
	FollowUpDate string  `json:"followUpDate" validate:"required,datetime=2006-01-02"`
	Remarks      *string `json:"remarks,omitempty" validate:"omitempty,max=2000"`
}

// CallLogRequest records a call outcome and its resulting status.
type CallLogRequest struct {
	Outcome string  `json:"outcome" validate:"required"`
	Remarks *string `json:"remarks,omitempty" validate:"omitempty,max=2000"`
}

// ListEnquiriesRequest filters the enquiry listing.
type ListEnquiriesRequest struct {
	Status     string `form:"status"`
	BranchID   string `form:"branchId"`
	AssignedTo string `form:"assignedTo"`
	Unassigned bool   `form:"unassigned"`
	Search     string `form:"search"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}

package transport

import "github.com/google/uuid"

// AssignOneRequest assigns a single enquiry to a worker, creating a
// job order with one job lead.
type AssignOneRequest struct {
	EnquiryID   uuid.UUID `json:"enquiryId" validate:"required"`
	WorkerID    uuid.UUID `json:"workerId" validate:"required"`
	BranchID    uuid.UUID `json:"branchId" validate:"required"`
	JobName     string    `json:"jobName" validate:"required,max=200"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	Remarks     *string   `json:"remarks,omitempty" validate:"omitempty,max=2000"`
	StartDate   string    `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate     string    `json:"endDate" validate:"required,datetime=2006-01-02"`
}

// AssignBulkRequest assigns several unassigned enquiries to one worker
// under a single job order.
type AssignBulkRequest struct {
	EnquiryIDs  []uuid.UUID `json:"enquiryIds" validate:"required,min=1,dive,required"`
	WorkerID    uuid.UUID   `json:"workerId" validate:"required"`
	BranchID    uuid.UUID   `json:"branchId" validate:"required"`
	JobName     string      `json:"jobName" validate:"required,max=200"`
	Description *string     `json:"description,omitempty" validate:"omitempty,max=2000"`
	Remarks     *string     `json:"remarks,omitempty" validate:"omitempty,max=2000"`
	StartDate   string      `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate     string      `json:"endDate" validate:"required,datetime=2006-01-02"`
}

// SetJobLeadStatusRequest flips a job lead between PENDING and CLOSED.
type SetJobLeadStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING CLOSED pending closed"`
}

// ReassignRequest moves a job order to a different manager.
type ReassignRequest struct {
	NewManagerID uuid.UUID `json:"newManagerId" validate:"required"`
}

// ListJobOrdersRequest filters the job order listing.
type ListJobOrdersRequest struct {
	ManagerID string `form:"managerId"`
	BranchID  string `form:"branchId"`
	Pending   bool   `form:"pending"`
	Completed bool   `form:"completed"`
	Due       bool   `form:"due"`
	Search    string `form:"search"`
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
}

// Package domain holds the job lead sub-status model.
package domain

import (
	"strings"

	"trainops_backend/platform/apperr"
)

// LeadStatus is the per-lead closure state inside a job order.
type LeadStatus string

const (
	// LeadPending means the lead still needs work.
	LeadPending LeadStatus = "PENDING"
	// LeadClosed means the lead is done.
	LeadClosed LeadStatus = "CLOSED"
)

// ParseLeadStatus maps an input string to a LeadStatus.
func ParseLeadStatus(raw string) (LeadStatus, error) {
	switch LeadStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case LeadPending:
		return LeadPending, nil
	case LeadClosed:
		return LeadClosed, nil
	default:
		return "", apperr.Validation("job lead status must be PENDING or CLOSED")
	}
}

// Progress is the derived completion state of a job order. It is never
// stored, only recomputed from the job lead rows.
type Progress struct {
	Total      int `json:"total"`
	Closed     int `json:"closed"`
	Percentage int `json:"percentage"`
}

// ComputeProgress derives progress from raw counts. Zero leads means
// zero percent, not a division error.
func ComputeProgress(total, closed int) Progress {
	p := Progress{Total: total, Closed: closed}
	if total > 0 {
		p.Percentage = int(float64(closed)/float64(total)*100 + 0.5)
	}
	return p
}

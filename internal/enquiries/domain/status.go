// Package domain provides core business rules for the enquiries bounded context.
package domain

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of an enquiry. Any status may move to
// any other status; the state machine guarantees auditing, not flow.
type Status string

const (
	StatusNew           Status = "NEW"
	StatusContacted     Status = "CONTACTED"
	StatusInterested    Status = "INTERESTED"
	StatusNotInterested Status = "NOT_INTERESTED"
	StatusFollowUp      Status = "FOLLOW_UP"
	StatusEnrolled      Status = "ENROLLED"
	StatusDropped       Status = "DROPPED"
	StatusInvalid       Status = "INVALID"
)

var allStatuses = map[Status]bool{
	StatusNew:           true,
	StatusContacted:     true,
	StatusInterested:    true,
	StatusNotInterested: true,
	StatusFollowUp:      true,
	StatusEnrolled:      true,
	StatusDropped:       true,
	StatusInvalid:       true,
}

// ParseStatus maps a status name to the enum, case-insensitively.
func ParseStatus(name string) (Status, error) {
	candidate := Status(strings.ToUpper(strings.TrimSpace(name)))
	if !allStatuses[candidate] {
		return "", fmt.Errorf("unknown enquiry status %q", name)
	}
	return candidate, nil
}

// Valid reports whether s is a member of the status enum.
func (s Status) Valid() bool {
	return allStatuses[s]
}

// ActivityType identifies the nature of an audit entry on an enquiry.
type ActivityType string

const (
	// ActivityStatusChange records a manual status transition.
	ActivityStatusChange ActivityType = "STATUS_CHANGE"
	// ActivityFollowUp records a scheduled follow-up with its status write.
	ActivityFollowUp ActivityType = "FOLLOW_UP"
	// ActivityCallLog records a call outcome with its status write.
	ActivityCallLog ActivityType = "CALL_LOG"
	// ActivityEnrollmentDirect records the direct-enrollment shortcut.
	ActivityEnrollmentDirect ActivityType = "ENROLLMENT_DIRECT"
)

// ActivityTitle derives the human-readable title for an audit entry.
func ActivityTitle(activityType ActivityType, previous, next Status) string {
	switch activityType {
	case ActivityFollowUp:
		return fmt.Sprintf("Follow-up scheduled (%s → %s)", previous, next)
	case ActivityCallLog:
		return fmt.Sprintf("Call logged (%s → %s)", previous, next)
	case ActivityEnrollmentDirect:
		return "Enrolled directly"
	default:
		return fmt.Sprintf("Status changed from %s to %s", previous, next)
	}
}

// Package domain holds the staff role model and permission checks.
// Roles are a closed enum: call sites ask permission questions instead
// of comparing strings.
package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Role is a closed set of staff roles.
type Role int

const (
	// RoleUnknown carries no permissions.
	RoleUnknown Role = iota
	// RoleTelecaller works only leads assigned to them.
	RoleTelecaller
	// RoleCounselor works only leads assigned to them.
	RoleCounselor
	// RoleManager runs a branch: assigns leads, sees branch-wide work.
	RoleManager
	// RoleAdmin is unrestricted.
	RoleAdmin
)

// String returns the canonical lowercase role name.
func (r Role) String() string {
	switch r {
	case RoleTelecaller:
		return "telecaller"
	case RoleCounselor:
		return "counselor"
	case RoleManager:
		return "manager"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// ParseRole maps a role name to the enum, case-insensitively.
func ParseRole(name string) Role {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "telecaller":
		return RoleTelecaller
	case "counselor", "counsellor":
		return RoleCounselor
	case "manager":
		return RoleManager
	case "admin":
		return RoleAdmin
	default:
		return RoleUnknown
	}
}

// RoleFromClaims picks the most privileged recognized role from a JWT
// roles claim.
func RoleFromClaims(names []string) Role {
	best := RoleUnknown
	for _, name := range names {
		if parsed := ParseRole(name); parsed > best {
			best = parsed
		}
	}
	return best
}

// CanAssignLeads reports whether the role may create job orders.
func (r Role) CanAssignLeads() bool {
	return r == RoleAdmin || r == RoleManager
}

// CanReassignJobOrders reports whether the role may move an order to a
// different manager.
func (r Role) CanReassignJobOrders() bool {
	return r == RoleAdmin || r == RoleManager
}

// CanDeleteJobOrders reports whether the role may delete job orders.
func (r Role) CanDeleteJobOrders() bool {
	return r == RoleAdmin
}

// CanDeleteEnquiries reports whether the role may hard-delete enquiries.
func (r Role) CanDeleteEnquiries() bool {
	return r == RoleAdmin
}

// CanUpdateAnyEnquiry reports whether the role may act on enquiries it
// does not own.
func (r Role) CanUpdateAnyEnquiry() bool {
	return r == RoleAdmin || r == RoleManager
}

// RestrictedToOwnWork reports whether the role sees only records
// assigned to it.
func (r Role) RestrictedToOwnWork() bool {
	return r == RoleCounselor || r == RoleTelecaller || r == RoleUnknown
}

// Caller is the resolved request identity handed to services.
type Caller struct {
	ID       uuid.UUID
	Role     Role
	BranchID *uuid.UUID
}

// NewCaller builds a Caller from raw token claims.
func NewCaller(id uuid.UUID, roleNames []string, branchID *uuid.UUID) Caller {
	return Caller{ID: id, Role: RoleFromClaims(roleNames), BranchID: branchID}
}

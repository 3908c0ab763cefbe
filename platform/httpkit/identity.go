// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity represents the authenticated caller. It abstracts identity
// extraction from the web framework so services never depend on gin.
type Identity interface {
	// UserID returns the authenticated user's ID.
	UserID() uuid.UUID
	// Roles returns the caller's role names as carried in the token.
	Roles() []string
	// HomeBranchID returns the caller's home branch, nil when the
	// caller has no branch assignment.
	HomeBranchID() *uuid.UUID
	// IsAuthenticated returns true if the caller is authenticated.
	IsAuthenticated() bool
}

type identity struct {
	userID        uuid.UUID
	roles         []string
	branchID      *uuid.UUID
	authenticated bool
}

func (i *identity) UserID() uuid.UUID        { return i.userID }
func (i *identity) Roles() []string          { return i.roles }
func (i *identity) HomeBranchID() *uuid.UUID { return i.branchID }
func (i *identity) IsAuthenticated() bool    { return i.authenticated }

// GetIdentity extracts the Identity from a gin context. Returns an
// unauthenticated identity if user info is not present.
func GetIdentity(c *gin.Context) Identity {
	userID, userOK := c.Get(ContextUserIDKey)
	if !userOK {
		return &identity{authenticated: false}
	}

	uid, ok := userID.(uuid.UUID)
	if !ok {
		return &identity{authenticated: false}
	}

	var roleList []string
	if roles, ok := c.Get(ContextRolesKey); ok {
		roleList, _ = roles.([]string)
	}

	var branch *uuid.UUID
	if value, ok := c.Get(ContextBranchIDKey); ok {
		if parsed, ok := value.(uuid.UUID); ok {
			branch = &parsed
		}
	}

	return &identity{
		userID:        uid,
		roles:         roleList,
		branchID:      branch,
		authenticated: true,
	}
}

// MustGetIdentity extracts the Identity from a gin context, aborting
// with 401 Unauthorized and returning nil when unauthenticated.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
		return nil
	}
	return id
}

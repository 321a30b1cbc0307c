package domain

import (
	"time"
)

// Membership links a user to an organization with a role. At most one
// membership exists per (organization, user) pair.
type Membership struct {
	ID             string
	OrganizationID string
	UserID         string
	Role           Role
	Department     string
	Title          string
	JoinedAt       time.Time
}

type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
	RoleGuest  Role = "GUEST"
)

// roleRank orders roles for threshold checks: GUEST < MEMBER < ADMIN < OWNER.
var roleRank = map[Role]int{
	RoleGuest:  0,
	RoleMember: 1,
	RoleAdmin:  2,
	RoleOwner:  3,
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r grants at least the privileges of min.
// Unknown roles never satisfy any threshold.
func (r Role) AtLeast(min Role) bool {
	rr, ok := roleRank[r]
	if !ok {
		return false
	}
	mr, ok := roleRank[min]
	if !ok {
		return false
	}
	return rr >= mr
}

package domain

import (
	"errors"
	"time"
)

// Team belongs to exactly one organization and owns its TeamMember rows.
type Team struct {
	ID             string
	OrganizationID string
	Name           string
	Description    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TeamMember links an organization membership (not a raw user) to a team.
// The referenced membership must belong to the same organization as the team.
type TeamMember struct {
	ID          string
	TeamID      string
	OrgMemberID string
	Role        Role
	JoinedAt    time.Time
}

type Role string

const (
	RoleLeader Role = "LEADER"
	RoleMember Role = "MEMBER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleLeader || r == RoleMember
}

// Validate validates the team for persistence. Returns an error describing the first validation failure.
func (t *Team) Validate() error {
	if t.Name == "" {
		return errors.New("name is required")
	}
	if t.OrganizationID == "" {
		return errors.New("organization id is required")
	}
	return nil
}

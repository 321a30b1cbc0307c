package rbac

import (
	"context"
	"errors"
	"fmt"

	"workstack/backend/internal/membership/domain"
	"workstack/backend/internal/server/middleware"
)

var (
	// ErrUnauthenticated indicates the request carries no authenticated user.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden indicates the caller is not a member of the organization
	// or holds a role below the required threshold.
	ErrForbidden = errors.New("forbidden")
)

// OrgMembershipGetter returns a user's membership in an org. Used by Authorize
// to resolve the caller's role.
type OrgMembershipGetter interface {
	GetByUserAndOrg(ctx context.Context, userID, orgID string) (*domain.Membership, error)
}

// Authorize ensures the caller is authenticated and holds at least minRole in
// the given organization. Every org-scoped operation goes through this single
// check. Returns the caller's membership on success; returns ErrUnauthenticated
// when no user is on the context, ErrForbidden when the user is not a member
// or the role threshold is not met.
func Authorize(ctx context.Context, getter OrgMembershipGetter, orgID string, minRole domain.Role) (*domain.Membership, error) {
	u := middleware.UserFromContext(ctx)
	if u == nil {
		return nil, ErrUnauthenticated
	}
	m, err := getter.GetByUserAndOrg(ctx, u.ID, orgID)
	if err != nil {
		return nil, fmt.Errorf("resolve membership: %w", err)
	}
	if m == nil {
		return nil, ErrForbidden
	}
	if !m.Role.AtLeast(minRole) {
		return nil, ErrForbidden
	}
	return m, nil
}

// RequireOrgMember ensures the caller holds any role in the organization.
func RequireOrgMember(ctx context.Context, getter OrgMembershipGetter, orgID string) (*domain.Membership, error) {
	return Authorize(ctx, getter, orgID, domain.RoleGuest)
}

// RequireOrgAdmin ensures the caller is an admin or owner of the organization.
func RequireOrgAdmin(ctx context.Context, getter OrgMembershipGetter, orgID string) (*domain.Membership, error) {
	return Authorize(ctx, getter, orgID, domain.RoleAdmin)
}

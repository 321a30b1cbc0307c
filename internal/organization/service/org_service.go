package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	membershipdomain "workstack/backend/internal/membership/domain"
	"workstack/backend/internal/organization/domain"
	"workstack/backend/internal/platform/rbac"
	"workstack/backend/internal/server/middleware"
	userdomain "workstack/backend/internal/user/domain"
)

// Sentinel errors for the organization service; handlers map them to HTTP codes.
var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrMemberNotFound       = errors.New("member not found")
	ErrInvalidRole          = errors.New("invalid role")
	ErrCannotRemoveOwner    = errors.New("organization owner cannot be removed")
	ErrCannotAssignOwner    = errors.New("owner role is assigned only at creation")
	ErrInvalidInput         = errors.New("invalid input")
)

// OrgRepo is the minimal organization repository needed by the service.
type OrgRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Organization, error)
	CreateWithOwner(ctx context.Context, o *domain.Organization, owner *membershipdomain.Membership) error
	Update(ctx context.Context, o *domain.Organization) error
	DeleteCascade(ctx context.Context, id string) (bool, error)
}

// MembershipRepo is the minimal membership repository needed by the service.
type MembershipRepo interface {
	GetByUserAndOrg(ctx context.Context, userID, orgID string) (*membershipdomain.Membership, error)
	ListByOrg(ctx context.Context, orgID string) ([]*membershipdomain.Membership, error)
	Create(ctx context.Context, m *membershipdomain.Membership) error
	DeleteByUserAndOrg(ctx context.Context, userID, orgID string) (bool, error)
	UpdateRole(ctx context.Context, userID, orgID string, role membershipdomain.Role) (*membershipdomain.Membership, error)
}

// UserRepo is the minimal user repository needed by the service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// OrgService implements organization and membership management. Every
// org-scoped operation authorizes through rbac.Authorize before touching data.
type OrgService struct {
	orgRepo        OrgRepo
	membershipRepo MembershipRepo
	userRepo       UserRepo
}

// NewOrgService returns an OrgService with the given dependencies.
func NewOrgService(orgRepo OrgRepo, membershipRepo MembershipRepo, userRepo UserRepo) *OrgService {
	return &OrgService{orgRepo: orgRepo, membershipRepo: membershipRepo, userRepo: userRepo}
}

// Create creates an organization with the caller as OWNER. The organization
// row and the owner membership are written in one transaction: either both
// exist afterwards or neither does.
func (s *OrgService) Create(ctx context.Context, name, orgDomain string, settings *domain.Settings) (*domain.Organization, error) {
	caller := middleware.UserFromContext(ctx)
	if caller == nil {
		return nil, rbac.ErrUnauthenticated
	}
	now := time.Now().UTC()
	org := &domain.Organization{
		ID:        uuid.New().String(),
		Name:      name,
		Domain:    orgDomain,
		Settings:  settings,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := org.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	owner := &membershipdomain.Membership{
		ID:             uuid.New().String(),
		OrganizationID: org.ID,
		UserID:         caller.ID,
		Role:           membershipdomain.RoleOwner,
		JoinedAt:       now,
	}
	if err := s.orgRepo.CreateWithOwner(ctx, org, owner); err != nil {
		return nil, err
	}
	return org, nil
}

// Get returns the organization. The caller must be a member.
func (s *OrgService) Get(ctx context.Context, orgID string) (*domain.Organization, error) {
	if _, err := rbac.RequireOrgMember(ctx, s.membershipRepo, orgID); err != nil {
		return nil, err
	}
	org, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, ErrOrganizationNotFound
	}
	return org, nil
}

// ListMine returns the organizations the caller belongs to.
func (s *OrgService) ListMine(ctx context.Context) ([]*domain.Organization, error) {
	caller := middleware.UserFromContext(ctx)
	if caller == nil {
		return nil, rbac.ErrUnauthenticated
	}
	return s.orgRepo.ListByUser(ctx, caller.ID)
}

// Update updates name, domain, logo, and settings. Admin or owner only.
// Nil settings leaves the stored settings untouched.
func (s *OrgService) Update(ctx context.Context, orgID, name, orgDomain, logo string, settings *domain.Settings) (*domain.Organization, error) {
	if _, err := rbac.RequireOrgAdmin(ctx, s.membershipRepo, orgID); err != nil {
		return nil, err
	}
	org, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, ErrOrganizationNotFound
	}
	if name != "" {
		org.Name = name
	}
	if orgDomain != "" {
		org.Domain = orgDomain
	}
	if logo != "" {
		org.Logo = logo
	}
	if settings != nil {
		org.Settings = settings
	}
	org.UpdatedAt = time.Now().UTC()
	if err := org.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

// Delete removes the organization and everything it owns: tasks, task lists,
// team members, teams, and memberships, in that order, in one transaction.
// Owner only.
func (s *OrgService) Delete(ctx context.Context, orgID string) error {
	if _, err := rbac.Authorize(ctx, s.membershipRepo, orgID, membershipdomain.RoleOwner); err != nil {
		return err
	}
	deleted, err := s.orgRepo.DeleteCascade(ctx, orgID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrOrganizationNotFound
	}
	return nil
}

// ListMembers returns all memberships of the organization. Any member may list.
func (s *OrgService) ListMembers(ctx context.Context, orgID string) ([]*membershipdomain.Membership, error) {
	if _, err := rbac.RequireOrgMember(ctx, s.membershipRepo, orgID); err != nil {
		return nil, err
	}
	return s.membershipRepo.ListByOrg(ctx, orgID)
}

// AddMember adds a user to the organization with the given role. Admin or
// owner only. Adding a user who is already a member returns the existing
// membership unchanged with created=false, so retries are safe.
func (s *OrgService) AddMember(ctx context.Context, orgID, userID string, role membershipdomain.Role) (m *membershipdomain.Membership, created bool, err error) {
	if _, err := rbac.RequireOrgAdmin(ctx, s.membershipRepo, orgID); err != nil {
		return nil, false, err
	}
	if role == "" {
		role = membershipdomain.RoleMember
	}
	if !role.Valid() {
		return nil, false, ErrInvalidRole
	}
	if role == membershipdomain.RoleOwner {
		return nil, false, ErrCannotAssignOwner
	}
	target, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if target == nil {
		return nil, false, ErrUserNotFound
	}
	existing, err := s.membershipRepo.GetByUserAndOrg(ctx, userID, orgID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}
	m = &membershipdomain.Membership{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		UserID:         userID,
		Role:           role,
		JoinedAt:       time.Now().UTC(),
	}
	if err := s.membershipRepo.Create(ctx, m); err != nil {
		// A concurrent add can race past the existence check; the unique
		// constraint on (organization_id, user_id) resolves the race.
		if isUniqueViolation(err) {
			m, err = s.membershipRepo.GetByUserAndOrg(ctx, userID, orgID)
			return m, false, err
		}
		return nil, false, err
	}
	return m, true, nil
}

// RemoveMember removes a user from the organization. Admin or owner only.
// The owner membership is never removable.
func (s *OrgService) RemoveMember(ctx context.Context, orgID, userID string) error {
	if _, err := rbac.RequireOrgAdmin(ctx, s.membershipRepo, orgID); err != nil {
		return err
	}
	m, err := s.membershipRepo.GetByUserAndOrg(ctx, userID, orgID)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrMemberNotFound
	}
	if m.Role == membershipdomain.RoleOwner {
		return ErrCannotRemoveOwner
	}
	deleted, err := s.membershipRepo.DeleteByUserAndOrg(ctx, userID, orgID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrMemberNotFound
	}
	return nil
}

// UpdateMemberRole changes a member's role. Admin or owner only. The owner
// role can be neither granted nor taken away here.
func (s *OrgService) UpdateMemberRole(ctx context.Context, orgID, userID string, role membershipdomain.Role) (*membershipdomain.Membership, error) {
	if _, err := rbac.RequireOrgAdmin(ctx, s.membershipRepo, orgID); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if role == membershipdomain.RoleOwner {
		return nil, ErrCannotAssignOwner
	}
	m, err := s.membershipRepo.GetByUserAndOrg(ctx, userID, orgID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMemberNotFound
	}
	if m.Role == membershipdomain.RoleOwner {
		return nil, ErrCannotRemoveOwner
	}
	return s.membershipRepo.UpdateRole(ctx, userID, orgID, role)
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

package service

import (
	"context"

	"workstack/backend/internal/audit/domain"
	auditrepo "workstack/backend/internal/audit/repository"
	"workstack/backend/internal/platform/rbac"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// AuditService exposes read access to an organization's audit trail.
// Only admins and the owner may read it.
type AuditService struct {
	repo        auditrepo.Repository
	memberships rbac.OrgMembershipGetter
}

// NewAuditService returns a service over the audit repository.
func NewAuditService(repo auditrepo.Repository, memberships rbac.OrgMembershipGetter) *AuditService {
	return &AuditService{repo: repo, memberships: memberships}
}

// List returns the org's audit logs, newest first. limit is clamped to
// [1, 200] with a default of 50; negative offsets are treated as 0.
func (s *AuditService) List(ctx context.Context, orgID string, limit, offset int32) ([]*domain.AuditLog, error) {
	if _, err := rbac.RequireOrgAdmin(ctx, s.memberships, orgID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByOrg(ctx, orgID, limit, offset)
}

package repository

import (
	"context"

	"workstack/backend/internal/membership/domain"
)

// Repository defines persistence for organization memberships.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Membership, error)
	GetByUserAndOrg(ctx context.Context, userID, orgID string) (*domain.Membership, error)
	ListByOrg(ctx context.Context, orgID string) ([]*domain.Membership, error)
	Create(ctx context.Context, m *domain.Membership) error
	DeleteByUserAndOrg(ctx context.Context, userID, orgID string) (bool, error)
	UpdateRole(ctx context.Context, userID, orgID string, role domain.Role) (*domain.Membership, error)
}

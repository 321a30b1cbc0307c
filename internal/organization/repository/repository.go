package repository

import (
	"context"

	membershipdomain "workstack/backend/internal/membership/domain"
	"workstack/backend/internal/organization/domain"
)

// Repository defines persistence for organizations, including the two
// multi-row operations that must be transactional: creation with the owner
// membership, and deletion with ordered removal of owned rows.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Organization, error)
	CreateWithOwner(ctx context.Context, o *domain.Organization, owner *membershipdomain.Membership) error
	Update(ctx context.Context, o *domain.Organization) error
	DeleteCascade(ctx context.Context, id string) (bool, error)
}

package repository

import (
	"context"

	"workstack/backend/internal/team/domain"
)

// Repository defines persistence for teams and team members.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	ListByOrg(ctx context.Context, orgID string) ([]*domain.Team, error)
	Create(ctx context.Context, t *domain.Team) error
	Update(ctx context.Context, t *domain.Team) error
	DeleteCascade(ctx context.Context, id string) (bool, error)

	GetMember(ctx context.Context, teamID, orgMemberID string) (*domain.TeamMember, error)
	ListMembers(ctx context.Context, teamID string) ([]*domain.TeamMember, error)
	CreateMember(ctx context.Context, m *domain.TeamMember) error
	DeleteMember(ctx context.Context, teamID, orgMemberID string) (bool, error)
}

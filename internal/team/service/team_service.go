package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	membershipdomain "workstack/backend/internal/membership/domain"
	"workstack/backend/internal/platform/rbac"
	"workstack/backend/internal/team/domain"
)

// Sentinel errors for the team service; handlers map them to HTTP codes.
var (
	ErrTeamNotFound       = errors.New("team not found")
	ErrTeamMemberNotFound = errors.New("team member not found")
	ErrNotOrgMember       = errors.New("user is not a member of the organization")
	ErrInvalidTeamRole    = errors.New("invalid team role")
	ErrInvalidInput       = errors.New("invalid input")
)

// TeamRepo is the minimal team repository needed by the service.
type TeamRepo interface {
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

// MembershipRepo resolves org memberships for authorization and for the
// org-membership requirement on team members.
type MembershipRepo interface {
	GetByUserAndOrg(ctx context.Context, userID, orgID string) (*membershipdomain.Membership, error)
}

// TeamService implements team management within an organization. A team
// member is always an organization member first: team membership references
// the org membership row, so a user outside the org can never be on a team.
type TeamService struct {
	teamRepo       TeamRepo
	membershipRepo MembershipRepo
}

// NewTeamService returns a TeamService with the given dependencies.
func NewTeamService(teamRepo TeamRepo, membershipRepo MembershipRepo) *TeamService {
	return &TeamService{teamRepo: teamRepo, membershipRepo: membershipRepo}
}

// Create creates a team in the organization. Admin or owner only.
func (s *TeamService) Create(ctx context.Context, orgID, name, description string) (*domain.Team, error) {
	if _, err := rbac.RequireOrgAdmin(ctx, s.membershipRepo, orgID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	t := &domain.Team{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		Name:           name,
		Description:    description,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.teamRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get returns the team. Any org member may read it.
func (s *TeamService) Get(ctx context.Context, orgID, teamID string) (*domain.Team, error) {
	if _, err := rbac.RequireOrgMember(ctx, s.membershipRepo, orgID); err != nil {
		return nil, err
	}
	return s.teamInOrg(ctx, orgID, teamID)
}

// List returns all teams in the organization. Any org member may list.
func (s *TeamService) List(ctx context.Context, orgID string) ([]*domain.Team, error) {
	if _, err := rbac.RequireOrgMember(ctx, s.membershipRepo, orgID); err != nil {
		return nil, err
	}
	return s.teamRepo.ListByOrg(ctx, orgID)
}

// Update renames the team or changes its description. Admin or owner only.
func (s *TeamService) Update(ctx context.Context, orgID, teamID, name, description string) (*domain.Team, error) {
	if _, err := rbac.RequireOrgAdmin(ctx, s.membershipRepo, orgID); err != nil {
		return nil, err
	}
	t, err := s.teamInOrg(ctx, orgID, teamID)
	if err != nil {
		return nil, err
	}
	if name != "" {
		t.Name = name
	}
	if description != "" {
		t.Description = description
	}
	t.UpdatedAt = time.Now().UTC()
	if err := s.teamRepo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes the team and its member rows in one transaction. Admin or
// owner only.
func (s *TeamService) Delete(ctx context.Context, orgID, teamID string) error {
	if _, err := rbac.RequireOrgAdmin(ctx, s.membershipRepo, orgID); err != nil {
		return err
	}
	if _, err := s.teamInOrg(ctx, orgID, teamID); err != nil {
		return err
	}
	deleted, err := s.teamRepo.DeleteCascade(ctx, teamID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrTeamNotFound
	}
	return nil
}

// AddMember puts an org member on the team. Admin or owner only. The user
// must already belong to the team's organization. Adding a user who is
// already on the team returns the existing row unchanged, so retries are safe.
func (s *TeamService) AddMember(ctx context.Context, orgID, teamID, userID string, role domain.Role) (m *domain.TeamMember, created bool, err error) {
	if _, err := rbac.RequireOrgAdmin(ctx, s.membershipRepo, orgID); err != nil {
		return nil, false, err
	}
	if _, err := s.teamInOrg(ctx, orgID, teamID); err != nil {
		return nil, false, err
	}
	if role == "" {
		role = domain.RoleMember
	}
	if !role.Valid() {
		return nil, false, ErrInvalidTeamRole
	}
	orgMember, err := s.membershipRepo.GetByUserAndOrg(ctx, userID, orgID)
	if err != nil {
		return nil, false, err
	}
	if orgMember == nil {
		return nil, false, ErrNotOrgMember
	}
	existing, err := s.teamRepo.GetMember(ctx, teamID, orgMember.ID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}
	m = &domain.TeamMember{
		ID:          uuid.New().String(),
		TeamID:      teamID,
		OrgMemberID: orgMember.ID,
		Role:        role,
		JoinedAt:    time.Now().UTC(),
	}
	if err := s.teamRepo.CreateMember(ctx, m); err != nil {
		// A concurrent add can race past the existence check; the unique
		// constraint on (team_id, org_member_id) resolves the race.
		if isUniqueViolation(err) {
			m, err = s.teamRepo.GetMember(ctx, teamID, orgMember.ID)
			return m, false, err
		}
		return nil, false, err
	}
	return m, true, nil
}

// RemoveMember takes an org member off the team. Admin or owner only.
func (s *TeamService) RemoveMember(ctx context.Context, orgID, teamID, userID string) error {
	if _, err := rbac.RequireOrgAdmin(ctx, s.membershipRepo, orgID); err != nil {
		return err
	}
	if _, err := s.teamInOrg(ctx, orgID, teamID); err != nil {
		return err
	}
	orgMember, err := s.membershipRepo.GetByUserAndOrg(ctx, userID, orgID)
	if err != nil {
		return err
	}
	if orgMember == nil {
		return ErrNotOrgMember
	}
	deleted, err := s.teamRepo.DeleteMember(ctx, teamID, orgMember.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrTeamMemberNotFound
	}
	return nil
}

// ListMembers returns all members of the team. Any org member may list.
func (s *TeamService) ListMembers(ctx context.Context, orgID, teamID string) ([]*domain.TeamMember, error) {
	if _, err := rbac.RequireOrgMember(ctx, s.membershipRepo, orgID); err != nil {
		return nil, err
	}
	if _, err := s.teamInOrg(ctx, orgID, teamID); err != nil {
		return nil, err
	}
	return s.teamRepo.ListMembers(ctx, teamID)
}

// teamInOrg fetches the team and checks it belongs to the org. Teams from
// other organizations are reported as not found rather than forbidden.
func (s *TeamService) teamInOrg(ctx context.Context, orgID, teamID string) (*domain.Team, error) {
	t, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if t == nil || t.OrganizationID != orgID {
		return nil, ErrTeamNotFound
	}
	return t, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

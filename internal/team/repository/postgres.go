package repository

import (
	"context"
	"database/sql"
	"errors"

	"workstack/backend/internal/team/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a team repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const teamColumns = `id, organization_id, name, description, created_at, updated_at`

// GetByID returns the team for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id)
	t, err := scanTeam(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

// ListByOrg returns all teams in the given organization.
func (r *PostgresRepository) ListByOrg(ctx context.Context, orgID string) ([]*domain.Team, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+teamColumns+` FROM teams WHERE organization_id = $1 ORDER BY created_at`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Create persists the team to the database. The team must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, t *domain.Team) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO teams (`+teamColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.OrganizationID, t.Name, nullString(t.Description), t.CreatedAt, t.UpdatedAt,
	)
	return err
}

// Update updates the existing team record in the database. Missing rows are not an error.
func (r *PostgresRepository) Update(ctx context.Context, t *domain.Team) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE teams SET name = $2, description = $3, updated_at = $4 WHERE id = $1`,
		t.ID, t.Name, nullString(t.Description), t.UpdatedAt,
	)
	return err
}

// DeleteCascade deletes the team and its team members in one transaction,
// members first. Returns false if the team did not exist.
func (r *PostgresRepository) DeleteCascade(ctx context.Context, id string) (deleted bool, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM team_members WHERE team_id = $1`, id); err != nil {
		return false, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err = tx.Commit(); err != nil {
		return false, err
	}
	return n > 0, nil
}

const teamMemberColumns = `id, team_id, org_member_id, role, joined_at`

// GetMember returns the team membership for (team, org member), or nil if not found.
func (r *PostgresRepository) GetMember(ctx context.Context, teamID, orgMemberID string) (*domain.TeamMember, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+teamMemberColumns+` FROM team_members
		WHERE team_id = $1 AND org_member_id = $2`, teamID, orgMemberID)
	m, err := scanTeamMember(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// ListMembers returns all members of the given team.
func (r *PostgresRepository) ListMembers(ctx context.Context, teamID string) ([]*domain.TeamMember, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+teamMemberColumns+` FROM team_members WHERE team_id = $1 ORDER BY joined_at`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.TeamMember
	for rows.Next() {
		m, err := scanTeamMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// CreateMember persists the team membership. The membership must have ID set.
// A unique constraint on (team_id, org_member_id) guards against duplicates.
func (r *PostgresRepository) CreateMember(ctx context.Context, m *domain.TeamMember) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO team_members (`+teamMemberColumns+`)
		VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.TeamID, m.OrgMemberID, string(m.Role), m.JoinedAt,
	)
	return err
}

// DeleteMember removes the team membership row. Returns false if no row was deleted.
func (r *PostgresRepository) DeleteMember(ctx context.Context, teamID, orgMemberID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM team_members WHERE team_id = $1 AND org_member_id = $2`, teamID, orgMemberID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTeam(s rowScanner) (*domain.Team, error) {
	var t domain.Team
	var desc sql.NullString
	if err := s.Scan(&t.ID, &t.OrganizationID, &t.Name, &desc, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Description = desc.String
	return &t, nil
}

func scanTeamMember(s rowScanner) (*domain.TeamMember, error) {
	var m domain.TeamMember
	var role string
	if err := s.Scan(&m.ID, &m.TeamID, &m.OrgMemberID, &role, &m.JoinedAt); err != nil {
		return nil, err
	}
	m.Role = domain.Role(role)
	return &m, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

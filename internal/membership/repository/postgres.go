package repository

import (
	"context"
	"database/sql"
	"errors"

	"workstack/backend/internal/membership/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a membership repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const membershipColumns = `id, organization_id, user_id, role, department, title, joined_at`

// GetByID returns the membership for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Membership, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+membershipColumns+` FROM organization_members WHERE id = $1`, id)
	return scanMembership(row)
}

// GetByUserAndOrg returns the membership for the given user and org, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByUserAndOrg(ctx context.Context, userID, orgID string) (*domain.Membership, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+membershipColumns+` FROM organization_members
		WHERE user_id = $1 AND organization_id = $2`, userID, orgID)
	return scanMembership(row)
}

// ListByOrg returns all memberships for the given org. Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListByOrg(ctx context.Context, orgID string) ([]*domain.Membership, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+membershipColumns+` FROM organization_members
		WHERE organization_id = $1 ORDER BY joined_at`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Membership
	for rows.Next() {
		m, err := scanMembershipRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Create persists the membership to the database. The membership must have ID set.
// A unique constraint on (organization_id, user_id) guards against duplicates.
func (r *PostgresRepository) Create(ctx context.Context, m *domain.Membership) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO organization_members (`+membershipColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.OrganizationID, m.UserID, string(m.Role),
		nullString(m.Department), nullString(m.Title), m.JoinedAt,
	)
	return err
}

// DeleteByUserAndOrg removes the membership row. Returns false if no row was deleted.
func (r *PostgresRepository) DeleteByUserAndOrg(ctx context.Context, userID, orgID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM organization_members WHERE user_id = $1 AND organization_id = $2`, userID, orgID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdateRole sets the membership's role and returns the updated row, or nil if no membership exists.
func (r *PostgresRepository) UpdateRole(ctx context.Context, userID, orgID string, role domain.Role) (*domain.Membership, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE organization_members SET role = $3
		WHERE user_id = $1 AND organization_id = $2
		RETURNING `+membershipColumns, userID, orgID, string(role))
	return scanMembership(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMembership(row *sql.Row) (*domain.Membership, error) {
	m, err := scanMembershipRows(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func scanMembershipRows(s rowScanner) (*domain.Membership, error) {
	var m domain.Membership
	var role string
	var department, title sql.NullString
	if err := s.Scan(&m.ID, &m.OrganizationID, &m.UserID, &role, &department, &title, &m.JoinedAt); err != nil {
		return nil, err
	}
	m.Role = domain.Role(role)
	m.Department = department.String
	m.Title = title.String
	return &m, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

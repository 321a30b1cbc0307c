package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	membershipdomain "workstack/backend/internal/membership/domain"
	"workstack/backend/internal/organization/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an organization repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const orgColumns = `id, name, domain, logo, settings, created_at, updated_at`

// GetByID returns the organization for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orgColumns+` FROM organizations WHERE id = $1`, id)
	o, err := scanOrganization(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return o, nil
}

// ListByUser returns all organizations the user is a member of.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Organization, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.name, o.domain, o.logo, o.settings, o.created_at, o.updated_at
		FROM organizations o
		JOIN organization_members m ON m.organization_id = o.id
		WHERE m.user_id = $1
		ORDER BY o.created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Organization
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// CreateWithOwner inserts the organization and the creator's OWNER membership
// in a single transaction: partial creation is never observable.
func (r *PostgresRepository) CreateWithOwner(ctx context.Context, o *domain.Organization, owner *membershipdomain.Membership) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	settings, err := marshalSettings(o.Settings)
	if err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO organizations (`+orgColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.ID, o.Name, nullString(o.Domain), nullString(o.Logo), settings, o.CreatedAt, o.UpdatedAt,
	); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO organization_members (id, organization_id, user_id, role, department, title, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		owner.ID, owner.OrganizationID, owner.UserID, string(owner.Role),
		nullString(owner.Department), nullString(owner.Title), owner.JoinedAt,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// Update updates the existing organization record in the database. Missing rows are not an error.
func (r *PostgresRepository) Update(ctx context.Context, o *domain.Organization) error {
	settings, err := marshalSettings(o.Settings)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE organizations
		SET name = $2, domain = $3, logo = $4, settings = $5, updated_at = $6
		WHERE id = $1`,
		o.ID, o.Name, nullString(o.Domain), nullString(o.Logo), settings, o.UpdatedAt,
	)
	return err
}

// DeleteCascade deletes the organization and everything it owns in one
// transaction, children first: tasks in its lists, its task lists, team
// members, teams, memberships, then the organization row.
// Returns false if the organization did not exist.
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

	steps := []string{
		`DELETE FROM tasks WHERE list_id IN (SELECT id FROM task_lists WHERE organization_id = $1)`,
		`DELETE FROM task_lists WHERE organization_id = $1`,
		`DELETE FROM team_members WHERE team_id IN (SELECT id FROM teams WHERE organization_id = $1)`,
		`DELETE FROM teams WHERE organization_id = $1`,
		`DELETE FROM organization_members WHERE organization_id = $1`,
	}
	for _, q := range steps {
		if _, err = tx.ExecContext(ctx, q, id); err != nil {
			return false, err
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM organizations WHERE id = $1`, id)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrganization(s rowScanner) (*domain.Organization, error) {
	var o domain.Organization
	var dom, logo sql.NullString
	var settings []byte
	if err := s.Scan(&o.ID, &o.Name, &dom, &logo, &settings, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Domain = dom.String
	o.Logo = logo.String
	if len(settings) > 0 {
		var st domain.Settings
		if err := json.Unmarshal(settings, &st); err != nil {
			return nil, err
		}
		o.Settings = &st
	}
	return &o, nil
}

func marshalSettings(s *domain.Settings) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

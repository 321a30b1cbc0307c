package repository

import (
	"context"
	"database/sql"
	"errors"

	"workstack/backend/internal/user/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, email, name, display_name, avatar, phone_number, password_hash, status, timezone, language, created_at, updated_at`

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmail returns the user with the given email, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// Create persists the user to the database. The user must have ID set; it is not assigned by this method.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		u.ID, u.Email, u.Name, nullString(u.DisplayName), nullString(u.Avatar),
		nullString(u.PhoneNumber), u.PasswordHash, string(u.Status), u.Timezone,
		u.Language, u.CreatedAt, u.UpdatedAt,
	)
	return err
}

// Update updates the existing user record in the database. Missing rows are not an error.
func (r *PostgresRepository) Update(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET email = $2, name = $3, display_name = $4, avatar = $5, phone_number = $6,
		    password_hash = $7, status = $8, timezone = $9, language = $10, updated_at = $11
		WHERE id = $1`,
		u.ID, u.Email, u.Name, nullString(u.DisplayName), nullString(u.Avatar),
		nullString(u.PhoneNumber), u.PasswordHash, string(u.Status), u.Timezone,
		u.Language, u.UpdatedAt,
	)
	return err
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	var displayName, avatar, phone sql.NullString
	var status string
	err := row.Scan(&u.ID, &u.Email, &u.Name, &displayName, &avatar, &phone,
		&u.PasswordHash, &status, &u.Timezone, &u.Language, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.DisplayName = displayName.String
	u.Avatar = avatar.String
	u.PhoneNumber = phone.String
	u.Status = domain.Status(status)
	return &u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"workstack/backend/internal/task/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a task repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const taskListColumns = `id, organization_id, name, position, color, created_at, updated_at`

// GetList returns the task list for id, or nil if not found.
func (r *PostgresRepository) GetList(ctx context.Context, id string) (*domain.TaskList, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskListColumns+` FROM task_lists WHERE id = $1`, id)
	l, err := scanTaskList(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return l, nil
}

// ListListsByOrg returns all task lists in the given organization ordered by position.
func (r *PostgresRepository) ListListsByOrg(ctx context.Context, orgID string) ([]*domain.TaskList, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+taskListColumns+` FROM task_lists
		WHERE organization_id = $1 ORDER BY position, created_at`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.TaskList
	for rows.Next() {
		l, err := scanTaskList(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// CreateList persists the task list. The list must have ID set.
func (r *PostgresRepository) CreateList(ctx context.Context, l *domain.TaskList) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO task_lists (`+taskListColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		l.ID, l.OrganizationID, l.Name, l.Position, nullString(l.Color), l.CreatedAt, l.UpdatedAt,
	)
	return err
}

// UpdateList updates the existing task list record. Missing rows are not an error.
func (r *PostgresRepository) UpdateList(ctx context.Context, l *domain.TaskList) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE task_lists SET name = $2, position = $3, color = $4, updated_at = $5 WHERE id = $1`,
		l.ID, l.Name, l.Position, nullString(l.Color), l.UpdatedAt,
	)
	return err
}

// DeleteListCascade deletes the list and its tasks in one transaction, tasks
// first. Returns false if the list did not exist.
func (r *PostgresRepository) DeleteListCascade(ctx context.Context, id string) (deleted bool, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM tasks WHERE list_id = $1`, id); err != nil {
		return false, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM task_lists WHERE id = $1`, id)
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

const taskColumns = `id, list_id, creator_id, assignee_id, title, description, status, priority, due_date, completed_at, created_at, updated_at`

// GetTask returns the task for id, or nil if not found.
func (r *PostgresRepository) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

// ListTasksByList returns all tasks in the given list, oldest first.
func (r *PostgresRepository) ListTasksByList(ctx context.Context, listID string) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE list_id = $1 ORDER BY created_at`, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateTask persists the task. The task must have ID set.
func (r *PostgresRepository) CreateTask(ctx context.Context, t *domain.Task) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		t.ID, t.ListID, t.CreatorID, nullString(t.AssigneeID), t.Title, nullString(t.Description),
		string(t.Status), string(t.Priority), t.DueDate, t.CompletedAt, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

// UpdateTask updates the existing task record. Missing rows are not an error.
func (r *PostgresRepository) UpdateTask(ctx context.Context, t *domain.Task) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE tasks SET assignee_id = $2, title = $3, description = $4, status = $5,
			priority = $6, due_date = $7, completed_at = $8, updated_at = $9
		WHERE id = $1`,
		t.ID, nullString(t.AssigneeID), t.Title, nullString(t.Description),
		string(t.Status), string(t.Priority), t.DueDate, t.CompletedAt, t.UpdatedAt,
	)
	return err
}

// DeleteTask removes the task row. Returns false if no row was deleted.
func (r *PostgresRepository) DeleteTask(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
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

func scanTaskList(s rowScanner) (*domain.TaskList, error) {
	var l domain.TaskList
	var color sql.NullString
	if err := s.Scan(&l.ID, &l.OrganizationID, &l.Name, &l.Position, &color, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	l.Color = color.String
	return &l, nil
}

func scanTask(s rowScanner) (*domain.Task, error) {
	var t domain.Task
	var assignee, desc sql.NullString
	var status, priority string
	if err := s.Scan(&t.ID, &t.ListID, &t.CreatorID, &assignee, &t.Title, &desc,
		&status, &priority, &t.DueDate, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.AssigneeID = assignee.String
	t.Description = desc.String
	t.Status = domain.Status(status)
	t.Priority = domain.Priority(priority)
	return &t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

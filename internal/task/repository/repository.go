package repository

import (
	"context"

	"workstack/backend/internal/task/domain"
)

// Repository persists task lists and tasks.
type Repository interface {
	GetList(ctx context.Context, id string) (*domain.TaskList, error)
	ListListsByOrg(ctx context.Context, orgID string) ([]*domain.TaskList, error)
	CreateList(ctx context.Context, list *domain.TaskList) error
	UpdateList(ctx context.Context, list *domain.TaskList) error
	// DeleteListCascade removes the list and every task in it.
	DeleteListCascade(ctx context.Context, id string) (bool, error)

	GetTask(ctx context.Context, id string) (*domain.Task, error)
	ListTasksByList(ctx context.Context, listID string) ([]*domain.Task, error)
	CreateTask(ctx context.Context, task *domain.Task) error
	UpdateTask(ctx context.Context, task *domain.Task) error
	DeleteTask(ctx context.Context, id string) (bool, error)
}

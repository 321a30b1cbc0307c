package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	membershipdomain "workstack/backend/internal/membership/domain"
	"workstack/backend/internal/platform/rbac"
	"workstack/backend/internal/task/domain"
)

// Sentinel errors for the task service; handlers map them to HTTP codes.
var (
	ErrListNotFound = errors.New("task list not found")
	ErrTaskNotFound = errors.New("task not found")
	ErrInvalidInput = errors.New("invalid input")
)

// TaskRepo is the minimal task repository needed by the service.
type TaskRepo interface {
	GetList(ctx context.Context, id string) (*domain.TaskList, error)
	ListListsByOrg(ctx context.Context, orgID string) ([]*domain.TaskList, error)
	CreateList(ctx context.Context, list *domain.TaskList) error
	UpdateList(ctx context.Context, list *domain.TaskList) error
	DeleteListCascade(ctx context.Context, id string) (bool, error)

	GetTask(ctx context.Context, id string) (*domain.Task, error)
	ListTasksByList(ctx context.Context, listID string) ([]*domain.Task, error)
	CreateTask(ctx context.Context, task *domain.Task) error
	UpdateTask(ctx context.Context, task *domain.Task) error
	DeleteTask(ctx context.Context, id string) (bool, error)
}

// MembershipRepo resolves org memberships for authorization.
type MembershipRepo interface {
	GetByUserAndOrg(ctx context.Context, userID, orgID string) (*membershipdomain.Membership, error)
}

// TaskService implements task lists and tasks within an organization.
// Guests may read; writing takes at least the MEMBER role; deleting a whole
// list takes ADMIN because it removes every task in it.
type TaskService struct {
	taskRepo       TaskRepo
	membershipRepo MembershipRepo
}

// NewTaskService returns a TaskService with the given dependencies.
func NewTaskService(taskRepo TaskRepo, membershipRepo MembershipRepo) *TaskService {
	return &TaskService{taskRepo: taskRepo, membershipRepo: membershipRepo}
}

// CreateList creates a task list in the organization.
func (s *TaskService) CreateList(ctx context.Context, orgID, name, color string, position int) (*domain.TaskList, error) {
	if _, err := rbac.Authorize(ctx, s.membershipRepo, orgID, membershipdomain.RoleMember); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	l := &domain.TaskList{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		Name:           name,
		Position:       position,
		Color:          color,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.taskRepo.CreateList(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// ListLists returns all task lists in the organization ordered by position.
func (s *TaskService) ListLists(ctx context.Context, orgID string) ([]*domain.TaskList, error) {
	if _, err := rbac.RequireOrgMember(ctx, s.membershipRepo, orgID); err != nil {
		return nil, err
	}
	return s.taskRepo.ListListsByOrg(ctx, orgID)
}

// UpdateList renames or repositions the list.
func (s *TaskService) UpdateList(ctx context.Context, orgID, listID, name, color string, position *int) (*domain.TaskList, error) {
	if _, err := rbac.Authorize(ctx, s.membershipRepo, orgID, membershipdomain.RoleMember); err != nil {
		return nil, err
	}
	l, err := s.listInOrg(ctx, orgID, listID)
	if err != nil {
		return nil, err
	}
	if name != "" {
		l.Name = name
	}
	if color != "" {
		l.Color = color
	}
	if position != nil {
		l.Position = *position
	}
	l.UpdatedAt = time.Now().UTC()
	if err := s.taskRepo.UpdateList(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// DeleteList removes the list and every task in it in one transaction.
func (s *TaskService) DeleteList(ctx context.Context, orgID, listID string) error {
	if _, err := rbac.RequireOrgAdmin(ctx, s.membershipRepo, orgID); err != nil {
		return err
	}
	if _, err := s.listInOrg(ctx, orgID, listID); err != nil {
		return err
	}
	deleted, err := s.taskRepo.DeleteListCascade(ctx, listID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrListNotFound
	}
	return nil
}

// CreateTask creates a task in the list. The creator is the caller.
func (s *TaskService) CreateTask(ctx context.Context, orgID, listID string, in TaskInput) (*domain.Task, error) {
	m, err := rbac.Authorize(ctx, s.membershipRepo, orgID, membershipdomain.RoleMember)
	if err != nil {
		return nil, err
	}
	if _, err := s.listInOrg(ctx, orgID, listID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	t := &domain.Task{
		ID:          uuid.New().String(),
		ListID:      listID,
		CreatorID:   m.UserID,
		AssigneeID:  in.AssigneeID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.taskRepo.CreateTask(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// TaskInput carries the caller-settable task fields.
type TaskInput struct {
	Title       string
	Description string
	AssigneeID  string
	Status      domain.Status
	Priority    domain.Priority
	DueDate     *time.Time
}

// ListTasks returns all tasks in the list.
func (s *TaskService) ListTasks(ctx context.Context, orgID, listID string) ([]*domain.Task, error) {
	if _, err := rbac.RequireOrgMember(ctx, s.membershipRepo, orgID); err != nil {
		return nil, err
	}
	if _, err := s.listInOrg(ctx, orgID, listID); err != nil {
		return nil, err
	}
	return s.taskRepo.ListTasksByList(ctx, listID)
}

// GetTask returns one task.
func (s *TaskService) GetTask(ctx context.Context, orgID, listID, taskID string) (*domain.Task, error) {
	if _, err := rbac.RequireOrgMember(ctx, s.membershipRepo, orgID); err != nil {
		return nil, err
	}
	if _, err := s.listInOrg(ctx, orgID, listID); err != nil {
		return nil, err
	}
	return s.taskInList(ctx, listID, taskID)
}

// UpdateTask applies the non-zero fields of in to the task. Moving a task to
// COMPLETED stamps CompletedAt; moving it out clears the stamp.
func (s *TaskService) UpdateTask(ctx context.Context, orgID, listID, taskID string, in TaskInput) (*domain.Task, error) {
	if _, err := rbac.Authorize(ctx, s.membershipRepo, orgID, membershipdomain.RoleMember); err != nil {
		return nil, err
	}
	if _, err := s.listInOrg(ctx, orgID, listID); err != nil {
		return nil, err
	}
	t, err := s.taskInList(ctx, listID, taskID)
	if err != nil {
		return nil, err
	}
	if in.Title != "" {
		t.Title = in.Title
	}
	if in.Description != "" {
		t.Description = in.Description
	}
	if in.AssigneeID != "" {
		t.AssigneeID = in.AssigneeID
	}
	if in.Priority != "" {
		t.Priority = in.Priority
	}
	if in.DueDate != nil {
		t.DueDate = in.DueDate
	}
	if in.Status != "" && in.Status != t.Status {
		t.Status = in.Status
		if in.Status == domain.StatusCompleted {
			now := time.Now().UTC()
			t.CompletedAt = &now
		} else {
			t.CompletedAt = nil
		}
	}
	t.UpdatedAt = time.Now().UTC()
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.taskRepo.UpdateTask(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTask removes one task.
func (s *TaskService) DeleteTask(ctx context.Context, orgID, listID, taskID string) error {
	if _, err := rbac.Authorize(ctx, s.membershipRepo, orgID, membershipdomain.RoleMember); err != nil {
		return err
	}
	if _, err := s.listInOrg(ctx, orgID, listID); err != nil {
		return err
	}
	if _, err := s.taskInList(ctx, listID, taskID); err != nil {
		return err
	}
	deleted, err := s.taskRepo.DeleteTask(ctx, taskID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrTaskNotFound
	}
	return nil
}

// listInOrg fetches the list and checks it belongs to the org. Lists from
// other organizations are reported as not found rather than forbidden.
func (s *TaskService) listInOrg(ctx context.Context, orgID, listID string) (*domain.TaskList, error) {
	l, err := s.taskRepo.GetList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if l == nil || l.OrganizationID != orgID {
		return nil, ErrListNotFound
	}
	return l, nil
}

func (s *TaskService) taskInList(ctx context.Context, listID, taskID string) (*domain.Task, error) {
	t, err := s.taskRepo.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t == nil || t.ListID != listID {
		return nil, ErrTaskNotFound
	}
	return t, nil
}

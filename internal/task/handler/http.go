package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"workstack/backend/internal/platform/rbac"
	"workstack/backend/internal/server"
	"workstack/backend/internal/task/domain"
	"workstack/backend/internal/task/service"
)

// TaskHandler exposes task lists and tasks over HTTP, nested under an
// organization. All routes sit behind the auth middleware.
type TaskHandler struct {
	service *service.TaskService
}

// NewTaskHandler returns a TaskHandler backed by the given service.
func NewTaskHandler(service *service.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// Routes mounts the task endpoints on r, expecting an orgID URL parameter
// from the enclosing route.
func (h *TaskHandler) Routes(r chi.Router) {
	r.Post("/", h.CreateList)
	r.Get("/", h.ListLists)
	r.Route("/{listID}", func(r chi.Router) {
		r.Put("/", h.UpdateList)
		r.Delete("/", h.DeleteList)
		r.Post("/tasks", h.CreateTask)
		r.Get("/tasks", h.ListTasks)
		r.Route("/tasks/{taskID}", func(r chi.Router) {
			r.Get("/", h.GetTask)
			r.Put("/", h.UpdateTask)
			r.Delete("/", h.DeleteTask)
		})
	})
}

type listResponse struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	Position       int       `json:"position"`
	Color          string    `json:"color,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toListResponse(l *domain.TaskList) listResponse {
	return listResponse{
		ID:             l.ID,
		OrganizationID: l.OrganizationID,
		Name:           l.Name,
		Position:       l.Position,
		Color:          l.Color,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}

type taskResponse struct {
	ID          string     `json:"id"`
	ListID      string     `json:"list_id"`
	CreatorID   string     `json:"creator_id"`
	AssigneeID  string     `json:"assignee_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toTaskResponse(t *domain.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		ListID:      t.ListID,
		CreatorID:   t.CreatorID,
		AssigneeID:  t.AssigneeID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type listRequest struct {
	Name     string `json:"name"`
	Color    string `json:"color"`
	Position *int   `json:"position"`
}

// CreateList handles POST /organizations/{orgID}/lists.
func (h *TaskHandler) CreateList(w http.ResponseWriter, r *http.Request) {
	var req listRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	pos := 0
	if req.Position != nil {
		pos = *req.Position
	}
	l, err := h.service.CreateList(r.Context(), chi.URLParam(r, "orgID"), req.Name, req.Color, pos)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	server.RespondJSON(w, http.StatusCreated, toListResponse(l))
}

// ListLists handles GET /organizations/{orgID}/lists.
func (h *TaskHandler) ListLists(w http.ResponseWriter, r *http.Request) {
	lists, err := h.service.ListLists(r.Context(), chi.URLParam(r, "orgID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	out := make([]listResponse, 0, len(lists))
	for _, l := range lists {
		out = append(out, toListResponse(l))
	}
	server.RespondJSON(w, http.StatusOK, out)
}

// UpdateList handles PUT /organizations/{orgID}/lists/{listID}.
func (h *TaskHandler) UpdateList(w http.ResponseWriter, r *http.Request) {
	var req listRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	l, err := h.service.UpdateList(r.Context(),
		chi.URLParam(r, "orgID"), chi.URLParam(r, "listID"), req.Name, req.Color, req.Position)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	server.RespondJSON(w, http.StatusOK, toListResponse(l))
}

// DeleteList handles DELETE /organizations/{orgID}/lists/{listID}.
func (h *TaskHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteList(r.Context(), chi.URLParam(r, "orgID"), chi.URLParam(r, "listID")); err != nil {
		h.respondErr(w, err)
		return
	}
	server.RespondJSON(w, http.StatusNoContent, nil)
}

type taskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssigneeID  string     `json:"assignee_id"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

func (req taskRequest) input() service.TaskInput {
	return service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		Status:      domain.Status(req.Status),
		Priority:    domain.Priority(req.Priority),
		DueDate:     req.DueDate,
	}
}

// CreateTask handles POST /organizations/{orgID}/lists/{listID}/tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	t, err := h.service.CreateTask(r.Context(),
		chi.URLParam(r, "orgID"), chi.URLParam(r, "listID"), req.input())
	if err != nil {
		h.respondErr(w, err)
		return
	}
	server.RespondJSON(w, http.StatusCreated, toTaskResponse(t))
}

// ListTasks handles GET /organizations/{orgID}/lists/{listID}/tasks.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.ListTasks(r.Context(), chi.URLParam(r, "orgID"), chi.URLParam(r, "listID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	server.RespondJSON(w, http.StatusOK, out)
}

// GetTask handles GET /organizations/{orgID}/lists/{listID}/tasks/{taskID}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.GetTask(r.Context(),
		chi.URLParam(r, "orgID"), chi.URLParam(r, "listID"), chi.URLParam(r, "taskID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	server.RespondJSON(w, http.StatusOK, toTaskResponse(t))
}

// UpdateTask handles PUT /organizations/{orgID}/lists/{listID}/tasks/{taskID}.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	t, err := h.service.UpdateTask(r.Context(),
		chi.URLParam(r, "orgID"), chi.URLParam(r, "listID"), chi.URLParam(r, "taskID"), req.input())
	if err != nil {
		h.respondErr(w, err)
		return
	}
	server.RespondJSON(w, http.StatusOK, toTaskResponse(t))
}

// DeleteTask handles DELETE /organizations/{orgID}/lists/{listID}/tasks/{taskID}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteTask(r.Context(),
		chi.URLParam(r, "orgID"), chi.URLParam(r, "listID"), chi.URLParam(r, "taskID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	server.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *TaskHandler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rbac.ErrUnauthenticated):
		server.RespondError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, rbac.ErrForbidden):
		server.RespondError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrListNotFound),
		errors.Is(err, service.ErrTaskNotFound):
		server.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		server.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("task request failed", "error", err)
		server.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

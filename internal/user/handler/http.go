package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"workstack/backend/internal/server"
	"workstack/backend/internal/server/middleware"
	"workstack/backend/internal/user/domain"
)

// UserRepo is the repository surface the user handler needs.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
}

// UserHandler exposes the user profile endpoints. All routes sit behind the
// auth middleware.
type UserHandler struct {
	repo UserRepo
}

// NewUserHandler returns a UserHandler backed by the given repository.
func NewUserHandler(repo UserRepo) *UserHandler {
	return &UserHandler{repo: repo}
}

// Routes mounts the user endpoints on r.
func (h *UserHandler) Routes(r chi.Router) {
	r.Get("/me", h.Me)
	r.Put("/me", h.UpdateMe)
	r.Get("/{userID}", h.Get)
}

type userResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name,omitempty"`
	Avatar      string    `json:"avatar,omitempty"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Status      string    `json:"status"`
	Timezone    string    `json:"timezone"`
	Language    string    `json:"language"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		DisplayName: u.DisplayName,
		Avatar:      u.Avatar,
		PhoneNumber: u.PhoneNumber,
		Status:      string(u.Status),
		Timezone:    u.Timezone,
		Language:    u.Language,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// Me handles GET /users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	if u == nil {
		server.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	server.RespondJSON(w, http.StatusOK, toUserResponse(u))
}

type updateMeRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
	PhoneNumber string `json:"phone_number"`
	Timezone    string `json:"timezone"`
	Language    string `json:"language"`
}

// UpdateMe handles PUT /users/me. Empty fields are left unchanged; email and
// status are not caller-editable.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	if u == nil {
		server.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req updateMeRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name != "" {
		u.Name = req.Name
	}
	if req.DisplayName != "" {
		u.DisplayName = req.DisplayName
	}
	if req.Avatar != "" {
		u.Avatar = req.Avatar
	}
	if req.PhoneNumber != "" {
		u.PhoneNumber = req.PhoneNumber
	}
	if req.Timezone != "" {
		u.Timezone = req.Timezone
	}
	if req.Language != "" {
		u.Language = req.Language
	}
	u.UpdatedAt = time.Now().UTC()
	if err := u.Validate(); err != nil {
		server.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.repo.Update(r.Context(), u); err != nil {
		slog.Error("update user", "error", err, "user_id", u.ID)
		server.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	server.RespondJSON(w, http.StatusOK, toUserResponse(u))
}

// Get handles GET /users/{userID}. Any authenticated user may look up
// another user's public profile.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	u, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		slog.Error("get user", "error", err, "user_id", id)
		server.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if u == nil {
		server.RespondError(w, http.StatusNotFound, "user not found")
		return
	}
	server.RespondJSON(w, http.StatusOK, toUserResponse(u))
}

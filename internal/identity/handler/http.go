package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"workstack/backend/internal/identity/service"
	"workstack/backend/internal/server"
	userdomain "workstack/backend/internal/user/domain"
)

// AuthService is the service surface the auth handler needs.
type AuthService interface {
	Signup(ctx context.Context, email, password, name string) (*userdomain.User, error)
	Login(ctx context.Context, email, password string) (*service.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*service.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
}

// AuthMetrics receives auth outcome signals. May be nil.
type AuthMetrics interface {
	RecordAuthFailure(kind string)
	SessionOpened()
	SessionClosed()
}

// AuthHandler exposes signup, login, refresh, and logout over HTTP.
type AuthHandler struct {
	service AuthService
	metrics AuthMetrics
}

// NewAuthHandler returns an AuthHandler backed by the given service.
// metrics may be nil.
func NewAuthHandler(service AuthService, metrics AuthMetrics) *AuthHandler {
	return &AuthHandler{service: service, metrics: metrics}
}

// Routes mounts the auth endpoints on r.
func (h *AuthHandler) Routes(r chi.Router) {
	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)
	r.Post("/logout", h.Logout)
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	u, err := h.service.Signup(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailAlreadyRegistered):
			server.RespondError(w, http.StatusConflict, err.Error())
		default:
			// Validation failures from the service carry a caller-facing message.
			server.RespondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	server.RespondJSON(w, http.StatusOK, userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	UserID       string    `json:"user_id"`
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	pair, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			h.recordFailure("login")
			server.RespondError(w, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, service.ErrAccountInactive):
			h.recordFailure("login")
			server.RespondError(w, http.StatusForbidden, "account is not active")
		default:
			slog.Error("login failed", "error", err)
			server.RespondError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	if h.metrics != nil {
		h.metrics.SessionOpened()
	}
	server.RespondJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		ExpiresAt:    pair.ExpiresAt,
		UserID:       pair.UserID,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh handles POST /auth/refresh. Reuse of a rotated token maps to the
// same 401 as any other invalid token; the distinction stays server-side.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	pair, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefreshTokenReuse):
			slog.Warn("refresh token reuse detected")
			h.recordFailure("refresh")
			server.RespondError(w, http.StatusUnauthorized, "invalid or expired refresh token")
		case errors.Is(err, service.ErrInvalidRefreshToken):
			h.recordFailure("refresh")
			server.RespondError(w, http.StatusUnauthorized, "invalid or expired refresh token")
		case errors.Is(err, service.ErrAccountInactive):
			h.recordFailure("refresh")
			server.RespondError(w, http.StatusForbidden, "account is not active")
		default:
			slog.Error("refresh failed", "error", err)
			server.RespondError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	server.RespondJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		ExpiresAt:    pair.ExpiresAt,
		UserID:       pair.UserID,
	})
}

// Logout handles POST /auth/logout. Always returns 204; an unknown or
// already-revoked token gives an attacker nothing to probe.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	// Body is optional: a bearer-authenticated call can log out its own session.
	_ = server.DecodeJSON(r, &req)
	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		slog.Error("logout failed", "error", err)
	} else if h.metrics != nil {
		h.metrics.SessionClosed()
	}
	server.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *AuthHandler) recordFailure(kind string) {
	if h.metrics != nil {
		h.metrics.RecordAuthFailure(kind)
	}
}

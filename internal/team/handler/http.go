package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"workstack/backend/internal/platform/rbac"
	"workstack/backend/internal/server"
	"workstack/backend/internal/team/domain"
	"workstack/backend/internal/team/service"
)

// TeamHandler exposes team management over HTTP, nested under an
// organization. All routes sit behind the auth middleware.
type TeamHandler struct {
	service *service.TeamService
}

// NewTeamHandler returns a TeamHandler backed by the given service.
func NewTeamHandler(service *service.TeamService) *TeamHandler {
	return &TeamHandler{service: service}
}

// Routes mounts the team endpoints on r, expecting an orgID URL parameter
// from the enclosing route.
func (h *TeamHandler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Route("/{teamID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
		r.Get("/members", h.ListMembers)
		r.Post("/members", h.AddMember)
		r.Delete("/members/{userID}", h.RemoveMember)
	})
}

type teamResponse struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toTeamResponse(t *domain.Team) teamResponse {
	return teamResponse{
		ID:             t.ID,
		OrganizationID: t.OrganizationID,
		Name:           t.Name,
		Description:    t.Description,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

type teamMemberResponse struct {
	ID          string    `json:"id"`
	TeamID      string    `json:"team_id"`
	OrgMemberID string    `json:"org_member_id"`
	Role        string    `json:"role"`
	JoinedAt    time.Time `json:"joined_at"`
}

func toTeamMemberResponse(m *domain.TeamMember) teamMemberResponse {
	return teamMemberResponse{
		ID:          m.ID,
		TeamID:      m.TeamID,
		OrgMemberID: m.OrgMemberID,
		Role:        string(m.Role),
		JoinedAt:    m.JoinedAt,
	}
}

type teamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create handles POST /organizations/{orgID}/teams.
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	t, err := h.service.Create(r.Context(), chi.URLParam(r, "orgID"), req.Name, req.Description)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	server.RespondJSON(w, http.StatusCreated, toTeamResponse(t))
}

// List handles GET /organizations/{orgID}/teams.
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	teams, err := h.service.List(r.Context(), chi.URLParam(r, "orgID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	out := make([]teamResponse, 0, len(teams))
	for _, t := range teams {
		out = append(out, toTeamResponse(t))
	}
	server.RespondJSON(w, http.StatusOK, out)
}

// Get handles GET /organizations/{orgID}/teams/{teamID}.
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.Get(r.Context(), chi.URLParam(r, "orgID"), chi.URLParam(r, "teamID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	server.RespondJSON(w, http.StatusOK, toTeamResponse(t))
}

// Update handles PUT /organizations/{orgID}/teams/{teamID}.
func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	t, err := h.service.Update(r.Context(),
		chi.URLParam(r, "orgID"), chi.URLParam(r, "teamID"), req.Name, req.Description)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	server.RespondJSON(w, http.StatusOK, toTeamResponse(t))
}

// Delete handles DELETE /organizations/{orgID}/teams/{teamID}.
func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "orgID"), chi.URLParam(r, "teamID")); err != nil {
		h.respondErr(w, err)
		return
	}
	server.RespondJSON(w, http.StatusNoContent, nil)
}

// ListMembers handles GET /organizations/{orgID}/teams/{teamID}/members.
func (h *TeamHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.ListMembers(r.Context(), chi.URLParam(r, "orgID"), chi.URLParam(r, "teamID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	out := make([]teamMemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, toTeamMemberResponse(m))
	}
	server.RespondJSON(w, http.StatusOK, out)
}

type addTeamMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// AddMember handles POST /organizations/{orgID}/teams/{teamID}/members.
// Idempotent: re-adding answers 200 with the existing row instead of 201.
func (h *TeamHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	var req addTeamMemberRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	m, created, err := h.service.AddMember(r.Context(),
		chi.URLParam(r, "orgID"), chi.URLParam(r, "teamID"), req.UserID, domain.Role(req.Role))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	server.RespondJSON(w, status, toTeamMemberResponse(m))
}

// RemoveMember handles DELETE /organizations/{orgID}/teams/{teamID}/members/{userID}.
func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	err := h.service.RemoveMember(r.Context(),
		chi.URLParam(r, "orgID"), chi.URLParam(r, "teamID"), chi.URLParam(r, "userID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	server.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *TeamHandler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rbac.ErrUnauthenticated):
		server.RespondError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, rbac.ErrForbidden):
		server.RespondError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrTeamNotFound),
		errors.Is(err, service.ErrTeamMemberNotFound):
		server.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotOrgMember),
		errors.Is(err, service.ErrInvalidTeamRole),
		errors.Is(err, service.ErrInvalidInput):
		server.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("team request failed", "error", err)
		server.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

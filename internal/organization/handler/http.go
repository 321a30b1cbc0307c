package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	membershipdomain "workstack/backend/internal/membership/domain"
	"workstack/backend/internal/organization/domain"
	"workstack/backend/internal/organization/service"
	"workstack/backend/internal/platform/rbac"
	"workstack/backend/internal/server"
)

// OrgHandler exposes organization and membership management over HTTP. All
// routes sit behind the auth middleware.
type OrgHandler struct {
	service *service.OrgService
}

// NewOrgHandler returns an OrgHandler backed by the given service.
func NewOrgHandler(service *service.OrgService) *OrgHandler {
	return &OrgHandler{service: service}
}

// Routes mounts the organization endpoints on r. nested mounts are attached
// under /{orgID} so org-scoped features (teams, lists, audit logs) share the
// same URL parameter.
func (h *OrgHandler) Routes(r chi.Router, nested ...func(chi.Router)) {
	r.Post("/", h.Create)
	r.Get("/", h.ListMine)
	r.Route("/{orgID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
		r.Get("/members", h.ListMembers)
		r.Post("/members", h.AddMember)
		r.Put("/members/{userID}", h.UpdateMemberRole)
		r.Delete("/members/{userID}", h.RemoveMember)
		for _, mount := range nested {
			mount(r)
		}
	})
}

type orgResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Domain    string           `json:"domain,omitempty"`
	Logo      string           `json:"logo,omitempty"`
	Settings  *domain.Settings `json:"settings"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func toOrgResponse(o *domain.Organization) orgResponse {
	return orgResponse{
		ID:        o.ID,
		Name:      o.Name,
		Domain:    o.Domain,
		Logo:      o.Logo,
		Settings:  o.Settings,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

type memberResponse struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	UserID         string    `json:"user_id"`
	Role           string    `json:"role"`
	Department     string    `json:"department,omitempty"`
	Title          string    `json:"title,omitempty"`
	JoinedAt       time.Time `json:"joined_at"`
}

func toMemberResponse(m *membershipdomain.Membership) memberResponse {
	return memberResponse{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		UserID:         m.UserID,
		Role:           string(m.Role),
		Department:     m.Department,
		Title:          m.Title,
		JoinedAt:       m.JoinedAt,
	}
}

type createOrgRequest struct {
	Name     string           `json:"name"`
	Domain   string           `json:"domain"`
	Settings *domain.Settings `json:"settings"`
}

// Create handles POST /organizations.
func (h *OrgHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrgRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	org, err := h.service.Create(r.Context(), req.Name, req.Domain, req.Settings)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	server.RespondJSON(w, http.StatusCreated, toOrgResponse(org))
}

// ListMine handles GET /organizations.
func (h *OrgHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.service.ListMine(r.Context())
	if err != nil {
		h.respondErr(w, err)
		return
	}
	out := make([]orgResponse, 0, len(orgs))
	for _, o := range orgs {
		out = append(out, toOrgResponse(o))
	}
	server.RespondJSON(w, http.StatusOK, out)
}

// Get handles GET /organizations/{orgID}.
func (h *OrgHandler) Get(w http.ResponseWriter, r *http.Request) {
	org, err := h.service.Get(r.Context(), chi.URLParam(r, "orgID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	server.RespondJSON(w, http.StatusOK, toOrgResponse(org))
}

type updateOrgRequest struct {
	Name     string           `json:"name"`
	Domain   string           `json:"domain"`
	Logo     string           `json:"logo"`
	Settings *domain.Settings `json:"settings"`
}

// Update handles PUT /organizations/{orgID}.
func (h *OrgHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateOrgRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	org, err := h.service.Update(r.Context(), chi.URLParam(r, "orgID"), req.Name, req.Domain, req.Logo, req.Settings)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	server.RespondJSON(w, http.StatusOK, toOrgResponse(org))
}

// Delete handles DELETE /organizations/{orgID}.
func (h *OrgHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "orgID")); err != nil {
		h.respondErr(w, err)
		return
	}
	server.RespondJSON(w, http.StatusNoContent, nil)
}

// ListMembers handles GET /organizations/{orgID}/members.
func (h *OrgHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.ListMembers(r.Context(), chi.URLParam(r, "orgID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	out := make([]memberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, toMemberResponse(m))
	}
	server.RespondJSON(w, http.StatusOK, out)
}

type addMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// AddMember handles POST /organizations/{orgID}/members. The operation is
// idempotent: re-adding an existing member answers 200 with the existing
// membership instead of 201.
func (h *OrgHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	orgID := chi.URLParam(r, "orgID")
	m, created, err := h.service.AddMember(r.Context(), orgID, req.UserID, membershipdomain.Role(req.Role))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	server.RespondJSON(w, status, toMemberResponse(m))
}

type updateMemberRoleRequest struct {
	Role string `json:"role"`
}

// UpdateMemberRole handles PUT /organizations/{orgID}/members/{userID}.
func (h *OrgHandler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	var req updateMemberRoleRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	m, err := h.service.UpdateMemberRole(r.Context(),
		chi.URLParam(r, "orgID"), chi.URLParam(r, "userID"), membershipdomain.Role(req.Role))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	server.RespondJSON(w, http.StatusOK, toMemberResponse(m))
}

// RemoveMember handles DELETE /organizations/{orgID}/members/{userID}.
func (h *OrgHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	err := h.service.RemoveMember(r.Context(), chi.URLParam(r, "orgID"), chi.URLParam(r, "userID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	server.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *OrgHandler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rbac.ErrUnauthenticated):
		server.RespondError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, rbac.ErrForbidden):
		server.RespondError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrOrganizationNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrMemberNotFound):
		server.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrCannotAssignOwner),
		errors.Is(err, service.ErrInvalidInput):
		server.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrCannotRemoveOwner):
		server.RespondError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("organization request failed", "error", err)
		server.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

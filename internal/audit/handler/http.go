package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"workstack/backend/internal/audit/domain"
	"workstack/backend/internal/audit/service"
	"workstack/backend/internal/platform/rbac"
	"workstack/backend/internal/server"
)

// AuditHandler exposes an organization's audit trail over HTTP, read-only.
type AuditHandler struct {
	service *service.AuditService
}

// NewAuditHandler returns an AuditHandler backed by the given service.
func NewAuditHandler(service *service.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// Routes mounts the audit endpoints on r, expecting an orgID URL parameter
// from the enclosing route.
func (h *AuditHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
}

type auditLogResponse struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"org_id"`
	UserID    string    `json:"user_id,omitempty"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	IP        string    `json:"ip"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toAuditLogResponse(a *domain.AuditLog) auditLogResponse {
	return auditLogResponse{
		ID:        a.ID,
		OrgID:     a.OrgID,
		UserID:    a.UserID,
		Action:    a.Action,
		Resource:  a.Resource,
		IP:        a.IP,
		Metadata:  a.Metadata,
		CreatedAt: a.CreatedAt,
	}
}

// List answers GET /organizations/{orgID}/audit-logs?limit=&offset=.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")
	limit := queryInt32(r, "limit")
	offset := queryInt32(r, "offset")

	logs, err := h.service.List(r.Context(), orgID, limit, offset)
	if err != nil {
		respondErr(w, err)
		return
	}
	out := make([]auditLogResponse, 0, len(logs))
	for _, a := range logs {
		out = append(out, toAuditLogResponse(a))
	}
	server.RespondJSON(w, http.StatusOK, out)
}

func queryInt32(r *http.Request, name string) int32 {
	v, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 32)
	if err != nil {
		return 0
	}
	return int32(v)
}

func respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rbac.ErrUnauthenticated):
		server.RespondError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, rbac.ErrForbidden):
		server.RespondError(w, http.StatusForbidden, "insufficient permissions")
	default:
		slog.Error("audit handler error", "error", err)
		server.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

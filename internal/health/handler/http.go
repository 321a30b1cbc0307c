package handler

import (
	"context"
	"net/http"
	"time"

	"workstack/backend/internal/server"
)

// Pinger reports whether the database is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves liveness/readiness checks for load balancers and CI.
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler returns a health handler. db may be nil, in which case the
// database check is skipped and the handler always reports ok.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// ServeHTTP answers 200 {"status":"ok"} when the database is reachable and
// 503 {"status":"unavailable"} when it is not.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		server.RespondJSON(w, http.StatusOK, healthResponse{Status: "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		server.RespondJSON(w, http.StatusServiceUnavailable, healthResponse{
			Status:   "unavailable",
			Database: "unreachable",
		})
		return
	}

	server.RespondJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Database: "ok",
	})
}

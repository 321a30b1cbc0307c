package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	userdomain "workstack/backend/internal/user/domain"
)

type auditEvent struct {
	orgID, userID, action, resource string
}

// fakeAuditLogger collects events in memory.
type fakeAuditLogger struct {
	events []auditEvent
}

func (f *fakeAuditLogger) LogEvent(ctx context.Context, orgID, userID, action, resource, ip, metadata string) {
	f.events = append(f.events, auditEvent{orgID: orgID, userID: userID, action: action, resource: resource})
}

func newAuditRouter(logger *fakeAuditLogger, status int) http.Handler {
	r := chi.NewRouter()
	r.Use(Audit(logger))
	handle := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(status) }
	r.Post("/organizations/{orgID}/teams", handle)
	r.Get("/organizations/{orgID}/teams", handle)
	r.Post("/auth/login", handle)
	return r
}

func doAudited(t *testing.T, h http.Handler, method, path string, user *userdomain.User) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if user != nil {
		req = req.WithContext(WithIdentity(req.Context(), user, "session-1"))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
}

func TestAudit_RecordsMutation(t *testing.T) {
	logger := &fakeAuditLogger{}
	h := newAuditRouter(logger, http.StatusCreated)

	doAudited(t, h, http.MethodPost, "/organizations/org-1/teams", &userdomain.User{ID: "user-1"})

	if len(logger.events) != 1 {
		t.Fatalf("got %d events, want 1", len(logger.events))
	}
	e := logger.events[0]
	if e.orgID != "org-1" || e.userID != "user-1" {
		t.Errorf("org/user = %s/%s, want org-1/user-1", e.orgID, e.userID)
	}
	if e.action != "create" || e.resource != "team" {
		t.Errorf("action/resource = %s/%s, want create/team", e.action, e.resource)
	}
}

func TestAudit_SkipsReads(t *testing.T) {
	logger := &fakeAuditLogger{}
	h := newAuditRouter(logger, http.StatusOK)

	doAudited(t, h, http.MethodGet, "/organizations/org-1/teams", &userdomain.User{ID: "user-1"})

	if len(logger.events) != 0 {
		t.Fatalf("got %d events, want 0", len(logger.events))
	}
}

func TestAudit_SkipsFailedRequests(t *testing.T) {
	logger := &fakeAuditLogger{}
	h := newAuditRouter(logger, http.StatusForbidden)

	doAudited(t, h, http.MethodPost, "/organizations/org-1/teams", &userdomain.User{ID: "user-1"})

	if len(logger.events) != 0 {
		t.Fatalf("got %d events, want 0", len(logger.events))
	}
}

func TestAudit_SkipsRoutesOutsideOrgScope(t *testing.T) {
	logger := &fakeAuditLogger{}
	h := newAuditRouter(logger, http.StatusOK)

	doAudited(t, h, http.MethodPost, "/auth/login", nil)

	if len(logger.events) != 0 {
		t.Fatalf("got %d events, want 0", len(logger.events))
	}
}

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"workstack/backend/internal/security"
	userdomain "workstack/backend/internal/user/domain"
)

type stubUserGetter struct {
	users map[string]*userdomain.User
}

func (s *stubUserGetter) GetByID(ctx context.Context, id string) (*userdomain.User, error) {
	return s.users[id], nil
}

func doAuthed(h http.Handler, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuth_ValidToken(t *testing.T) {
	tokens := security.NewTestTokenProvider()
	users := &stubUserGetter{users: map[string]*userdomain.User{
		"u1": {ID: "u1", Status: userdomain.StatusActive},
	}}
	access, _, _, err := tokens.IssueAccess("s1", "u1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	var gotUser *userdomain.User
	var gotSession string
	h := Auth(tokens, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserFromContext(r.Context())
		gotSession, _ = SessionIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := doAuthed(h, "Bearer "+access)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUser == nil || gotUser.ID != "u1" {
		t.Errorf("context user = %v, want u1", gotUser)
	}
	if gotSession != "s1" {
		t.Errorf("context session = %q, want s1", gotSession)
	}
}

func TestAuth_RejectionsIndistinguishable(t *testing.T) {
	tokens := security.NewTestTokenProvider()
	users := &stubUserGetter{users: map[string]*userdomain.User{
		"u1": {ID: "u1", Status: userdomain.StatusActive},
	}}
	h := Auth(tokens, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	refresh, _, _, err := tokens.IssueRefresh("s1", "u1")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	expiring := security.NewExpiringTestTokenProvider(-time.Minute, time.Hour)
	expired, _, _, err := expiring.IssueAccess("s1", "u1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	ghost, _, _, err := tokens.IssueAccess("s1", "no-such-user")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	cases := []struct {
		name  string
		authz string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.jwt"},
		{"refresh as access", "Bearer " + refresh},
		{"expired", "Bearer " + expired},
		{"unknown subject", "Bearer " + ghost},
	}
	var firstBody string
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doAuthed(h, tc.authz)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			if firstBody == "" {
				firstBody = rec.Body.String()
			} else if rec.Body.String() != firstBody {
				t.Error("401 bodies must be identical across failure modes")
			}
		})
	}
}

func TestAuth_SuspendedUser(t *testing.T) {
	tokens := security.NewTestTokenProvider()
	users := &stubUserGetter{users: map[string]*userdomain.User{
		"u1": {ID: "u1", Status: userdomain.StatusSuspended},
	}}
	access, _, _, err := tokens.IssueAccess("s1", "u1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	h := Auth(tokens, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := doAuthed(h, "Bearer "+access)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

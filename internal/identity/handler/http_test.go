package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"workstack/backend/internal/identity/service"
	userdomain "workstack/backend/internal/user/domain"
)

// stubAuthService implements AuthService with canned results.
type stubAuthService struct {
	signupUser *userdomain.User
	signupErr  error
	loginPair  *service.TokenPair
	loginErr   error
	refreshErr error
	loggedOut  []string
}

func (s *stubAuthService) Signup(ctx context.Context, email, password, name string) (*userdomain.User, error) {
	return s.signupUser, s.signupErr
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*service.TokenPair, error) {
	return s.loginPair, s.loginErr
}

func (s *stubAuthService) Refresh(ctx context.Context, refreshToken string) (*service.TokenPair, error) {
	if s.refreshErr != nil {
		return nil, s.refreshErr
	}
	return s.loginPair, nil
}

func (s *stubAuthService) Logout(ctx context.Context, refreshToken string) error {
	s.loggedOut = append(s.loggedOut, refreshToken)
	return nil
}

func newAuthRouter(svc AuthService) http.Handler {
	r := chi.NewRouter()
	r.Route("/auth", NewAuthHandler(svc, nil).Routes)
	return r
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSignup_OK(t *testing.T) {
	svc := &stubAuthService{
		signupUser: &userdomain.User{
			ID: "u1", Email: "alice@example.com", Name: "Alice",
			Status: userdomain.StatusActive, PasswordHash: "digest",
			CreatedAt: time.Now().UTC(),
		},
	}
	rec := postJSON(t, newAuthRouter(svc), "/auth/signup",
		`{"email":"alice@example.com","password":"secret123","name":"Alice"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["id"] != "u1" {
		t.Errorf("id = %v, want u1", body["id"])
	}
	if _, ok := body["password_hash"]; ok {
		t.Error("response must not expose the password hash")
	}
}

func TestSignup_Conflict(t *testing.T) {
	svc := &stubAuthService{signupErr: service.ErrEmailAlreadyRegistered}
	rec := postJSON(t, newAuthRouter(svc), "/auth/signup",
		`{"email":"alice@example.com","password":"secret123","name":"Alice"}`)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestSignup_BadBody(t *testing.T) {
	rec := postJSON(t, newAuthRouter(&stubAuthService{}), "/auth/signup", `{not json`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestLogin_OK(t *testing.T) {
	svc := &stubAuthService{
		loginPair: &service.TokenPair{
			AccessToken: "acc", RefreshToken: "ref",
			ExpiresAt: time.Now().Add(15 * time.Minute), UserID: "u1",
		},
	}
	rec := postJSON(t, newAuthRouter(svc), "/auth/login",
		`{"email":"alice@example.com","password":"secret123"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var body tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.AccessToken != "acc" || body.RefreshToken != "ref" {
		t.Errorf("tokens = (%q, %q), want (acc, ref)", body.AccessToken, body.RefreshToken)
	}
	if body.TokenType != "bearer" {
		t.Errorf("token_type = %q, want bearer", body.TokenType)
	}
}

func TestLogin_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"inactive account", service.ErrAccountInactive, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubAuthService{loginErr: tt.err}
			rec := postJSON(t, newAuthRouter(svc), "/auth/login",
				`{"email":"alice@example.com","password":"x"}`)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRefresh_ReuseAndInvalidLookAlike(t *testing.T) {
	recReuse := postJSON(t, newAuthRouter(&stubAuthService{refreshErr: service.ErrRefreshTokenReuse}),
		"/auth/refresh", `{"refresh_token":"stale"}`)
	recInvalid := postJSON(t, newAuthRouter(&stubAuthService{refreshErr: service.ErrInvalidRefreshToken}),
		"/auth/refresh", `{"refresh_token":"garbage"}`)

	if recReuse.Code != http.StatusUnauthorized || recInvalid.Code != http.StatusUnauthorized {
		t.Fatalf("statuses = (%d, %d), want both 401", recReuse.Code, recInvalid.Code)
	}
	if recReuse.Body.String() != recInvalid.Body.String() {
		t.Error("reuse and invalid token responses must be indistinguishable")
	}
}

func TestRefresh_InactiveAccountForbidden(t *testing.T) {
	rec := postJSON(t, newAuthRouter(&stubAuthService{refreshErr: service.ErrAccountInactive}),
		"/auth/refresh", `{"refresh_token":"ref"}`)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestLogout_NoContent(t *testing.T) {
	svc := &stubAuthService{}
	rec := postJSON(t, newAuthRouter(svc), "/auth/logout", `{"refresh_token":"ref"}`)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if len(svc.loggedOut) != 1 || svc.loggedOut[0] != "ref" {
		t.Errorf("logout calls = %v, want [ref]", svc.loggedOut)
	}
}

func TestLogout_EmptyBodyStillNoContent(t *testing.T) {
	rec := postJSON(t, newAuthRouter(&stubAuthService{}), "/auth/logout", ``)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}

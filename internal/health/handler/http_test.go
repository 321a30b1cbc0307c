package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// mockPinger implements Pinger for tests.
type mockPinger struct {
	pingErr error
}

func (m *mockPinger) PingContext(context.Context) error {
	return m.pingErr
}

func checkHealth(t *testing.T, h *HealthHandler) (int, map[string]string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return rec.Code, body
}

func TestHealth_NilPinger(t *testing.T) {
	code, body := checkHealth(t, NewHealthHandler(nil))
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestHealth_DatabaseReachable(t *testing.T) {
	code, body := checkHealth(t, NewHealthHandler(&mockPinger{}))
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if body["database"] != "ok" {
		t.Errorf("database field = %q, want ok", body["database"])
	}
}

func TestHealth_DatabaseUnreachable(t *testing.T) {
	code, body := checkHealth(t, NewHealthHandler(&mockPinger{pingErr: errors.New("connection refused")}))
	if code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", code)
	}
	if body["status"] != "unavailable" {
		t.Errorf("status field = %q, want unavailable", body["status"])
	}
}

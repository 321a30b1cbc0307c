package audit

import (
	"net/http"
	"testing"
)

func TestParseRoute(t *testing.T) {
	tests := []struct {
		method   string
		pattern  string
		action   string
		resource string
	}{
		{http.MethodPost, "/organizations", "create", "organization"},
		{http.MethodPut, "/organizations/{orgID}", "update", "organization"},
		{http.MethodDelete, "/organizations/{orgID}", "delete", "organization"},
		{http.MethodPost, "/organizations/{orgID}/members", "user_added", "member"},
		{http.MethodDelete, "/organizations/{orgID}/members/{userID}", "user_removed", "member"},
		{http.MethodPut, "/organizations/{orgID}/members/{userID}", "role_changed", "member"},
		{http.MethodPost, "/organizations/{orgID}/teams", "create", "team"},
		{http.MethodPost, "/organizations/{orgID}/teams/{teamID}/members", "user_added", "team_member"},
		{http.MethodDelete, "/organizations/{orgID}/teams/{teamID}/members/{userID}", "user_removed", "team_member"},
		{http.MethodPost, "/organizations/{orgID}/lists", "create", "list"},
		{http.MethodPut, "/organizations/{orgID}/lists/{listID}/tasks/{taskID}", "update", "task"},
		{http.MethodDelete, "/organizations/{orgID}/lists/{listID}", "delete", "list"},
	}
	for _, tt := range tests {
		got := ParseRoute(tt.method, tt.pattern)
		if got.Action != tt.action || got.Resource != tt.resource {
			t.Errorf("ParseRoute(%s %s) = %s/%s, want %s/%s",
				tt.method, tt.pattern, got.Action, got.Resource, tt.action, tt.resource)
		}
	}
}

func TestParseRoute_UnknownPattern(t *testing.T) {
	got := ParseRoute(http.MethodPost, "/")
	if got.Resource != "unknown" {
		t.Errorf("resource = %q, want unknown", got.Resource)
	}
	if got.Action != "create" {
		t.Errorf("action = %q, want create", got.Action)
	}
}

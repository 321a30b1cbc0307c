package audit

import (
	"net/http"
	"strings"
)

// ActionResource holds the action and resource derived from an HTTP route.
type ActionResource struct {
	Action   string
	Resource string
}

// ParseRoute returns the audit action and resource for an HTTP method and a
// chi route pattern (e.g. PUT /organizations/{orgID}/lists/{listID}).
// Action is a verb: create, update, delete, or a lowercase method name for others.
// Resource is the last literal path segment, singularized (lists -> list).
// Membership routes are mapped to user_added, user_removed, role_changed.
func ParseRoute(method, pattern string) ActionResource {
	segments := literalSegments(pattern)
	if len(segments) == 0 {
		return ActionResource{Action: methodToAction(method), Resource: "unknown"}
	}
	last := segments[len(segments)-1]

	if last == "members" {
		resource := "member"
		if len(segments) >= 2 && segments[len(segments)-2] == "teams" {
			resource = "team_member"
		}
		switch method {
		case http.MethodPost:
			return ActionResource{Action: "user_added", Resource: resource}
		case http.MethodDelete:
			return ActionResource{Action: "user_removed", Resource: resource}
		case http.MethodPut:
			return ActionResource{Action: "role_changed", Resource: resource}
		}
	}

	return ActionResource{Action: methodToAction(method), Resource: singularize(last)}
}

// literalSegments returns the non-parameter path segments of a chi route pattern.
func literalSegments(pattern string) []string {
	var out []string
	for _, seg := range strings.Split(pattern, "/") {
		if seg == "" || strings.HasPrefix(seg, "{") || seg == "*" {
			continue
		}
		out = append(out, seg)
	}
	return out
}

func methodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return strings.ToLower(method)
	}
}

func singularize(s string) string {
	if strings.HasSuffix(s, "s") && len(s) > 1 {
		return s[:len(s)-1]
	}
	return s
}

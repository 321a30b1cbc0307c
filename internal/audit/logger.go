// Package audit records who changed what, where, against organization resources.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"workstack/backend/internal/audit/domain"
	auditrepo "workstack/backend/internal/audit/repository"
)

// SentinelOrgID is the org_id used for audit events that have no org
// (e.g. login_failure, logout with an invalid token).
const SentinelOrgID = "_system"

// AuditLogger writes a single audit event with explicit action/resource.
// LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, orgID, userID, action, resource, ip, metadata string)
}

// Logger implements AuditLogger backed by the audit repository.
type Logger struct {
	repo auditrepo.Repository
}

// NewLogger returns an AuditLogger that persists to repo. repo may be nil,
// which makes every LogEvent a no-op.
func NewLogger(repo auditrepo.Repository) *Logger {
	return &Logger{repo: repo}
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, orgID, userID, action, resource, ip, metadata string) {
	if l == nil || l.repo == nil {
		return
	}
	if orgID == "" {
		orgID = SentinelOrgID
	}
	if ip == "" {
		ip = "unknown"
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		OrgID:     orgID,
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		IP:        ip,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		slog.Error("audit: failed to log event", "action", action, "resource", resource, "error", err)
	}
}

package domain

import "time"

// AuditLog represents a recorded mutation against an organization's resources.
type AuditLog struct {
	ID        string
	OrgID     string
	UserID    string
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}

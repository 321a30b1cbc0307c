package domain

import (
	"errors"
	"time"
)

// Organization is a tenant boundary. It exclusively owns its memberships and
// teams: deleting an organization deletes both, in order, in one transaction.
type Organization struct {
	ID        string
	Name      string
	Domain    string
	Logo      string
	Settings  *Settings
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Settings is the organization settings blob, stored as one JSONB column.
// Known fields are typed; anything a client stores beyond them survives
// round-trips in Custom.
type Settings struct {
	AllowPublicProjects bool              `json:"allow_public_projects"`
	DefaultTimezone     string            `json:"default_timezone"`
	DefaultLanguage     string            `json:"default_language"`
	SecuritySettings    map[string]any    `json:"security_settings,omitempty"`
	Branding            map[string]string `json:"branding,omitempty"`
	Custom              map[string]any    `json:"custom,omitempty"`
}

// DefaultSettings returns the settings applied when a client supplies none.
func DefaultSettings() *Settings {
	return &Settings{
		DefaultTimezone: "UTC",
		DefaultLanguage: "en",
	}
}

// Validate validates the organization for persistence. Returns an error describing the first validation failure.
func (o *Organization) Validate() error {
	if o.Name == "" {
		return errors.New("name is required")
	}
	if o.Settings == nil {
		o.Settings = DefaultSettings()
	}
	return nil
}

package domain

import (
	"errors"
	"time"
)

// User is the core user entity. PasswordHash is the bcrypt digest of the
// password; it is never serialized to API responses.
type User struct {
	ID           string
	Email        string
	Name         string
	DisplayName  string
	Avatar       string
	PhoneNumber  string
	PasswordHash string
	Status       Status
	Timezone     string
	Language     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusInactive  Status = "INACTIVE"
	StatusSuspended Status = "SUSPENDED"
)

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.Name == "" {
		return errors.New("name is required")
	}
	if u.Status == "" {
		u.Status = StatusActive
	}
	if u.Timezone == "" {
		u.Timezone = "UTC"
	}
	if u.Language == "" {
		u.Language = "en"
	}
	return nil
}

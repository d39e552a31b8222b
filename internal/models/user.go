// Package models defines the Mindful+ domain entities as the client sees
// them after reading documents from the store.
package models

import (
	"strings"
	"time"
)

// Role separates regular users from mental-health professionals. The wire
// values are stored in user documents and must not change.
type Role string

const (
	RoleNormal       Role = "normal"
	RoleProfessional Role = "profesional"
)

// ParseRole maps a stored value to a Role, defaulting to RoleNormal.
func ParseRole(s string) Role {
	if Role(s) == RoleProfessional {
		return RoleProfessional
	}
	return RoleNormal
}

type ProfessionalProfile struct {
	FullName  string         `json:"fullName"`
	Specialty string         `json:"specialty"`
	LicenseID string         `json:"cedula"`
	Phone     string         `json:"phone"`
	PhotoURL  string         `json:"photoUrl,omitempty"`
	Extra     map[string]any `json:"-"`
}

type User struct {
	ID           string
	Email        string
	Username     string
	Role         Role
	Professional *ProfessionalProfile
	CreatedAt    time.Time
}

// Session is the identity summary the client keeps between screens. It is
// never authoritative; User is.
type Session struct {
	UID       string    `json:"uid"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// DisplayName prefers the username, then the local part of the email.
func (s *Session) DisplayName() string {
	if s == nil {
		return "Unknown"
	}
	if s.Username != "" {
		return s.Username
	}
	if local, _, _ := strings.Cut(s.Email, "@"); local != "" {
		return local
	}
	return "Unknown"
}

// Expired reports whether the identity token is past its expiry. A zero
// ExpiresAt never expires.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

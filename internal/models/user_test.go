package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleProfessional, ParseRole("profesional"))
	assert.Equal(t, RoleNormal, ParseRole("normal"))
	assert.Equal(t, RoleNormal, ParseRole(""))
	assert.Equal(t, RoleNormal, ParseRole("admin"))
}

func TestSession_DisplayName(t *testing.T) {
	tests := []struct {
		name string
		s    *Session
		want string
	}{
		{"username wins", &Session{Username: "ana", Email: "a@x.io"}, "ana"},
		{"email local part", &Session{Email: "luis@example.com"}, "luis"},
		{"nothing", &Session{}, "Unknown"},
		{"nil", nil, "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.s.DisplayName())
		})
	}
}

func TestSession_Expired(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.False(t, (&Session{}).Expired(now))
	assert.False(t, (&Session{ExpiresAt: now.Add(time.Minute)}).Expired(now))
	assert.True(t, (&Session{ExpiresAt: now.Add(-time.Minute)}).Expired(now))
}

package domain

import (
	"testing"
	"time"
)

func TestTokenClaimsIsExpired(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name      string
		expiresAt time.Time
		expected  bool
	}{
		{
			name:      "expired token",
			expiresAt: now.Add(-1 * time.Hour),
			expected:  true,
		},
		{
			name:      "valid token",
			expiresAt: now.Add(1 * time.Hour),
			expected:  false,
		},
		{
			name:      "just expired",
			expiresAt: now.Add(-1 * time.Second),
			expected:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := &TokenClaims{ExpiresAt: tt.expiresAt.Unix()}
			if claims.IsExpired(now) != tt.expected {
				t.Errorf("expected IsExpired() = %v", tt.expected)
			}
		})
	}
}

func TestAuthContextIsAdmin(t *testing.T) {
	tests := []struct {
		name     string
		ctx      *AuthContext
		expected bool
	}{
		{"admin", &AuthContext{Role: RoleAdmin}, true},
		{"no role", &AuthContext{}, false},
		{"nil context", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.ctx.IsAdmin() != tt.expected {
				t.Errorf("expected IsAdmin() = %v", tt.expected)
			}
		})
	}
}

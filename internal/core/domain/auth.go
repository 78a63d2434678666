package domain

import "time"

// Role is the privilege level carried in an admin token
type Role string

const (
	// RoleAdmin may trigger corpus refreshes and read operational stats
	RoleAdmin Role = "admin"
)

// AuthContext contains authenticated operator info for request context
type AuthContext struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
	TokenID  string `json:"token_id"`
}

// IsAdmin checks if the authenticated operator is an admin
func (a *AuthContext) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// LoginRequest represents an admin login attempt
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful authentication
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenClaims represents the JWT token payload
type TokenClaims struct {
	Username  string `json:"username"`
	Role      Role   `json:"role"`
	TokenID   string `json:"jti"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// IsExpired reports whether the claims are past their expiry
func (c *TokenClaims) IsExpired(now time.Time) bool {
	return now.Unix() >= c.ExpiresAt
}

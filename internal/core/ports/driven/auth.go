package driven

import "github.com/custodia-labs/sercha-assist/internal/core/domain"

// PasswordHasher hashes and checks the admin password.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
	VerifyPassword(password, hash string) bool
}

// TokenSigner issues and verifies admin bearer tokens. ParseToken returns
// domain.ErrTokenExpired or domain.ErrTokenInvalid on failure.
type TokenSigner interface {
	GenerateToken(claims *domain.TokenClaims) (string, error)
	ParseToken(token string) (*domain.TokenClaims, error)
}

// AuthAdapter is the admin service's view of the auth infrastructure.
type AuthAdapter interface {
	PasswordHasher
	TokenSigner
}

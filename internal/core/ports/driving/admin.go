package driving

import (
	"context"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
)

// AdminService authenticates operators for corpus administration
type AdminService interface {
	// Login validates the admin credentials and issues a token
	Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)

	// IssueToken issues an admin token without a password check (CLI use)
	IssueToken(ctx context.Context) (*domain.LoginResponse, error)

	// ValidateToken validates a token and returns the auth context
	ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error)
}

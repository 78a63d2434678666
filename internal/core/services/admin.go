package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
	"github.com/custodia-labs/sercha-assist/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-assist/internal/core/ports/driving"
)

// Ensure adminService implements AdminService
var _ driving.AdminService = (*adminService)(nil)

// adminService authenticates the single configured operator account
type adminService struct {
	authAdapter  driven.AuthAdapter
	username     string
	passwordHash string
	tokenTTL     time.Duration
}

// AdminServiceConfig holds the operator credentials.
type AdminServiceConfig struct {
	Username     string
	PasswordHash string        // bcrypt hash; login is disabled when empty
	TokenTTL     time.Duration // default: 24h
}

// NewAdminService creates a new AdminService
func NewAdminService(authAdapter driven.AuthAdapter, cfg AdminServiceConfig) driving.AdminService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &adminService{
		authAdapter:  authAdapter,
		username:     cfg.Username,
		passwordHash: cfg.PasswordHash,
		tokenTTL:     ttl,
	}
}

// Login validates the admin credentials and issues a token
func (s *adminService) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	if s.passwordHash == "" || s.username == "" {
		return nil, domain.ErrInvalidCredentials
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.username)) == 1
	passOK := s.authAdapter.VerifyPassword(req.Password, s.passwordHash)
	if !userOK || !passOK {
		return nil, domain.ErrInvalidCredentials
	}

	return s.IssueToken(ctx)
}

// IssueToken issues an admin token without a password check
func (s *adminService) IssueToken(_ context.Context) (*domain.LoginResponse, error) {
	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)

	claims := &domain.TokenClaims{
		Username:  s.username,
		Role:      domain.RoleAdmin,
		TokenID:   uuid.New().String(),
		IssuedAt:  now.Unix(),
		ExpiresAt: expiresAt.Unix(),
	}

	token, err := s.authAdapter.GenerateToken(claims)
	if err != nil {
		return nil, err
	}

	return &domain.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateToken validates a token and returns the auth context
func (s *adminService) ValidateToken(_ context.Context, token string) (*domain.AuthContext, error) {
	if token == "" {
		return nil, domain.ErrTokenInvalid
	}

	claims, err := s.authAdapter.ParseToken(token)
	if err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	if claims.IsExpired(time.Now()) {
		return nil, domain.ErrTokenExpired
	}

	if claims.Role != domain.RoleAdmin {
		return nil, domain.ErrUnauthorized
	}

	return &domain.AuthContext{
		Username: claims.Username,
		Role:     claims.Role,
		TokenID:  claims.TokenID,
	}, nil
}

package mocks

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
	"github.com/custodia-labs/sercha-assist/internal/core/ports/driven"
)

var _ driven.AuthAdapter = (*MockAuthAdapter)(nil)

// MockAuthAdapter compares passwords as plain text and encodes tokens as
// base64 JSON claims. Expiry is left to the caller. Test use only.
type MockAuthAdapter struct {
	// GenerateErr, when set, fails every GenerateToken call
	GenerateErr error

	mu     sync.Mutex
	issued []domain.TokenClaims
}

// NewMockAuthAdapter creates a new MockAuthAdapter
func NewMockAuthAdapter() *MockAuthAdapter {
	return &MockAuthAdapter{}
}

func (m *MockAuthAdapter) HashPassword(password string) (string, error) {
	return password, nil
}

func (m *MockAuthAdapter) VerifyPassword(password, hash string) bool {
	return password == hash
}

func (m *MockAuthAdapter) GenerateToken(claims *domain.TokenClaims) (string, error) {
	if m.GenerateErr != nil {
		return "", m.GenerateErr
	}
	data, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to marshal claims: %w", err)
	}

	m.mu.Lock()
	m.issued = append(m.issued, *claims)
	m.mu.Unlock()

	return base64.StdEncoding.EncodeToString(data), nil
}

func (m *MockAuthAdapter) ParseToken(token string) (*domain.TokenClaims, error) {
	data, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	var claims domain.TokenClaims
	if err := json.Unmarshal(data, &claims); err != nil {
		return nil, domain.ErrTokenInvalid
	}
	return &claims, nil
}

// Issued returns the claims of every token generated so far.
func (m *MockAuthAdapter) Issued() []domain.TokenClaims {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.TokenClaims, len(m.issued))
	copy(out, m.issued)
	return out
}

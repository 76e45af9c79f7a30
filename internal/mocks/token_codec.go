package mocks

import (
	"context"
	"time"

	"github.com/phrazzld/taskpilot-api/internal/service/auth"
)

// MockTokenCodec implements auth.TokenCodec for testing
type MockTokenCodec struct {
	IssueFn  func(ctx context.Context, claims auth.Claims) (*auth.IssuedToken, error)
	VerifyFn func(ctx context.Context, token string) (*auth.Claims, error)

	// Defaults used when the function fields are nil
	Token     string
	Claims    *auth.Claims
	IssueErr  error
	VerifyErr error
}

var _ auth.TokenCodec = (*MockTokenCodec)(nil)

// Issue implements auth.TokenCodec
func (m *MockTokenCodec) Issue(ctx context.Context, claims auth.Claims) (*auth.IssuedToken, error) {
	if m.IssueFn != nil {
		return m.IssueFn(ctx, claims)
	}
	if m.IssueErr != nil {
		return nil, m.IssueErr
	}
	return &auth.IssuedToken{Token: m.Token, ExpiresAt: time.Now().Add(30 * time.Minute)}, nil
}

// Verify implements auth.TokenCodec
func (m *MockTokenCodec) Verify(ctx context.Context, token string) (*auth.Claims, error) {
	if m.VerifyFn != nil {
		return m.VerifyFn(ctx, token)
	}
	if m.VerifyErr != nil {
		return nil, m.VerifyErr
	}
	if m.Claims == nil {
		return nil, auth.ErrInvalidToken
	}
	return m.Claims, nil
}

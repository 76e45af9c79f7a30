package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/taskpilot-api/internal/identity"
)

// MockIdentityProvider implements identity.Provider for testing
type MockIdentityProvider struct {
	CreateAccountFn     func(ctx context.Context, email, password string, metadata identity.Metadata) (string, error)
	VerifyCredentialsFn func(ctx context.Context, email, password string) (string, error)

	// Defaults used when the function fields are nil
	ExternalID string
	Err        error

	mu                sync.Mutex
	CreateAccountArgs []string
	VerifyArgs        []string
}

var _ identity.Provider = (*MockIdentityProvider)(nil)

// CreateAccount implements identity.Provider
func (m *MockIdentityProvider) CreateAccount(
	ctx context.Context,
	email, password string,
	metadata identity.Metadata,
) (string, error) {
	m.mu.Lock()
	m.CreateAccountArgs = append(m.CreateAccountArgs, email)
	m.mu.Unlock()

	if m.CreateAccountFn != nil {
		return m.CreateAccountFn(ctx, email, password, metadata)
	}
	return m.ExternalID, m.Err
}

// VerifyCredentials implements identity.Provider
func (m *MockIdentityProvider) VerifyCredentials(ctx context.Context, email, password string) (string, error) {
	m.mu.Lock()
	m.VerifyArgs = append(m.VerifyArgs, email)
	m.mu.Unlock()

	if m.VerifyCredentialsFn != nil {
		return m.VerifyCredentialsFn(ctx, email, password)
	}
	return m.ExternalID, m.Err
}

// CreateAccountCalls returns how many times CreateAccount was called.
func (m *MockIdentityProvider) CreateAccountCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.CreateAccountArgs)
}

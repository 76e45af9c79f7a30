package auth

import (
	"context"

	"github.com/phrazzld/taskpilot-api/internal/domain"
	"github.com/phrazzld/taskpilot-api/internal/store"
)

// Account is the input of a signup.
type Account struct {
	Email    string
	Password string
	Username string
	FullName *string
}

// Credential is what a backend hands back for a new account: the external
// identity reference and, for locally held credentials, the password hash.
type Credential struct {
	ExternalID   string
	PasswordHash string
	// Provisioned reports that an account now exists outside the local
	// store and would be orphaned if the local insert fails.
	Provisioned bool
}

// IdentityBackend is the strategy that owns account credentials. Exactly
// one implementation is selected at startup.
type IdentityBackend interface {
	// Name identifies the backend in logs.
	Name() string

	// CreateAccount registers credentials for a new account.
	CreateAccount(ctx context.Context, acct Account) (Credential, error)

	// Authenticate verifies credentials and returns the matching local user,
	// read through users.
	Authenticate(ctx context.Context, users store.UserStore, email, password string) (*domain.User, error)
}

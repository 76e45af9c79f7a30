// Package identity defines the contract of a remote identity provider that
// owns account credentials on behalf of the service.
package identity

import (
	"context"
	"errors"
)

var (
	// ErrAlreadyRegistered is returned when the provider already holds an
	// account for the email.
	ErrAlreadyRegistered = errors.New("identity provider: account already registered")

	// ErrInvalidCredentials is returned when the provider rejects an
	// email/password pair.
	ErrInvalidCredentials = errors.New("identity provider: invalid credentials")

	// ErrUnavailable is returned for transport failures, timeouts and
	// unexpected provider responses.
	ErrUnavailable = errors.New("identity provider: unavailable")
)

// Metadata is stored with the remote account at creation.
type Metadata struct {
	Username string  `json:"username"`
	FullName *string `json:"full_name"`
}

// Provider creates and verifies accounts held by an external system. Both
// operations return the provider's opaque identifier for the account.
type Provider interface {
	CreateAccount(ctx context.Context, email, password string, metadata Metadata) (externalID string, err error)
	VerifyCredentials(ctx context.Context, email, password string) (externalID string, err error)
}

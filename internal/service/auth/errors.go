package auth

import (
	"fmt"

	"github.com/phrazzld/taskpilot-api/internal/domain"
)

// Authentication errors. Each wraps a domain kind so the API layer can map
// it to a status code without knowing about this package.
var (
	// ErrInvalidToken covers every token verification failure: bad
	// signature, expiry, malformed input and missing claims alike.
	ErrInvalidToken = fmt.Errorf("%w: could not validate credentials", domain.ErrUnauthorized)

	// ErrInvalidCredentials is returned for an unknown email or a rejected password.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)

	// ErrInactiveUser is returned when a deactivated account tries to log in.
	ErrInactiveUser = fmt.Errorf("%w: inactive user account", domain.ErrForbidden)

	// ErrEmailTaken and ErrUsernameTaken report signup conflicts.
	ErrEmailTaken    = fmt.Errorf("%w: email already registered", domain.ErrConflict)
	ErrUsernameTaken = fmt.Errorf("%w: username already taken", domain.ErrConflict)

	// ErrAccountNotLinked is returned when the identity provider accepts the
	// credentials but no local user carries its external id.
	ErrAccountNotLinked = fmt.Errorf("%w: user not found in local database", domain.ErrNotFound)

	// ErrUserNotFound is returned when a valid token names a deleted user.
	ErrUserNotFound = fmt.Errorf("%w: user not found", domain.ErrNotFound)

	// ErrPartialSignup is returned when the provider account was created but
	// the local user could not be stored.
	ErrPartialSignup = fmt.Errorf("%w: account created with identity provider but local registration failed",
		domain.ErrInternal)

	// ErrIdentityUnavailable is returned when the identity provider cannot be reached.
	ErrIdentityUnavailable = fmt.Errorf("%w: identity provider unavailable", domain.ErrInternal)
)

package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/taskpilot-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create inserts user and fills in its ID and timestamps.
	// Returns ErrEmailExists, ErrUsernameExists or ErrExternalIDExists on
	// uniqueness violations.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by id. Returns ErrUserNotFound if absent.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail retrieves a user by email. Returns ErrUserNotFound if absent.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByUsername retrieves a user by username. Returns ErrUserNotFound if absent.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetByExternalID retrieves a user by external identity reference.
	// Returns ErrUserNotFound if absent.
	GetByExternalID(ctx context.Context, externalID string) (*domain.User, error)

	// UpdateProfile replaces the display name and returns the updated user.
	UpdateProfile(ctx context.Context, id int64, fullName *string) (*domain.User, error)

	// SetActive toggles the is_active flag.
	SetActive(ctx context.Context, id int64, active bool) error

	// Count returns the number of users.
	Count(ctx context.Context) (int64, error)

	// Delete removes a user and, through the foreign key, their tasks.
	// Returns ErrUserNotFound if absent.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a UserStore bound to tx.
	WithTx(tx *sql.Tx) UserStore
}

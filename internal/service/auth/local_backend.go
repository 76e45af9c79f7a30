package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/taskpilot-api/internal/domain"
	"github.com/phrazzld/taskpilot-api/internal/platform/logger"
	"github.com/phrazzld/taskpilot-api/internal/store"
)

// LocalBackend keeps credentials in the local user table. It is used when no
// identity provider is configured.
type LocalBackend struct {
	hasher PasswordHasher
	// insecure skips password comparison on login. Only for local
	// development; configuration refuses it in production and alongside a
	// remote provider.
	insecure bool
	logger   *slog.Logger
}

// Ensure LocalBackend implements IdentityBackend interface
var _ IdentityBackend = (*LocalBackend)(nil)

// NewLocalBackend creates a LocalBackend that verifies bcrypt hashes.
func NewLocalBackend(hasher PasswordHasher, logger *slog.Logger) *LocalBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalBackend{hasher: hasher, logger: logger.With(slog.String("component", "local_identity"))}
}

// NewInsecureLocalBackend creates a LocalBackend whose login accepts any
// password for a known email.
func NewInsecureLocalBackend(hasher PasswordHasher, logger *slog.Logger) *LocalBackend {
	b := NewLocalBackend(hasher, logger)
	b.insecure = true
	return b
}

// Name implements IdentityBackend.Name
func (b *LocalBackend) Name() string {
	if b.insecure {
		return "local-insecure"
	}
	return "local"
}

// CreateAccount implements IdentityBackend.CreateAccount. The external id is
// a random surrogate.
func (b *LocalBackend) CreateAccount(ctx context.Context, acct Account) (Credential, error) {
	hash, err := b.hasher.Hash(acct.Password)
	if err != nil {
		return Credential{}, err
	}
	return Credential{ExternalID: uuid.NewString(), PasswordHash: hash}, nil
}

// Authenticate implements IdentityBackend.Authenticate
func (b *LocalBackend) Authenticate(
	ctx context.Context,
	users store.UserStore,
	email, password string,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, b.logger)

	user, err := users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if b.insecure {
		log.Warn("insecure development login: password not verified", slog.Int64("user_id", user.ID))
		return user, nil
	}

	if user.PasswordHash == "" || b.hasher.Compare(user.PasswordHash, password) != nil {
		log.Debug("password mismatch", slog.Int64("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskpilot-api/internal/domain"
	"github.com/phrazzld/taskpilot-api/internal/identity"
	"github.com/phrazzld/taskpilot-api/internal/platform/logger"
	"github.com/phrazzld/taskpilot-api/internal/store"
)

// RemoteBackend delegates credentials to an external identity provider.
// Local users are linked to provider accounts through their external id and
// never hold a password hash.
type RemoteBackend struct {
	provider identity.Provider
	logger   *slog.Logger
}

// Ensure RemoteBackend implements IdentityBackend interface
var _ IdentityBackend = (*RemoteBackend)(nil)

// NewRemoteBackend creates a RemoteBackend.
func NewRemoteBackend(provider identity.Provider, logger *slog.Logger) *RemoteBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &RemoteBackend{provider: provider, logger: logger.With(slog.String("component", "remote_identity"))}
}

// Name implements IdentityBackend.Name
func (b *RemoteBackend) Name() string {
	return "remote"
}

// CreateAccount implements IdentityBackend.CreateAccount
func (b *RemoteBackend) CreateAccount(ctx context.Context, acct Account) (Credential, error) {
	externalID, err := b.provider.CreateAccount(ctx, acct.Email, acct.Password, identity.Metadata{
		Username: acct.Username,
		FullName: acct.FullName,
	})
	if err != nil {
		return Credential{}, b.translate(ctx, "create account", err)
	}
	return Credential{ExternalID: externalID, Provisioned: true}, nil
}

// Authenticate implements IdentityBackend.Authenticate
func (b *RemoteBackend) Authenticate(
	ctx context.Context,
	users store.UserStore,
	email, password string,
) (*domain.User, error) {
	externalID, err := b.provider.VerifyCredentials(ctx, email, password)
	if err != nil {
		return nil, b.translate(ctx, "verify credentials", err)
	}

	user, err := users.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			logger.FromContextOrDefault(ctx, b.logger).Error("provider account has no local user",
				slog.String("external_id", externalID))
			return nil, ErrAccountNotLinked
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}

func (b *RemoteBackend) translate(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, identity.ErrAlreadyRegistered):
		return ErrEmailTaken
	case errors.Is(err, identity.ErrInvalidCredentials):
		return ErrInvalidCredentials
	default:
		logger.FromContextOrDefault(ctx, b.logger).Error("identity provider call failed",
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %s: %v", ErrIdentityUnavailable, op, err)
	}
}

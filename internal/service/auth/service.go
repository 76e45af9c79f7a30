package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskpilot-api/internal/domain"
	"github.com/phrazzld/taskpilot-api/internal/platform/logger"
	"github.com/phrazzld/taskpilot-api/internal/store"
)

// TokenType is reported to clients alongside issued tokens.
const TokenType = "bearer"

// SignupInput is the data supplied by a new user.
type SignupInput struct {
	Email    string
	Password string
	Username string
	FullName *string
}

// Session is the result of a successful signup or login.
type Session struct {
	Token *IssuedToken
	User  *domain.User
}

// Service orchestrates signup, login and caller resolution against the
// configured IdentityBackend.
type Service struct {
	db      *sql.DB
	users   store.UserStore
	backend IdentityBackend
	tokens  TokenCodec
	logger  *slog.Logger
}

// NewService creates an auth Service.
func NewService(
	db *sql.DB,
	users store.UserStore,
	backend IdentityBackend,
	tokens TokenCodec,
	logger *slog.Logger,
) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if users == nil {
		return nil, fmt.Errorf("users cannot be nil")
	}
	if backend == nil {
		return nil, fmt.Errorf("backend cannot be nil")
	}
	if tokens == nil {
		return nil, fmt.Errorf("tokens cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:      db,
		users:   users,
		backend: backend,
		tokens:  tokens,
		logger:  logger.With(slog.String("component", "auth_service"), slog.String("identity_backend", backend.Name())),
	}, nil
}

// Signup registers a new account and returns a session for it.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := validateSignup(in); err != nil {
		return nil, err
	}
	if err := s.checkAvailable(ctx, in.Email, in.Username); err != nil {
		return nil, err
	}

	cred, err := s.backend.CreateAccount(ctx, Account{
		Email:    in.Email,
		Password: in.Password,
		Username: in.Username,
		FullName: in.FullName,
	})
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        in.Email,
		Username:     in.Username,
		FullName:     in.FullName,
		ExternalID:   cred.ExternalID,
		PasswordHash: cred.PasswordHash,
		IsActive:     true,
	}
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.users.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		if cred.Provisioned {
			log.Error("partial signup: provider account has no local user",
				slog.String("external_id", cred.ExternalID),
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("%w: %v", ErrPartialSignup, err)
		}
		return nil, translateUserError(err)
	}

	log.Info("user signed up", slog.Int64("user_id", user.ID))
	return s.newSession(ctx, user)
}

// checkAvailable rejects an email or username that is already in use before
// any account is provisioned.
func (s *Service) checkAvailable(ctx context.Context, email, username string) error {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return fmt.Errorf("failed to check username: %w", err)
	}
	return nil
}

// Login verifies credentials and returns a session.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, domain.NewValidationError("credentials", "email and password are required")
	}

	user, err := s.backend.Authenticate(ctx, s.users, email, password)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("user logged in", slog.Int64("user_id", user.ID))
	return s.newSession(ctx, user)
}

// ResolveCaller maps a bearer token to the user it was issued for.
func (s *Service) ResolveCaller(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Verify(ctx, token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load caller: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return user, nil
}

// UpdateProfile changes the caller's display name. An unset field leaves it
// untouched; null clears it.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, fullName domain.Field[string]) (*domain.User, error) {
	var (
		user *domain.User
		err  error
	)
	if fullName.Set {
		var name *string
		if fullName.HasValue() {
			name = &fullName.Value
		}
		if err := domain.ValidateFullName(name); err != nil {
			return nil, err
		}
		user, err = s.users.UpdateProfile(ctx, userID, name)
	} else {
		user, err = s.users.GetByID(ctx, userID)
	}
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

func (s *Service) newSession(ctx context.Context, user *domain.User) (*Session, error) {
	issued, err := s.tokens.Issue(ctx, Claims{UserID: user.ID, Email: user.Email})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}
	return &Session{Token: issued, User: user}, nil
}

func validateSignup(in SignupInput) error {
	if err := domain.ValidateEmail(in.Email); err != nil {
		return err
	}
	if err := domain.ValidatePassword(in.Password); err != nil {
		return err
	}
	if err := domain.ValidateUsername(in.Username); err != nil {
		return err
	}
	return domain.ValidateFullName(in.FullName)
}

// translateUserError maps store uniqueness violations to signup conflicts.
func translateUserError(err error) error {
	switch {
	case errors.Is(err, store.ErrEmailExists):
		return ErrEmailTaken
	case errors.Is(err, store.ErrUsernameExists):
		return ErrUsernameTaken
	case errors.Is(err, store.ErrDuplicate):
		return fmt.Errorf("%w: account already exists", domain.ErrConflict)
	default:
		return fmt.Errorf("failed to create user: %w", err)
	}
}

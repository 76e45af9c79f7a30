package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/taskpilot-api/internal/domain"
	"github.com/phrazzld/taskpilot-api/internal/platform/logger"
	"github.com/phrazzld/taskpilot-api/internal/store"
)

const userColumns = `id, email, username, full_name, hashed_password, external_id,
	is_active, is_superuser, created_at, updated_at`

// UserStore implements store.UserStore on database/sql.
type UserStore struct {
	db      store.DBTX
	dialect Dialect
	logger  *slog.Logger
	now     func() time.Time
}

// NewUserStore creates a UserStore. If logger is nil, the default logger is used.
func NewUserStore(db store.DBTX, dialect Dialect, logger *slog.Logger) *UserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserStore{
		db:      db,
		dialect: dialect,
		logger:  logger.With(slog.String("component", "user_store")),
		now:     storeNow,
	}
}

// Ensure UserStore implements store.UserStore interface
var _ store.UserStore = (*UserStore)(nil)

// WithTx implements store.UserStore.WithTx
func (s *UserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &UserStore{db: tx, dialect: s.dialect, logger: s.logger, now: s.now}
}

// Create implements store.UserStore.Create
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := s.now()
	b := newBuilder(s.dialect)
	b.write(`INSERT INTO users (email, username, full_name, hashed_password, external_id,
		is_active, is_superuser, created_at, updated_at) VALUES (`,
		b.arg(user.Email), ", ",
		b.arg(user.Username), ", ",
		b.arg(nullableString(user.FullName)), ", ",
		b.arg(user.PasswordHash), ", ",
		b.arg(user.ExternalID), ", ",
		b.arg(user.IsActive), ", ",
		b.arg(user.IsSuperuser), ", ",
		b.arg(now), ", ",
		b.arg(now), ") RETURNING id")

	if err := s.db.QueryRowContext(ctx, b.String(), b.args...).Scan(&user.ID); err != nil {
		mapped := MapError(err)
		if store.IsDuplicateError(mapped) {
			log.Debug("user uniqueness violation", slog.String("error", mapped.Error()))
			return mapped
		}
		log.Error("failed to create user", slog.String("error", err.Error()))
		return store.NewStoreError("user", "create", "insert failed", mapped)
	}

	user.CreatedAt = now
	user.UpdatedAt = now
	log.Debug("user created", slog.Int64("user_id", user.ID))
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *UserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.getBy(ctx, "id", id)
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getBy(ctx, "email", email)
}

// GetByUsername implements store.UserStore.GetByUsername
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getBy(ctx, "username", username)
}

// GetByExternalID implements store.UserStore.GetByExternalID
func (s *UserStore) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	return s.getBy(ctx, "external_id", externalID)
}

// getBy loads a single user by a unique column. column is never caller input.
func (s *UserStore) getBy(ctx context.Context, column string, value any) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	b := newBuilder(s.dialect)
	b.write("SELECT ", userColumns, " FROM users WHERE ", column, " = ", b.arg(value))

	user, err := scanUser(s.db.QueryRowContext(ctx, b.String(), b.args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user",
			slog.String("column", column),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("user", "get", "query failed", MapError(err))
	}
	return user, nil
}

// UpdateProfile implements store.UserStore.UpdateProfile
func (s *UserStore) UpdateProfile(ctx context.Context, id int64, fullName *string) (*domain.User, error) {
	b := newBuilder(s.dialect)
	b.write("UPDATE users SET full_name = ", b.arg(nullableString(fullName)),
		", updated_at = ", b.arg(s.now()),
		" WHERE id = ", b.arg(id))

	result, err := s.db.ExecContext(ctx, b.String(), b.args...)
	if err != nil {
		return nil, store.NewStoreError("user", "update", "update failed", MapError(err))
	}
	if err := checkRowsAffected(result, store.ErrUserNotFound); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// SetActive implements store.UserStore.SetActive
func (s *UserStore) SetActive(ctx context.Context, id int64, active bool) error {
	b := newBuilder(s.dialect)
	b.write("UPDATE users SET is_active = ", b.arg(active),
		", updated_at = ", b.arg(s.now()),
		" WHERE id = ", b.arg(id))

	result, err := s.db.ExecContext(ctx, b.String(), b.args...)
	if err != nil {
		return store.NewStoreError("user", "update", "update failed", MapError(err))
	}
	return checkRowsAffected(result, store.ErrUserNotFound)
}

// Count implements store.UserStore.Count
func (s *UserStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, store.NewStoreError("user", "count", "query failed", MapError(err))
	}
	return n, nil
}

// Delete implements store.UserStore.Delete
func (s *UserStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	b := newBuilder(s.dialect)
	b.write("DELETE FROM users WHERE id = ", b.arg(id))

	result, err := s.db.ExecContext(ctx, b.String(), b.args...)
	if err != nil {
		log.Error("failed to delete user", slog.Int64("user_id", id), slog.String("error", err.Error()))
		return store.NewStoreError("user", "delete", "delete failed", MapError(err))
	}
	if err := checkRowsAffected(result, store.ErrUserNotFound); err != nil {
		return err
	}
	log.Info("user deleted", slog.Int64("user_id", id))
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u        domain.User
		fullName sql.NullString
	)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&fullName,
		&u.PasswordHash,
		&u.ExternalID,
		&u.IsActive,
		&u.IsSuperuser,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if fullName.Valid {
		u.FullName = &fullName.String
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}

func storeNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

package testdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskpilot-api/internal/platform/sqlstore"
	"github.com/phrazzld/taskpilot-api/internal/redact"
)

// DatabaseURLEnv names the PostgreSQL database used by integration tests.
const DatabaseURLEnv = "TASKPILOT_TEST_DATABASE_URL"

// TestTimeout bounds connection setup and migrations.
const TestTimeout = 30 * time.Second

// GetTestDatabaseURL returns the integration database URL, or "" when unset.
func GetTestDatabaseURL() string {
	return os.Getenv(DatabaseURLEnv)
}

// IsIntegrationTestEnvironment reports whether a PostgreSQL database is
// available for integration tests.
func IsIntegrationTestEnvironment() bool {
	return GetTestDatabaseURL() != ""
}

// Open returns a migrated SQLite database stored in t.TempDir(). The
// connection is closed when the test finishes.
func Open(t *testing.T) (*sql.DB, sqlstore.Dialect) {
	t.Helper()
	return open(t, "sqlite://"+filepath.Join(t.TempDir(), "test.db"), sqlstore.PoolOptions{})
}

// OpenPostgres returns a migrated PostgreSQL database, skipping the test when
// DatabaseURLEnv is not set.
func OpenPostgres(t *testing.T) (*sql.DB, sqlstore.Dialect) {
	t.Helper()
	dbURL := GetTestDatabaseURL()
	if dbURL == "" {
		t.Skipf("%s not set - skipping integration test", DatabaseURLEnv)
	}

	db, dialect := open(t, dbURL, sqlstore.PoolOptions{MaxOpenConns: 4})
	require.Equal(t, sqlstore.Postgres, dialect, "%s must be a postgres URL", DatabaseURLEnv)
	return db, dialect
}

func open(t *testing.T, dbURL string, opts sqlstore.PoolOptions) (*sql.DB, sqlstore.Dialect) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, dialect, err := sqlstore.Open(ctx, dbURL, opts)
	require.NoError(t, err, "failed to open test database %s", redact.String(dbURL))
	t.Cleanup(func() { CleanupDB(t, db) })

	require.NoError(t, sqlstore.Migrate(ctx, db, dialect), "failed to migrate test database")
	return db, dialect
}

// CleanupDB closes db, logging rather than failing on error.
func CleanupDB(t *testing.T, db *sql.DB) {
	t.Helper()
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		t.Logf("Warning: failed to close database connection: %v", err)
	}
}

// WithTx runs fn inside a transaction that is rolled back afterwards, even
// when fn panics or fails the test.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err, "failed to begin transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("Warning: failed to rollback transaction: %v", err)
		}
	}()

	fn(t, tx)
}

package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "github.com/mattn/go-sqlite3"    // registers the "sqlite3" driver
)

// sqliteParams are appended to every SQLite DSN. Foreign keys are off by
// default in SQLite and the cascade from users to tasks depends on them.
const sqliteParams = "_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate"

// PoolOptions tunes the connection pool.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// ParseURL resolves a database URL into a dialect and a driver DSN.
// Accepted forms: postgres://..., postgresql://..., sqlite://path,
// sqlite3://path and file:path.
func ParseURL(rawURL string) (Dialect, string, error) {
	switch {
	case strings.HasPrefix(rawURL, "postgres://"), strings.HasPrefix(rawURL, "postgresql://"):
		return Postgres, rawURL, nil
	case strings.HasPrefix(rawURL, "sqlite://"):
		return SQLite, sqliteDSN(strings.TrimPrefix(rawURL, "sqlite://")), nil
	case strings.HasPrefix(rawURL, "sqlite3://"):
		return SQLite, sqliteDSN(strings.TrimPrefix(rawURL, "sqlite3://")), nil
	case strings.HasPrefix(rawURL, "file:"):
		return SQLite, sqliteDSN(rawURL), nil
	default:
		return "", "", fmt.Errorf("unsupported database url scheme: %q", schemeOf(rawURL))
	}
}

func sqliteDSN(path string) string {
	if path == "" {
		path = ":memory:"
	}
	if strings.Contains(path, "?") {
		return path + "&" + sqliteParams
	}
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	return path + "?" + sqliteParams
}

func schemeOf(rawURL string) string {
	if i := strings.Index(rawURL, ":"); i > 0 {
		return rawURL[:i]
	}
	return ""
}

// Open connects to the database named by rawURL, applies pool options and
// verifies the connection with a ping.
func Open(ctx context.Context, rawURL string, opts PoolOptions) (*sql.DB, Dialect, error) {
	dialect, dsn, err := ParseURL(rawURL)
	if err != nil {
		return nil, "", err
	}

	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	if dialect == SQLite && strings.Contains(dsn, ":memory:") {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("failed to ping database: %w", err)
	}

	return db, dialect, nil
}

// Package sqlstore implements the store interfaces on database/sql for
// PostgreSQL (through pgx) and SQLite (through go-sqlite3). Schema
// migrations for both dialects are embedded and applied with goose.
package sqlstore

// Package testdb provides utilities for database testing.
//
// Unit tests use Open, which returns a migrated SQLite database in a
// per-test temporary directory:
//
//	func TestMyFeature(t *testing.T) {
//	    db, dialect := testdb.Open(t)
//	    users := sqlstore.NewUserStore(db, dialect, nil)
//	    ...
//	}
//
// Integration tests run against PostgreSQL. OpenPostgres skips the test
// unless TASKPILOT_TEST_DATABASE_URL is set, and WithTx runs the test body
// inside a transaction that is always rolled back, so tests do not affect
// each other's data:
//
//	db, dialect := testdb.OpenPostgres(t)
//	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	    tasks := sqlstore.NewTaskStore(tx, dialect, nil)
//	    ...
//	})
package testdb

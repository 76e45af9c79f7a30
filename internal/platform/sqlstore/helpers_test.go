package sqlstore_test

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskpilot-api/internal/domain"
	"github.com/phrazzld/taskpilot-api/internal/platform/sqlstore"
	"github.com/phrazzld/taskpilot-api/internal/testdb"
)

var userSeq atomic.Int64

// openTestDB returns a migrated SQLite database in a per-test directory.
func openTestDB(t *testing.T) (*sql.DB, sqlstore.Dialect) {
	t.Helper()
	return testdb.Open(t)
}

func createUser(t *testing.T, users *sqlstore.UserStore) *domain.User {
	t.Helper()
	n := userSeq.Add(1)
	u := &domain.User{
		Email:      fmt.Sprintf("user%d@example.com", n),
		Username:   fmt.Sprintf("user%d", n),
		ExternalID: fmt.Sprintf("ext-%d", n),
		IsActive:   true,
	}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func createTask(t *testing.T, tasks *sqlstore.TaskStore, ownerID int64, nt domain.NewTask) *domain.Task {
	t.Helper()
	nt.Normalize()
	task, err := tasks.Create(context.Background(), ownerID, nt)
	require.NoError(t, err)
	return task
}

func strPtr(s string) *string { return &s }

package service_test

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskpilot-api/internal/domain"
	"github.com/phrazzld/taskpilot-api/internal/platform/sqlstore"
	"github.com/phrazzld/taskpilot-api/internal/service"
	"github.com/phrazzld/taskpilot-api/internal/testdb"
)

var userSeq atomic.Int64

// fixedNow is the service clock for tests: a Wednesday afternoon in UTC.
var fixedNow = time.Date(2025, 6, 11, 15, 30, 0, 0, time.UTC)

type taskFixture struct {
	db    *sql.DB
	users *sqlstore.UserStore
	tasks *sqlstore.TaskStore
	svc   service.TaskService
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()
	db, dialect := testdb.Open(t)

	f := &taskFixture{
		db:    db,
		users: sqlstore.NewUserStore(db, dialect, nil),
		tasks: sqlstore.NewTaskStore(db, dialect, nil),
	}
	var err error
	f.svc, err = service.NewTaskService(db, f.tasks, service.TaskServiceOptions{
		DefaultPageSize: 20,
		MaxPageSize:     100,
		Now:             func() time.Time { return fixedNow },
	}, nil)
	require.NoError(t, err)
	return f
}

func (f *taskFixture) newUser(t *testing.T) int64 {
	t.Helper()
	n := userSeq.Add(1)
	u := &domain.User{
		Email:      fmt.Sprintf("svc%d@example.com", n),
		Username:   fmt.Sprintf("svc%d", n),
		ExternalID: fmt.Sprintf("svc-ext-%d", n),
		IsActive:   true,
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u.ID
}

func (f *taskFixture) create(t *testing.T, ownerID int64, nt domain.NewTask) *domain.Task {
	t.Helper()
	task, err := f.svc.Create(context.Background(), ownerID, nt)
	require.NoError(t, err)
	return task
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func ids(tasks []domain.Task) []int64 {
	out := make([]int64, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

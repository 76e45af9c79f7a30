package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskpilot-api/internal/api/shared"
	"github.com/phrazzld/taskpilot-api/internal/domain"
	"github.com/phrazzld/taskpilot-api/internal/platform/sqlstore"
	"github.com/phrazzld/taskpilot-api/internal/service"
	"github.com/phrazzld/taskpilot-api/internal/testdb"
)

// testNow is the clock of the task service under test.
var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

// callerHeader names the test user a request is made as. It stands in for
// the authentication middleware.
const callerHeader = "X-Test-Caller"

func fakeAuth(users map[int64]*domain.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, _ := strconv.ParseInt(r.Header.Get(callerHeader), 10, 64)
			if user, ok := users[id]; ok {
				r = r.WithContext(shared.WithUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

type taskAPI struct {
	router http.Handler
	alice  *domain.User
	bob    *domain.User
}

func newTaskAPI(t *testing.T) *taskAPI {
	t.Helper()
	ctx := context.Background()

	db, dialect := testdb.Open(t)

	users := sqlstore.NewUserStore(db, dialect, nil)
	alice := &domain.User{Email: "alice@example.com", Username: "alice", ExternalID: "ext-alice", IsActive: true}
	bob := &domain.User{Email: "bob@example.com", Username: "bob", ExternalID: "ext-bob", IsActive: true}
	require.NoError(t, users.Create(ctx, alice))
	require.NoError(t, users.Create(ctx, bob))

	tasks, err := service.NewTaskService(db, sqlstore.NewTaskStore(db, dialect, nil), service.TaskServiceOptions{
		Now: func() time.Time { return testNow },
	}, nil)
	require.NoError(t, err)

	h := NewTaskHandler(tasks, nil)
	r := chi.NewRouter()
	r.Use(fakeAuth(map[int64]*domain.User{alice.ID: alice, bob.ID: bob}))
	r.Route("/tasks", func(r chi.Router) {
		r.Post("/", h.CreateTask)
		r.Get("/", h.ListTasks)
		r.Get("/overdue", h.ListOverdue)
		r.Get("/due-today", h.ListDueToday)
		r.Get("/status/{status}", h.ListByStatus)
		r.Post("/bulk-update", h.BulkUpdate)
		r.Get("/{id}", h.GetTask)
		r.Put("/{id}", h.UpdateTask)
		r.Patch("/{id}/status", h.UpdateTaskStatus)
		r.Delete("/{id}", h.DeleteTask)
	})

	return &taskAPI{router: r, alice: alice, bob: bob}
}

// do sends a request as caller (nil for anonymous) and returns the recorder.
func do(t *testing.T, h http.Handler, caller *domain.User, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if caller != nil {
		req.Header.Set(callerHeader, strconv.FormatInt(caller.ID, 10))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (a *taskAPI) createTask(t *testing.T, caller *domain.User, body map[string]interface{}) TaskResponse {
	t.Helper()
	rec := do(t, a.router, caller, http.MethodPost, "/tasks/", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[TaskResponse](t, rec)
}

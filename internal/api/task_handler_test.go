package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskpilot-api/internal/api/shared"
	"github.com/phrazzld/taskpilot-api/internal/domain"
)

func TestCreateTask(t *testing.T) {
	t.Parallel()
	api := newTaskAPI(t)

	tests := []struct {
		name       string
		caller     *domain.User
		body       interface{}
		wantStatus int
		wantKind   domain.Kind
	}{
		{
			name:       "minimal",
			caller:     api.alice,
			body:       map[string]interface{}{"title": "Buy milk"},
			wantStatus: http.StatusCreated,
		},
		{
			name:   "full",
			caller: api.alice,
			body: map[string]interface{}{
				"title": "Ship", "description": "v2", "status": "in_progress",
				"due_date": "2025-03-20T17:00:00Z", "priority": "high",
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "anonymous",
			body:       map[string]interface{}{"title": "x"},
			wantStatus: http.StatusUnauthorized,
			wantKind:   domain.KindUnauthorized,
		},
		{
			name:       "missing title",
			caller:     api.alice,
			body:       map[string]interface{}{"description": "no title"},
			wantStatus: http.StatusBadRequest,
			wantKind:   domain.KindValidation,
		},
		{
			name:       "unknown status",
			caller:     api.alice,
			body:       map[string]interface{}{"title": "x", "status": "blocked"},
			wantStatus: http.StatusBadRequest,
			wantKind:   domain.KindValidation,
		},
		{
			name:       "malformed json",
			caller:     api.alice,
			body:       `{"title": `,
			wantStatus: http.StatusBadRequest,
			wantKind:   domain.KindValidation,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, api.router, tc.caller, http.MethodPost, "/tasks/", tc.body)
			assert.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())

			if tc.wantStatus != http.StatusCreated {
				assert.Equal(t, tc.wantKind, decode[shared.ErrorResponse](t, rec).Kind)
				return
			}
			task := decode[TaskResponse](t, rec)
			assert.Equal(t, api.alice.ID, task.OwnerID)
			assert.NotZero(t, task.ID)
		})
	}
}

func TestCreateTaskDefaults(t *testing.T) {
	t.Parallel()
	api := newTaskAPI(t)

	task := api.createTask(t, api.alice, map[string]interface{}{"title": "Defaults"})
	assert.Equal(t, domain.StatusTodo, task.Status)
	assert.Equal(t, "medium", task.Priority)
	assert.False(t, task.IsArchived)
	assert.Nil(t, task.Description)
	assert.Nil(t, task.DueDate)
}

func TestTaskOwnershipIsHidden(t *testing.T) {
	t.Parallel()
	api := newTaskAPI(t)

	task := api.createTask(t, api.alice, map[string]interface{}{"title": "private"})
	path := fmt.Sprintf("/tasks/%d", task.ID)

	for _, req := range []struct{ method, path string }{
		{http.MethodGet, path},
		{http.MethodPut, path},
		{http.MethodPatch, path + "/status"},
		{http.MethodDelete, path},
	} {
		var body interface{}
		switch req.method {
		case http.MethodPut:
			body = map[string]interface{}{"title": "stolen"}
		case http.MethodPatch:
			body = map[string]interface{}{"status": "completed"}
		}
		rec := do(t, api.router, api.bob, req.method, req.path, body)
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", req.method, req.path)
		errResp := decode[shared.ErrorResponse](t, rec)
		assert.Equal(t, domain.KindNotFound, errResp.Kind)
		assert.Equal(t, "Task not found", errResp.Error)
	}

	rec := do(t, api.router, api.alice, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[TaskResponse](t, rec)
	assert.Equal(t, "private", got.Title)
	assert.Equal(t, domain.StatusTodo, got.Status)
}

func TestGetTaskInvalidID(t *testing.T) {
	t.Parallel()
	api := newTaskAPI(t)

	for _, id := range []string{"abc", "0", "-3"} {
		rec := do(t, api.router, api.alice, http.MethodGet, "/tasks/"+id, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, id)
		assert.Equal(t, domain.KindValidation, decode[shared.ErrorResponse](t, rec).Kind)
	}
}

func TestListTasksQueryParameters(t *testing.T) {
	t.Parallel()
	api := newTaskAPI(t)

	for i := 0; i < 5; i++ {
		api.createTask(t, api.alice, map[string]interface{}{
			"title": fmt.Sprintf("report %d", i), "priority": "high",
		})
	}
	api.createTask(t, api.alice, map[string]interface{}{"title": "groceries", "status": "completed"})
	api.createTask(t, api.bob, map[string]interface{}{"title": "bob's report"})

	rec := do(t, api.router, api.alice, http.MethodGet, "/tasks/?search=REPORT&size=2&page=2&sort_by=id&sort_order=asc", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page := decode[TaskListResponse](t, rec)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.Size)
	assert.Equal(t, 3, page.Pages)
	require.Len(t, page.Tasks, 2)
	assert.Equal(t, "report 2", page.Tasks[0].Title)
	assert.Equal(t, "report 3", page.Tasks[1].Title)

	rec = do(t, api.router, api.alice, http.MethodGet, "/tasks/?status=completed", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[TaskListResponse](t, rec)
	require.Len(t, page.Tasks, 1)
	assert.Equal(t, "groceries", page.Tasks[0].Title)

	rec = do(t, api.router, api.alice, http.MethodGet, "/tasks/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[TaskListResponse](t, rec)
	assert.Equal(t, 20, page.Size)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Tasks, 6)
}

func TestListTasksRejectsBadParameters(t *testing.T) {
	t.Parallel()
	api := newTaskAPI(t)

	for _, query := range []string{
		"status=blocked", "page=0", "page=x", "size=0", "size=101", "is_archived=maybe",
	} {
		rec := do(t, api.router, api.alice, http.MethodGet, "/tasks/?"+query, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
		assert.Equal(t, domain.KindValidation, decode[shared.ErrorResponse](t, rec).Kind, query)
	}
}

func TestListTasksArchivedFilter(t *testing.T) {
	t.Parallel()
	api := newTaskAPI(t)

	api.createTask(t, api.alice, map[string]interface{}{"title": "active"})
	archived := api.createTask(t, api.alice, map[string]interface{}{"title": "archived"})
	rec := do(t, api.router, api.alice, http.MethodPut, fmt.Sprintf("/tasks/%d", archived.ID),
		map[string]interface{}{"is_archived": true})
	require.Equal(t, http.StatusOK, rec.Code)

	page := decode[TaskListResponse](t, do(t, api.router, api.alice, http.MethodGet, "/tasks/", nil))
	require.Len(t, page.Tasks, 1)
	assert.Equal(t, "active", page.Tasks[0].Title)

	page = decode[TaskListResponse](t, do(t, api.router, api.alice, http.MethodGet, "/tasks/?is_archived=true", nil))
	require.Len(t, page.Tasks, 1)
	assert.Equal(t, "archived", page.Tasks[0].Title)
}

func TestUpdateTaskPatch(t *testing.T) {
	t.Parallel()
	api := newTaskAPI(t)

	task := api.createTask(t, api.alice, map[string]interface{}{
		"title": "Write report", "description": "Q1", "due_date": "2025-03-20T09:00:00Z", "priority": "high",
	})
	path := fmt.Sprintf("/tasks/%d", task.ID)

	rec := do(t, api.router, api.alice, http.MethodPut, path, map[string]interface{}{"status": "completed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[TaskResponse](t, rec)
	assert.Equal(t, domain.StatusCompleted, updated.Status)
	assert.Equal(t, "Write report", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "Q1", *updated.Description)
	assert.Equal(t, "high", updated.Priority)
	require.NotNil(t, updated.DueDate)

	rec = do(t, api.router, api.alice, http.MethodPut, path, `{"description": null, "due_date": null}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated = decode[TaskResponse](t, rec)
	assert.Nil(t, updated.Description)
	assert.Nil(t, updated.DueDate)
	assert.Equal(t, domain.StatusCompleted, updated.Status)

	rec = do(t, api.router, api.alice, http.MethodPut, path, `{"title": null}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, api.router, api.alice, http.MethodPut, path, `{"title": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateTaskStatus(t *testing.T) {
	t.Parallel()
	api := newTaskAPI(t)
	task := api.createTask(t, api.alice, map[string]interface{}{"title": "t", "priority": "low"})
	path := fmt.Sprintf("/tasks/%d/status", task.ID)

	rec := do(t, api.router, api.alice, http.MethodPatch, path, map[string]interface{}{"status": "in_progress"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[TaskResponse](t, rec)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
	assert.Equal(t, "low", updated.Priority)

	rec = do(t, api.router, api.alice, http.MethodPatch, path, map[string]interface{}{"status": "done"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, api.router, api.alice, http.MethodPatch, path, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteTaskIsIdempotent(t *testing.T) {
	t.Parallel()
	api := newTaskAPI(t)
	task := api.createTask(t, api.alice, map[string]interface{}{"title": "t"})
	path := fmt.Sprintf("/tasks/%d", task.ID)

	rec := do(t, api.router, api.alice, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	for i := 0; i < 2; i++ {
		rec = do(t, api.router, api.alice, http.MethodDelete, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}
}

func TestBulkUpdate(t *testing.T) {
	t.Parallel()
	api := newTaskAPI(t)

	mine := api.createTask(t, api.alice, map[string]interface{}{"title": "mine"})
	theirs := api.createTask(t, api.bob, map[string]interface{}{"title": "theirs"})

	rec := do(t, api.router, api.alice, http.MethodPost, "/tasks/bulk-update", map[string]interface{}{
		"task_ids": []int64{mine.ID, theirs.ID}, "status": "completed", "is_archived": true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[BulkUpdateResponse](t, rec)
	assert.Equal(t, int64(1), resp.Updated)
	assert.Equal(t, "Successfully updated 1 tasks", resp.Message)

	got := decode[TaskResponse](t, do(t, api.router, api.bob, http.MethodGet, fmt.Sprintf("/tasks/%d", theirs.ID), nil))
	assert.Equal(t, domain.StatusTodo, got.Status)

	rec = do(t, api.router, api.alice, http.MethodPost, "/tasks/bulk-update", map[string]interface{}{
		"task_ids": []int64{mine.ID},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(0), decode[BulkUpdateResponse](t, rec).Updated)

	rec = do(t, api.router, api.alice, http.MethodPost, "/tasks/bulk-update", map[string]interface{}{
		"task_ids": []int64{}, "status": "completed",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, api.router, api.alice, http.MethodPost, "/tasks/bulk-update", map[string]interface{}{
		"task_ids": []int64{mine.ID}, "status": "nope",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBulkUpdateRejectsOversizedSelection(t *testing.T) {
	t.Parallel()
	api := newTaskAPI(t)
	mine := api.createTask(t, api.alice, map[string]interface{}{"title": "mine"})

	tests := []struct {
		name string
		n    int
		want int
	}{
		{name: "at the limit", n: domain.MaxBulkTaskIDs, want: http.StatusOK},
		{name: "over the limit", n: domain.MaxBulkTaskIDs + 1, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := make([]int64, tt.n)
			for i := range ids {
				ids[i] = mine.ID
			}
			rec := do(t, api.router, api.alice, http.MethodPost, "/tasks/bulk-update", map[string]interface{}{
				"task_ids": ids, "priority": "low",
			})
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestProjectionEndpoints(t *testing.T) {
	t.Parallel()
	api := newTaskAPI(t)

	late := api.createTask(t, api.alice, map[string]interface{}{
		"title": "late", "due_date": testNow.Add(-48 * time.Hour).Format(time.RFC3339),
	})
	today := api.createTask(t, api.alice, map[string]interface{}{
		"title": "today", "due_date": testNow.Add(3 * time.Hour).Format(time.RFC3339),
	})
	api.createTask(t, api.alice, map[string]interface{}{"title": "done", "status": "completed"})

	overdue := decode[[]TaskResponse](t, do(t, api.router, api.alice, http.MethodGet, "/tasks/overdue", nil))
	require.Len(t, overdue, 1)
	assert.Equal(t, late.ID, overdue[0].ID)

	dueToday := decode[[]TaskResponse](t, do(t, api.router, api.alice, http.MethodGet, "/tasks/due-today", nil))
	require.Len(t, dueToday, 1)
	assert.Equal(t, today.ID, dueToday[0].ID)

	rec := do(t, api.router, api.alice, http.MethodGet, "/tasks/status/completed", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	completed := decode[[]TaskResponse](t, rec)
	require.Len(t, completed, 1)
	assert.Equal(t, "done", completed[0].Title)

	rec = do(t, api.router, api.bob, http.MethodGet, "/tasks/overdue", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, api.router, api.alice, http.MethodGet, "/tasks/status/blocked", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

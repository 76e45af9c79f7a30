package service_test

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskpilot-api/internal/domain"
	"github.com/phrazzld/taskpilot-api/internal/service"
)

func TestNewTaskServiceRequiresDependencies(t *testing.T) {
	t.Parallel()
	_, err := service.NewTaskService(nil, nil, service.TaskServiceOptions{}, nil)
	assert.Error(t, err)
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	t.Parallel()
	f := newTaskFixture(t)
	ctx := context.Background()
	owner := f.newUser(t)

	created := f.create(t, owner, domain.NewTask{Title: "Write report", Status: domain.StatusTodo, Priority: "high"})
	assert.NotZero(t, created.ID)
	assert.Equal(t, owner, created.OwnerID)

	got, err := f.svc.Get(ctx, owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Write report", got.Title)
	assert.Equal(t, domain.StatusTodo, got.Status)
	assert.Equal(t, "high", got.Priority)
	assert.False(t, got.IsArchived)
	assert.Nil(t, got.Description)
	assert.False(t, got.CreatedAt.IsZero())
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestCreateDefaultsAndValidation(t *testing.T) {
	t.Parallel()
	f := newTaskFixture(t)
	owner := f.newUser(t)

	task := f.create(t, owner, domain.NewTask{Title: "Defaults"})
	assert.Equal(t, domain.StatusTodo, task.Status)
	assert.Equal(t, "medium", task.Priority)

	_, err := f.svc.Create(context.Background(), owner, domain.NewTask{Title: ""})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = f.svc.Create(context.Background(), owner, domain.NewTask{Title: "x", Status: "blocked"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	spaces := f.create(t, owner, domain.NewTask{Title: "   "})
	assert.Equal(t, "   ", spaces.Title)
}

func TestOwnerIsolation(t *testing.T) {
	t.Parallel()
	f := newTaskFixture(t)
	ctx := context.Background()
	alice, bob := f.newUser(t), f.newUser(t)

	aliceTask := f.create(t, alice, domain.NewTask{Title: "alice's"})
	f.create(t, bob, domain.NewTask{Title: "bob's", Priority: "high"})

	page, err := f.svc.List(ctx, alice, domain.TaskQuery{})
	require.NoError(t, err)
	require.Len(t, page.Tasks, 1)
	assert.Equal(t, aliceTask.ID, page.Tasks[0].ID)

	// Filters never widen the owner scope.
	high := "high"
	page, err = f.svc.List(ctx, alice, domain.TaskQuery{Filter: domain.TaskFilter{Priority: &high}})
	require.NoError(t, err)
	assert.Empty(t, page.Tasks)

	_, err = f.svc.Get(ctx, bob, aliceTask.ID)
	assert.ErrorIs(t, err, service.ErrTaskNotFound)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	_, err = f.svc.Update(ctx, bob, aliceTask.ID, domain.TaskPatch{Title: domain.Value("mine now")})
	assert.ErrorIs(t, err, service.ErrTaskNotFound)

	deleted, err := f.svc.Delete(ctx, bob, aliceTask.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	got, err := f.svc.Get(ctx, alice, aliceTask.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice's", got.Title)
	assert.Equal(t, alice, got.OwnerID)
}

func TestListHidesArchivedByDefault(t *testing.T) {
	t.Parallel()
	f := newTaskFixture(t)
	ctx := context.Background()
	owner := f.newUser(t)

	visible := f.create(t, owner, domain.NewTask{Title: "visible"})
	archived := f.create(t, owner, domain.NewTask{Title: "archived"})
	_, err := f.svc.Update(ctx, owner, archived.ID, domain.TaskPatch{IsArchived: domain.Value(true)})
	require.NoError(t, err)

	page, err := f.svc.List(ctx, owner, domain.TaskQuery{})
	require.NoError(t, err)
	assert.Equal(t, []int64{visible.ID}, ids(page.Tasks))
	assert.Equal(t, int64(1), page.Total)

	yes := true
	page, err = f.svc.List(ctx, owner, domain.TaskQuery{Filter: domain.TaskFilter{IsArchived: &yes}})
	require.NoError(t, err)
	assert.Equal(t, []int64{archived.ID}, ids(page.Tasks))
}

func TestListSearchAndFilters(t *testing.T) {
	t.Parallel()
	f := newTaskFixture(t)
	ctx := context.Background()
	owner := f.newUser(t)

	report := f.create(t, owner, domain.NewTask{Title: "Quarterly REPORT", Priority: "high"})
	notes := f.create(t, owner, domain.NewTask{Title: "Notes", Description: strPtr("draft the report outline")})
	f.create(t, owner, domain.NewTask{Title: "Groceries", Status: domain.StatusCompleted})

	page, err := f.svc.List(ctx, owner, domain.TaskQuery{
		Filter: domain.TaskFilter{Search: "report"}, SortBy: "id", SortOrder: domain.SortAsc,
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{report.ID, notes.ID}, ids(page.Tasks))

	high := "high"
	page, err = f.svc.List(ctx, owner, domain.TaskQuery{Filter: domain.TaskFilter{Search: "report", Priority: &high}})
	require.NoError(t, err)
	assert.Equal(t, []int64{report.ID}, ids(page.Tasks))

	bad := domain.TaskStatus("blocked")
	_, err = f.svc.List(ctx, owner, domain.TaskQuery{Filter: domain.TaskFilter{Status: &bad}})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestListPagination(t *testing.T) {
	t.Parallel()
	f := newTaskFixture(t)
	ctx := context.Background()
	owner := f.newUser(t)

	for i := 0; i < 25; i++ {
		f.create(t, owner, domain.NewTask{Title: fmt.Sprintf("task %02d", i)})
	}

	seen := map[int64]bool{}
	for pageNum := 1; pageNum <= 2; pageNum++ {
		page, err := f.svc.List(ctx, owner, domain.TaskQuery{Page: pageNum, Size: 10})
		require.NoError(t, err)
		assert.Len(t, page.Tasks, 10)
		assert.Equal(t, int64(25), page.Total)
		assert.Equal(t, 3, page.Pages)
		assert.Equal(t, pageNum, page.Page)
		for _, task := range page.Tasks {
			assert.False(t, seen[task.ID], "task %d appears on two pages", task.ID)
			seen[task.ID] = true
		}
	}
	assert.Len(t, seen, 20)

	page, err := f.svc.List(ctx, owner, domain.TaskQuery{Page: 3, Size: 10})
	require.NoError(t, err)
	assert.Len(t, page.Tasks, 5)

	page, err = f.svc.List(ctx, owner, domain.TaskQuery{Page: 9, Size: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Tasks)
	assert.NotNil(t, page.Tasks)
	assert.Equal(t, int64(25), page.Total)
}

func TestListPageFarPastEndIsEmpty(t *testing.T) {
	t.Parallel()
	f := newTaskFixture(t)
	ctx := context.Background()
	owner := f.newUser(t)

	for i := 0; i < 3; i++ {
		f.create(t, owner, domain.NewTask{Title: fmt.Sprintf("task %d", i)})
	}

	for _, pageNum := range []int{math.MaxInt/20 + 2, math.MaxInt} {
		page, err := f.svc.List(ctx, owner, domain.TaskQuery{Page: pageNum, Size: 20})
		require.NoError(t, err)
		assert.Empty(t, page.Tasks, "page %d", pageNum)
		assert.NotNil(t, page.Tasks)
		assert.Equal(t, int64(3), page.Total)
		assert.Equal(t, 1, page.Pages)
	}
}

func TestListClampsPaging(t *testing.T) {
	t.Parallel()
	f := newTaskFixture(t)
	owner := f.newUser(t)

	page, err := f.svc.List(context.Background(), owner, domain.TaskQuery{Page: -4, Size: 5000})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 100, page.Size)
	assert.Equal(t, 0, page.Pages)

	page, err = f.svc.List(context.Background(), owner, domain.TaskQuery{})
	require.NoError(t, err)
	assert.Equal(t, 20, page.Size)
}

func TestListDefaultOrderIsNewestFirst(t *testing.T) {
	t.Parallel()
	f := newTaskFixture(t)
	owner := f.newUser(t)

	first := f.create(t, owner, domain.NewTask{Title: "first"})
	second := f.create(t, owner, domain.NewTask{Title: "second"})

	page, err := f.svc.List(context.Background(), owner, domain.TaskQuery{})
	require.NoError(t, err)
	assert.Equal(t, []int64{second.ID, first.ID}, ids(page.Tasks))

	// Unknown sort fields are accepted and leave the order unspecified.
	page, err = f.svc.List(context.Background(), owner, domain.TaskQuery{SortBy: "password_hash"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{first.ID, second.ID}, ids(page.Tasks))
}

func TestUpdatePatchSemantics(t *testing.T) {
	t.Parallel()
	f := newTaskFixture(t)
	ctx := context.Background()
	owner := f.newUser(t)
	due := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

	task := f.create(t, owner, domain.NewTask{
		Title: "Write report", Description: strPtr("Q2"), Priority: "high", DueDate: &due,
	})

	updated, err := f.svc.Update(ctx, owner, task.ID, domain.TaskPatch{Status: domain.Value(domain.StatusCompleted)})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, updated.Status)
	assert.Equal(t, "Write report", updated.Title)
	assert.Equal(t, strPtr("Q2"), updated.Description)
	assert.Equal(t, "high", updated.Priority)
	require.NotNil(t, updated.DueDate)
	assert.True(t, due.Equal(*updated.DueDate))
	assert.False(t, updated.UpdatedAt.Before(task.UpdatedAt))

	updated, err = f.svc.Update(ctx, owner, task.ID, domain.TaskPatch{
		Description: domain.Null[string](),
		DueDate:     domain.Null[time.Time](),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.Description)
	assert.Nil(t, updated.DueDate)

	reloaded, err := f.svc.Get(ctx, owner, task.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.Description)
	assert.Equal(t, domain.StatusCompleted, reloaded.Status)

	_, err = f.svc.Update(ctx, owner, task.ID, domain.TaskPatch{Title: domain.Null[string]()})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	unchanged, err := f.svc.Update(ctx, owner, task.ID, domain.TaskPatch{})
	require.NoError(t, err)
	assert.Equal(t, reloaded.UpdatedAt, unchanged.UpdatedAt)

	_, err = f.svc.Update(ctx, owner, 424242, domain.TaskPatch{Title: domain.Value("x")})
	assert.ErrorIs(t, err, service.ErrTaskNotFound)
}

func TestUpdateStatus(t *testing.T) {
	t.Parallel()
	f := newTaskFixture(t)
	ctx := context.Background()
	owner := f.newUser(t)
	task := f.create(t, owner, domain.NewTask{Title: "t", Priority: "low"})

	updated, err := f.svc.UpdateStatus(ctx, owner, task.ID, domain.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
	assert.Equal(t, "low", updated.Priority)

	_, err = f.svc.UpdateStatus(ctx, owner, task.ID, "done")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestDeleteIsIdempotent(t *testing.T) {
	t.Parallel()
	f := newTaskFixture(t)
	ctx := context.Background()
	owner := f.newUser(t)
	task := f.create(t, owner, domain.NewTask{Title: "t"})

	deleted, err := f.svc.Delete(ctx, owner, task.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	for i := 0; i < 2; i++ {
		deleted, err = f.svc.Delete(ctx, owner, task.ID)
		require.NoError(t, err)
		assert.False(t, deleted)
	}

	_, err = f.svc.Get(ctx, owner, task.ID)
	assert.ErrorIs(t, err, service.ErrTaskNotFound)
}

func TestBulkUpdate(t *testing.T) {
	t.Parallel()
	f := newTaskFixture(t)
	ctx := context.Background()
	alice, bob := f.newUser(t), f.newUser(t)

	owned := f.create(t, alice, domain.NewTask{Title: "owned"})
	foreign := f.create(t, bob, domain.NewTask{Title: "foreign"})

	n, err := f.svc.BulkUpdate(ctx, alice, []int64{owned.ID, foreign.ID, 999999},
		domain.TaskPatch{Status: domain.Value(domain.StatusCompleted), IsArchived: domain.Value(true)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := f.svc.Get(ctx, alice, owned.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.True(t, got.IsArchived)

	untouched, err := f.svc.Get(ctx, bob, foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTodo, untouched.Status)
	assert.False(t, untouched.IsArchived)

	n, err = f.svc.BulkUpdate(ctx, alice, []int64{owned.ID}, domain.TaskPatch{})
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = f.svc.BulkUpdate(ctx, alice, nil, domain.TaskPatch{Priority: domain.Value("low")})
	assert.ErrorIs(t, err, service.ErrEmptyBulkSelection)

	_, err = f.svc.BulkUpdate(ctx, alice, []int64{owned.ID}, domain.TaskPatch{Status: domain.Value(domain.TaskStatus("x"))})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestBulkUpdateSelectionSize(t *testing.T) {
	t.Parallel()
	f := newTaskFixture(t)
	ctx := context.Background()
	owner := f.newUser(t)
	task := f.create(t, owner, domain.NewTask{Title: "bulk"})
	patch := domain.TaskPatch{Priority: domain.Value("low")}

	idsOfLen := func(n int) []int64 {
		ids := make([]int64, n)
		for i := range ids {
			ids[i] = task.ID
		}
		return ids
	}

	tests := []struct {
		name    string
		ids     []int64
		want    int64
		wantErr bool
	}{
		{name: "at the limit", ids: idsOfLen(domain.MaxBulkTaskIDs), want: 1},
		{name: "over the limit", ids: idsOfLen(domain.MaxBulkTaskIDs + 1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := f.svc.BulkUpdate(ctx, owner, tt.ids, patch)
			if tt.wantErr {
				assert.Equal(t, domain.KindValidation, domain.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestProjections(t *testing.T) {
	t.Parallel()
	f := newTaskFixture(t)
	ctx := context.Background()
	owner := f.newUser(t)

	yesterday := f.create(t, owner, domain.NewTask{Title: "late", DueDate: timePtr(fixedNow.Add(-24 * time.Hour))})
	earlierToday := f.create(t, owner, domain.NewTask{Title: "this morning", DueDate: timePtr(fixedNow.Add(-6 * time.Hour))})
	laterToday := f.create(t, owner, domain.NewTask{Title: "tonight", DueDate: timePtr(fixedNow.Add(5 * time.Hour))})
	f.create(t, owner, domain.NewTask{Title: "tomorrow", DueDate: timePtr(fixedNow.Add(9 * time.Hour))})
	f.create(t, owner, domain.NewTask{Title: "done late", Status: domain.StatusCompleted,
		DueDate: timePtr(fixedNow.Add(-48 * time.Hour))})
	archivedLate := f.create(t, owner, domain.NewTask{Title: "archived late", DueDate: timePtr(fixedNow.Add(-2 * time.Hour))})
	f.create(t, owner, domain.NewTask{Title: "no due date"})
	_, err := f.svc.Update(ctx, owner, archivedLate.ID, domain.TaskPatch{IsArchived: domain.Value(true)})
	require.NoError(t, err)

	overdue, err := f.svc.ListOverdue(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, []int64{yesterday.ID, earlierToday.ID}, ids(overdue))

	today, err := f.svc.ListDueToday(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, []int64{earlierToday.ID, laterToday.ID}, ids(today))

	// By-status ignores the archive flag.
	todo, err := f.svc.ListByStatus(ctx, owner, domain.StatusTodo)
	require.NoError(t, err)
	assert.Len(t, todo, 6)
	assert.Contains(t, ids(todo), archivedLate.ID)

	_, err = f.svc.ListByStatus(ctx, owner, "nope")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	other := f.newUser(t)
	empty, err := f.svc.ListOverdue(ctx, other)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

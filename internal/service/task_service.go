package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskpilot-api/internal/domain"
	"github.com/phrazzld/taskpilot-api/internal/platform/logger"
	"github.com/phrazzld/taskpilot-api/internal/store"
)

// TaskService provides the task query and mutation operations. Every method
// takes the authenticated owner id; callers never pass an owner from request
// input.
type TaskService interface {
	// List returns one page of the owner's tasks. Archived tasks are hidden
	// unless the filter asks for them.
	List(ctx context.Context, ownerID int64, q domain.TaskQuery) (*domain.TaskPage, error)

	// ListByStatus returns every task with status, archived or not.
	ListByStatus(ctx context.Context, ownerID int64, status domain.TaskStatus) ([]domain.Task, error)

	// ListOverdue returns unarchived, uncompleted tasks due before now.
	ListOverdue(ctx context.Context, ownerID int64) ([]domain.Task, error)

	// ListDueToday returns unarchived, uncompleted tasks due on the current day.
	ListDueToday(ctx context.Context, ownerID int64) ([]domain.Task, error)

	Create(ctx context.Context, ownerID int64, task domain.NewTask) (*domain.Task, error)
	Get(ctx context.Context, ownerID, id int64) (*domain.Task, error)

	// Update applies the fields present in patch. An empty patch returns the
	// task unchanged.
	Update(ctx context.Context, ownerID, id int64, patch domain.TaskPatch) (*domain.Task, error)

	// UpdateStatus changes only the status.
	UpdateStatus(ctx context.Context, ownerID, id int64, status domain.TaskStatus) (*domain.Task, error)

	// Delete reports whether a task was removed. Deleting an absent task is
	// not an error.
	Delete(ctx context.Context, ownerID, id int64) (bool, error)

	// BulkUpdate applies patch to the owner's tasks among ids and returns
	// how many were updated. Foreign and unknown ids are skipped silently.
	BulkUpdate(ctx context.Context, ownerID int64, ids []int64, patch domain.TaskPatch) (int64, error)
}

// TaskServiceOptions tunes listing limits and the clock.
type TaskServiceOptions struct {
	DefaultPageSize int
	MaxPageSize     int
	// Now returns the current time; it decides what is overdue or due today.
	Now func() time.Time
	// Location is the time zone of "today". Defaults to UTC.
	Location *time.Location
}

type taskServiceImpl struct {
	db     *sql.DB
	tasks  store.TaskStore
	opts   TaskServiceOptions
	logger *slog.Logger
}

// NewTaskService creates a TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	db *sql.DB,
	tasks store.TaskStore,
	opts TaskServiceOptions,
	logger *slog.Logger,
) (TaskService, error) {
	if db == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if tasks == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "tasks cannot be nil"}
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = domain.MaxPageSize
	}
	if opts.DefaultPageSize <= 0 || opts.DefaultPageSize > opts.MaxPageSize {
		opts.DefaultPageSize = min(domain.DefaultPageSize, opts.MaxPageSize)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		db:     db,
		tasks:  tasks,
		opts:   opts,
		logger: logger.With("component", "task_service"),
	}, nil
}

// normalizeQuery applies paging bounds, sort defaults and the archived
// default.
func (s *taskServiceImpl) normalizeQuery(q domain.TaskQuery) domain.TaskQuery {
	if q.Page < 1 {
		q.Page = domain.DefaultPage
	}
	if q.Size <= 0 {
		q.Size = s.opts.DefaultPageSize
	}
	if q.Size > s.opts.MaxPageSize {
		q.Size = s.opts.MaxPageSize
	}
	if q.SortBy == "" {
		q.SortBy = domain.DefaultSortBy
	}
	if q.SortOrder == "" {
		q.SortOrder = domain.SortDesc
	}
	if q.Filter.IsArchived == nil {
		archived := false
		q.Filter.IsArchived = &archived
	}
	return q
}

func (s *taskServiceImpl) List(ctx context.Context, ownerID int64, q domain.TaskQuery) (*domain.TaskPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	q = s.normalizeQuery(q)

	if q.Filter.Status != nil && !q.Filter.Status.Valid() {
		return nil, domain.NewValidationError("status", "invalid status")
	}
	if !domain.IsSortableTaskField(q.SortBy) {
		log.Debug("unrecognized sort field, results unordered", slog.String("sort_by", q.SortBy))
	}

	page := &domain.TaskPage{Page: q.Page, Size: q.Size}
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		total, err := txTasks.Count(ctx, ownerID, q.Filter)
		if err != nil {
			return err
		}
		page.Total = total

		if total == 0 || int64(q.Offset()) >= total {
			page.Tasks = []domain.Task{}
			return nil
		}
		page.Tasks, err = txTasks.List(ctx, ownerID, q)
		return err
	})
	if err != nil {
		log.Error("failed to list tasks",
			slog.Int64("owner_id", ownerID),
			slog.String("error", err.Error()))
		return nil, NewServiceError("list_tasks", "failed to list tasks", err)
	}

	page.Pages = domain.PageCount(page.Total, page.Size)
	return page, nil
}

// listAll returns every task matching filter in the given order.
func (s *taskServiceImpl) listAll(
	ctx context.Context,
	op string,
	ownerID int64,
	filter domain.TaskFilter,
	sortBy string,
	order domain.SortOrder,
) ([]domain.Task, error) {
	tasks, err := s.tasks.List(ctx, ownerID, domain.TaskQuery{Filter: filter, SortBy: sortBy, SortOrder: order})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list tasks",
			slog.String("operation", op),
			slog.Int64("owner_id", ownerID),
			slog.String("error", err.Error()))
		return nil, NewServiceError(op, "failed to list tasks", err)
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

func (s *taskServiceImpl) ListByStatus(
	ctx context.Context,
	ownerID int64,
	status domain.TaskStatus,
) ([]domain.Task, error) {
	if !status.Valid() {
		return nil, domain.NewValidationError("status", "invalid status")
	}
	return s.listAll(ctx, "list_by_status", ownerID,
		domain.TaskFilter{Status: &status}, domain.DefaultSortBy, domain.SortDesc)
}

func (s *taskServiceImpl) ListOverdue(ctx context.Context, ownerID int64) ([]domain.Task, error) {
	now := s.opts.Now()
	return s.listAll(ctx, "list_overdue", ownerID, openTasks(domain.TaskFilter{DueBefore: &now}),
		"due_date", domain.SortAsc)
}

func (s *taskServiceImpl) ListDueToday(ctx context.Context, ownerID int64) ([]domain.Task, error) {
	start, end := dayBounds(s.opts.Now(), s.opts.Location)
	return s.listAll(ctx, "list_due_today", ownerID, openTasks(domain.TaskFilter{DueFrom: &start, DueBefore: &end}),
		"due_date", domain.SortAsc)
}

// openTasks restricts f to unarchived tasks that are not completed.
func openTasks(f domain.TaskFilter) domain.TaskFilter {
	completed := domain.StatusCompleted
	archived := false
	f.ExcludeStatus = &completed
	f.IsArchived = &archived
	return f
}

// dayBounds returns the half-open interval covering the calendar day of t in loc.
func dayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

func (s *taskServiceImpl) Create(ctx context.Context, ownerID int64, nt domain.NewTask) (*domain.Task, error) {
	nt.Normalize()
	if err := nt.Validate(); err != nil {
		return nil, err
	}

	task, err := s.tasks.Create(ctx, ownerID, nt)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create task",
			slog.Int64("owner_id", ownerID),
			slog.String("error", err.Error()))
		return nil, NewServiceError("create_task", "failed to save task", err)
	}
	return task, nil
}

func (s *taskServiceImpl) Get(ctx context.Context, ownerID, id int64) (*domain.Task, error) {
	task, err := s.tasks.Get(ctx, ownerID, id)
	if err != nil {
		return nil, NewServiceError("get_task", "failed to load task", err)
	}
	return task, nil
}

func (s *taskServiceImpl) Update(
	ctx context.Context,
	ownerID, id int64,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var task *domain.Task
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		current, err := txTasks.Get(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if patch.IsEmpty() {
			task = current
			return nil
		}

		patch.Apply(current)
		if err := txTasks.Update(ctx, current); err != nil {
			return err
		}
		task = current
		return nil
	})
	if err != nil {
		if !errors.Is(err, store.ErrTaskNotFound) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to update task",
				slog.Int64("owner_id", ownerID),
				slog.Int64("task_id", id),
				slog.String("error", err.Error()))
		}
		return nil, NewServiceError("update_task", "failed to update task", err)
	}
	return task, nil
}

func (s *taskServiceImpl) UpdateStatus(
	ctx context.Context,
	ownerID, id int64,
	status domain.TaskStatus,
) (*domain.Task, error) {
	return s.Update(ctx, ownerID, id, domain.StatusPatch(status))
}

func (s *taskServiceImpl) Delete(ctx context.Context, ownerID, id int64) (bool, error) {
	deleted, err := s.tasks.Delete(ctx, ownerID, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete task",
			slog.Int64("owner_id", ownerID),
			slog.Int64("task_id", id),
			slog.String("error", err.Error()))
		return false, NewServiceError("delete_task", "failed to delete task", err)
	}
	return deleted, nil
}

func (s *taskServiceImpl) BulkUpdate(
	ctx context.Context,
	ownerID int64,
	ids []int64,
	patch domain.TaskPatch,
) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrEmptyBulkSelection
	}
	if len(ids) > domain.MaxBulkTaskIDs {
		return 0, domain.NewValidationError("task_ids",
			fmt.Sprintf("at most %d tasks can be updated at once", domain.MaxBulkTaskIDs))
	}
	if err := patch.Validate(); err != nil {
		return 0, err
	}
	if patch.IsEmpty() {
		return 0, nil
	}

	var updated int64
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		updated, err = s.tasks.WithTx(tx).BulkUpdate(ctx, ownerID, ids, patch)
		return err
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to bulk update tasks",
			slog.Int64("owner_id", ownerID),
			slog.Int("task_count", len(ids)),
			slog.String("error", err.Error()))
		return 0, NewServiceError("bulk_update_tasks", "failed to update tasks", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("bulk updated tasks",
		slog.Int64("owner_id", ownerID),
		slog.Int("requested", len(ids)),
		slog.Int64("updated", updated))
	return updated, nil
}

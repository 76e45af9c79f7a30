package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/taskpilot-api/internal/domain"
	"github.com/phrazzld/taskpilot-api/internal/platform/logger"
	"github.com/phrazzld/taskpilot-api/internal/store"
)

const taskColumns = `id, owner_id, title, description, status, due_date, priority,
	is_archived, created_at, updated_at`

// TaskStore implements store.TaskStore on database/sql.
type TaskStore struct {
	db      store.DBTX
	dialect Dialect
	logger  *slog.Logger
	now     func() time.Time
}

// NewTaskStore creates a TaskStore. If logger is nil, the default logger is used.
func NewTaskStore(db store.DBTX, dialect Dialect, logger *slog.Logger) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskStore{
		db:      db,
		dialect: dialect,
		logger:  logger.With(slog.String("component", "task_store")),
		now:     storeNow,
	}
}

// Ensure TaskStore implements store.TaskStore interface
var _ store.TaskStore = (*TaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *TaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &TaskStore{db: tx, dialect: s.dialect, logger: s.logger, now: s.now}
}

// Create implements store.TaskStore.Create
func (s *TaskStore) Create(ctx context.Context, ownerID int64, task domain.NewTask) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := s.now()
	b := newBuilder(s.dialect)
	b.write(`INSERT INTO tasks (owner_id, title, description, status, due_date, priority,
		is_archived, created_at, updated_at) VALUES (`,
		b.arg(ownerID), ", ",
		b.arg(task.Title), ", ",
		b.arg(nullableString(task.Description)), ", ",
		b.arg(string(task.Status)), ", ",
		b.arg(nullableTime(task.DueDate)), ", ",
		b.arg(task.Priority), ", ",
		b.arg(false), ", ",
		b.arg(now), ", ",
		b.arg(now), ") RETURNING id")

	created := &domain.Task{
		OwnerID:     ownerID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.DueDate != nil {
		due := task.DueDate.UTC()
		created.DueDate = &due
	}

	if err := s.db.QueryRowContext(ctx, b.String(), b.args...).Scan(&created.ID); err != nil {
		log.Error("failed to create task",
			slog.Int64("owner_id", ownerID),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "create", "insert failed", MapError(err))
	}

	log.Debug("task created",
		slog.Int64("task_id", created.ID),
		slog.Int64("owner_id", ownerID))
	return created, nil
}

// Get implements store.TaskStore.Get
func (s *TaskStore) Get(ctx context.Context, ownerID, id int64) (*domain.Task, error) {
	b := newBuilder(s.dialect)
	b.write("SELECT ", taskColumns, " FROM tasks WHERE id = ", b.arg(id), " AND owner_id = ", b.arg(ownerID))

	task, err := scanTask(s.db.QueryRowContext(ctx, b.String(), b.args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get task",
			slog.Int64("task_id", id),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "get", "query failed", MapError(err))
	}
	return task, nil
}

// List implements store.TaskStore.List
func (s *TaskStore) List(ctx context.Context, ownerID int64, q domain.TaskQuery) ([]domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	b := newBuilder(s.dialect)
	b.write("SELECT ", taskColumns, " FROM tasks")
	b.whereTasks(ownerID, q.Filter)
	b.orderTasks(q.SortBy, q.SortOrder)
	b.paginate(q.Size, q.Offset())

	rows, err := s.db.QueryContext(ctx, b.String(), b.args...)
	if err != nil {
		log.Error("failed to list tasks",
			slog.Int64("owner_id", ownerID),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, store.NewStoreError("task", "list", "scan failed", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("task", "list", "iteration failed", MapError(err))
	}

	log.Debug("tasks listed",
		slog.Int64("owner_id", ownerID),
		slog.Int("count", len(tasks)))
	return tasks, nil
}

// Count implements store.TaskStore.Count
func (s *TaskStore) Count(ctx context.Context, ownerID int64, filter domain.TaskFilter) (int64, error) {
	b := newBuilder(s.dialect)
	b.write("SELECT COUNT(*) FROM tasks")
	b.whereTasks(ownerID, filter)

	var n int64
	if err := s.db.QueryRowContext(ctx, b.String(), b.args...).Scan(&n); err != nil {
		return 0, store.NewStoreError("task", "count", "query failed", MapError(err))
	}
	return n, nil
}

// Update implements store.TaskStore.Update
func (s *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := s.now()
	b := newBuilder(s.dialect)
	b.write("UPDATE tasks SET title = ", b.arg(task.Title),
		", description = ", b.arg(nullableString(task.Description)),
		", status = ", b.arg(string(task.Status)),
		", due_date = ", b.arg(nullableTime(task.DueDate)),
		", priority = ", b.arg(task.Priority),
		", is_archived = ", b.arg(task.IsArchived),
		", updated_at = ", b.arg(now),
		" WHERE id = ", b.arg(task.ID),
		" AND owner_id = ", b.arg(task.OwnerID))

	result, err := s.db.ExecContext(ctx, b.String(), b.args...)
	if err != nil {
		log.Error("failed to update task",
			slog.Int64("task_id", task.ID),
			slog.String("error", err.Error()))
		return store.NewStoreError("task", "update", "update failed", MapError(err))
	}
	if err := checkRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	task.UpdatedAt = now
	return nil
}

// BulkUpdate implements store.TaskStore.BulkUpdate
func (s *TaskStore) BulkUpdate(
	ctx context.Context,
	ownerID int64,
	ids []int64,
	patch domain.TaskPatch,
) (int64, error) {
	if len(ids) == 0 || patch.IsEmpty() {
		return 0, nil
	}

	ids = uniqueIDs(ids)
	now := s.now()
	var n int64
	for start := 0; start < len(ids); start += bulkChunkSize {
		end := min(start+bulkChunkSize, len(ids))
		updated, err := s.bulkUpdateChunk(ctx, ownerID, ids[start:end], patch, now)
		if err != nil {
			return 0, err
		}
		n += updated
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("tasks bulk updated",
		slog.Int64("owner_id", ownerID),
		slog.Int("requested", len(ids)),
		slog.Int64("updated", n))
	return n, nil
}

// bulkChunkSize keeps each IN list well under SQLite's and Postgres's bind
// parameter limits. Callers needing atomicity run BulkUpdate in a transaction.
const bulkChunkSize = 500

func (s *TaskStore) bulkUpdateChunk(
	ctx context.Context,
	ownerID int64,
	ids []int64,
	patch domain.TaskPatch,
	now time.Time,
) (int64, error) {
	b := newBuilder(s.dialect)
	sets := b.taskAssignments(patch)
	sets = append(sets, "updated_at = "+b.arg(now))

	placeholders := make([]string, len(ids))
	for i, id := range ids {
		placeholders[i] = b.arg(id)
	}
	ownerArg := b.arg(ownerID)

	b.write("UPDATE tasks SET ", strings.Join(sets, ", "),
		" WHERE id IN (", strings.Join(placeholders, ", "), ") AND owner_id = ", ownerArg)

	result, err := s.db.ExecContext(ctx, b.String(), b.args...)
	if err != nil {
		return 0, store.NewStoreError("task", "bulk_update", "update failed", MapError(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, store.NewStoreError("task", "bulk_update", "rows affected unavailable", err)
	}
	return n, nil
}

// uniqueIDs drops repeated ids so a row split across chunks is counted once.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Delete implements store.TaskStore.Delete
func (s *TaskStore) Delete(ctx context.Context, ownerID, id int64) (bool, error) {
	b := newBuilder(s.dialect)
	b.write("DELETE FROM tasks WHERE id = ", b.arg(id), " AND owner_id = ", b.arg(ownerID))

	result, err := s.db.ExecContext(ctx, b.String(), b.args...)
	if err != nil {
		return false, store.NewStoreError("task", "delete", "delete failed", MapError(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, store.NewStoreError("task", "delete", "rows affected unavailable", err)
	}
	return n > 0, nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		t           domain.Task
		description sql.NullString
		status      string
		dueDate     sql.NullTime
	)
	err := row.Scan(
		&t.ID,
		&t.OwnerID,
		&t.Title,
		&description,
		&status,
		&dueDate,
		&t.Priority,
		&t.IsArchived,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Status = domain.TaskStatus(status)
	if description.Valid {
		t.Description = &description.String
	}
	if dueDate.Valid {
		due := dueDate.Time.UTC()
		t.DueDate = &due
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}

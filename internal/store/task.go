package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/taskpilot-api/internal/domain"
)

// TaskStore defines the interface for task persistence. Every method is
// scoped by owner; a task belonging to another owner behaves as absent.
type TaskStore interface {
	// Create inserts a task for ownerID. Timestamps are set by the store.
	Create(ctx context.Context, ownerID int64, task domain.NewTask) (*domain.Task, error)

	// Get returns the task with id owned by ownerID, or ErrTaskNotFound.
	Get(ctx context.Context, ownerID, id int64) (*domain.Task, error)

	// List returns the page of tasks selected by q.
	List(ctx context.Context, ownerID int64, q domain.TaskQuery) ([]domain.Task, error)

	// Count returns the number of tasks matching filter, ignoring pagination.
	Count(ctx context.Context, ownerID int64, filter domain.TaskFilter) (int64, error)

	// Update writes the mutable fields of task and refreshes UpdatedAt.
	// Returns ErrTaskNotFound if no row matches (task.ID, task.OwnerID).
	Update(ctx context.Context, task *domain.Task) error

	// BulkUpdate applies patch to every task in ids owned by ownerID and
	// returns the number of rows updated. Foreign ids are ignored.
	BulkUpdate(ctx context.Context, ownerID int64, ids []int64, patch domain.TaskPatch) (int64, error)

	// Delete removes the task and reports whether a row was removed.
	Delete(ctx context.Context, ownerID, id int64) (bool, error)

	// WithTx returns a TaskStore bound to tx.
	WithTx(tx *sql.Tx) TaskStore
}

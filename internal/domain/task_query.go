package domain

import (
	"math"
	"strings"
	"time"
)

// SortOrder is the direction of a task listing.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder reads a sort direction. Empty means descending; any value
// other than "desc" (in any case) is ascending.
func ParseSortOrder(s string) SortOrder {
	if s == "" || strings.EqualFold(s, string(SortDesc)) {
		return SortDesc
	}
	return SortAsc
}

// Pagination defaults.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
	DefaultSortBy   = "created_at"

	// MaxBulkTaskIDs bounds the ids accepted by one bulk update.
	MaxBulkTaskIDs = 1000
)

// sortableTaskFields are the task attributes a listing may be ordered by.
var sortableTaskFields = map[string]bool{
	"id":          true,
	"owner_id":    true,
	"title":       true,
	"description": true,
	"status":      true,
	"due_date":    true,
	"priority":    true,
	"is_archived": true,
	"created_at":  true,
	"updated_at":  true,
}

// IsSortableTaskField reports whether name is a task attribute.
func IsSortableTaskField(name string) bool {
	return sortableTaskFields[name]
}

// TaskFilter narrows a task listing. Nil and empty fields impose no
// constraint; all set fields combine with AND. Ownership is not part of the
// filter and is always applied separately.
type TaskFilter struct {
	Status        *TaskStatus
	ExcludeStatus *TaskStatus
	Priority      *string
	IsArchived    *bool
	// Search is a case-insensitive substring matched against title OR
	// description.
	Search string
	// DueFrom is inclusive, DueBefore exclusive.
	DueFrom   *time.Time
	DueBefore *time.Time
}

// TaskQuery is a filtered, sorted and paginated listing request.
type TaskQuery struct {
	Filter    TaskFilter
	Page      int
	Size      int
	SortBy    string
	SortOrder SortOrder
}

// Offset returns the number of rows skipped before Page. It saturates at
// math.MaxInt instead of overflowing for very large pages.
func (q TaskQuery) Offset() int {
	if q.Page < 1 || q.Size <= 0 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Size {
		return math.MaxInt
	}
	return (q.Page - 1) * q.Size
}

// TaskPage is one page of a task listing. Total counts every matching row,
// not only those on this page.
type TaskPage struct {
	Tasks []Task `json:"tasks"`
	Total int64  `json:"total"`
	Page  int    `json:"page"`
	Size  int    `json:"size"`
	Pages int    `json:"pages"`
}

// PageCount returns ceil(total/size).
func PageCount(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

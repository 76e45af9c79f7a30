package api

import (
	"time"

	"github.com/phrazzld/taskpilot-api/internal/domain"
	"github.com/phrazzld/taskpilot-api/internal/service/auth"
	"github.com/phrazzld/taskpilot-api/internal/summary"
)

// SignupRequest defines the payload for the signup endpoint.
type SignupRequest struct {
	Email    string  `json:"email"     validate:"required,email"`
	Password string  `json:"password"  validate:"required,min=8,max=72"`
	Username string  `json:"username"  validate:"required,min=3,max=50"`
	FullName *string `json:"full_name" validate:"omitempty,max=100"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest changes the caller's full name. Omitting full_name
// leaves it unchanged; null clears it.
type UpdateProfileRequest struct {
	FullName domain.Field[string] `json:"full_name"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	FullName    *string   `json:"full_name"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
}

// TokenResponse is returned by signup and login.
type TokenResponse struct {
	// AccessToken is the bearer token for subsequent requests
	AccessToken string `json:"access_token"`

	TokenType string `json:"token_type"`

	// ExpiresAt is when AccessToken stops being accepted
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	Title       string            `json:"title"       validate:"required,max=200"`
	Description *string           `json:"description"`
	Status      domain.TaskStatus `json:"status"      validate:"omitempty,oneof=todo in_progress completed cancelled"`
	DueDate     *time.Time        `json:"due_date"`
	Priority    string            `json:"priority"    validate:"omitempty,max=20"`
}

// UpdateStatusRequest defines the payload for a status-only update.
type UpdateStatusRequest struct {
	Status domain.TaskStatus `json:"status" validate:"required,oneof=todo in_progress completed cancelled"`
}

// BulkUpdateRequest applies the same status, priority or archive flag to
// several tasks.
type BulkUpdateRequest struct {
	TaskIDs    []int64                         `json:"task_ids"    validate:"required,min=1,max=1000"`
	Status     domain.Field[domain.TaskStatus] `json:"status"`
	Priority   domain.Field[string]            `json:"priority"`
	IsArchived domain.Field[bool]              `json:"is_archived"`
}

// Patch returns the fields to write.
func (r BulkUpdateRequest) Patch() domain.TaskPatch {
	return domain.TaskPatch{Status: r.Status, Priority: r.Priority, IsArchived: r.IsArchived}
}

// BulkUpdateResponse reports how many owned tasks changed.
type BulkUpdateResponse struct {
	Updated int64  `json:"updated"`
	Message string `json:"message"`
}

// TaskResponse is the public view of a task.
type TaskResponse struct {
	ID          int64             `json:"id"`
	OwnerID     int64             `json:"owner_id"`
	Title       string            `json:"title"`
	Description *string           `json:"description"`
	Status      domain.TaskStatus `json:"status"`
	DueDate     *time.Time        `json:"due_date"`
	Priority    string            `json:"priority"`
	IsArchived  bool              `json:"is_archived"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// TaskListResponse is one page of tasks.
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
	Pages int            `json:"pages"`
}

// SummarizeTaskRequest is one task in a summarize-tasks request body.
type SummarizeTaskRequest struct {
	Title       string  `json:"title"       validate:"required,max=200"`
	Description string  `json:"description" validate:"max=10000"`
	Status      string  `json:"status"      validate:"max=50"`
	DueDate     *string `json:"due_date"    validate:"omitempty,max=64"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		FullName:    u.FullName,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
		CreatedAt:   u.CreatedAt,
	}
}

func sessionToResponse(s *auth.Session) TokenResponse {
	return TokenResponse{
		AccessToken: s.Token.Token,
		TokenType:   auth.TokenType,
		ExpiresAt:   s.Token.ExpiresAt.UTC(),
		User:        userToResponse(s.User),
	}
}

func taskToResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		OwnerID:     t.OwnerID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		IsArchived:  t.IsArchived,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func tasksToResponse(tasks []domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, taskToResponse(&tasks[i]))
	}
	return out
}

func digestsFromRequest(reqs []SummarizeTaskRequest) []summary.TaskDigest {
	digests := make([]summary.TaskDigest, 0, len(reqs))
	for _, r := range reqs {
		d := summary.TaskDigest{Title: r.Title, Description: r.Description, Status: r.Status}
		if r.DueDate != nil {
			d.DueDate = *r.DueDate
		}
		digests = append(digests, d)
	}
	return digests
}

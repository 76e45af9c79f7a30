package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/taskpilot-api/internal/api/shared"
	"github.com/phrazzld/taskpilot-api/internal/domain"
	"github.com/phrazzld/taskpilot-api/internal/platform/logger"
	"github.com/phrazzld/taskpilot-api/internal/service"
)

// TaskHandler handles task-related HTTP requests. Every operation is scoped
// to the authenticated caller.
type TaskHandler struct {
	tasks  service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

func (h *TaskHandler) log(r *http.Request) *slog.Logger {
	return logger.FromContextOrDefault(r.Context(), h.logger)
}

// CreateTask handles POST /tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	caller, ok := handleCaller(w, r, h.log(r))
	if !ok {
		return
	}

	var req CreateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.tasks.Create(r.Context(), caller.ID, domain.NewTask{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// ListTasks handles GET /tasks.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	caller, ok := handleCaller(w, r, h.log(r))
	if !ok {
		return
	}

	q, err := parseTaskQuery(r.URL.Query())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	page, err := h.tasks.List(r.Context(), caller.ID, q)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve tasks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
		Tasks: tasksToResponse(page.Tasks),
		Total: page.Total,
		Page:  page.Page,
		Size:  page.Size,
		Pages: page.Pages,
	})
}

// ListByStatus handles GET /tasks/status/{status}.
func (h *TaskHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := handleCaller(w, r, h.log(r))
	if !ok {
		return
	}

	status, err := domain.ParseTaskStatus(chi.URLParam(r, "status"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tasks, err := h.tasks.ListByStatus(r.Context(), caller.ID, status)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve tasks by status")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// ListOverdue handles GET /tasks/overdue.
func (h *TaskHandler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	caller, ok := handleCaller(w, r, h.log(r))
	if !ok {
		return
	}

	tasks, err := h.tasks.ListOverdue(r.Context(), caller.ID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve overdue tasks")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// ListDueToday handles GET /tasks/due-today.
func (h *TaskHandler) ListDueToday(w http.ResponseWriter, r *http.Request) {
	caller, ok := handleCaller(w, r, h.log(r))
	if !ok {
		return
	}

	tasks, err := h.tasks.ListDueToday(r.Context(), caller.ID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve tasks due today")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// GetTask handles GET /tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := handleCallerAndPathID(w, r, "id", h.log(r))
	if !ok {
		return
	}

	task, err := h.tasks.Get(r.Context(), caller.ID, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// UpdateTask handles PUT /tasks/{id}. Only fields present in the body are
// changed; description and due_date may be cleared with null.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := handleCallerAndPathID(w, r, "id", h.log(r))
	if !ok {
		return
	}

	var patch domain.TaskPatch
	if err := shared.DecodeJSON(r, &patch); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	task, err := h.tasks.Update(r.Context(), caller.ID, id, patch)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// UpdateTaskStatus handles PATCH /tasks/{id}/status.
func (h *TaskHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := handleCallerAndPathID(w, r, "id", h.log(r))
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.tasks.UpdateStatus(r.Context(), caller.ID, id, req.Status)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task status")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// DeleteTask handles DELETE /tasks/{id}. Deleting an absent task is a 404,
// repeatable without side effects.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := handleCallerAndPathID(w, r, "id", h.log(r))
	if !ok {
		return
	}

	deleted, err := h.tasks.Delete(r.Context(), caller.ID, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}
	if !deleted {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BulkUpdate handles POST /tasks/bulk-update. Ids the caller does not own
// are skipped silently.
func (h *TaskHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	caller, ok := handleCaller(w, r, h.log(r))
	if !ok {
		return
	}

	var req BulkUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.tasks.BulkUpdate(r.Context(), caller.ID, req.TaskIDs, req.Patch())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to bulk update tasks")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, BulkUpdateResponse{
		Updated: updated,
		Message: fmt.Sprintf("Successfully updated %d tasks", updated),
	})
}

package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskpilot-api/internal/api/shared"
	"github.com/phrazzld/taskpilot-api/internal/platform/logger"
	"github.com/phrazzld/taskpilot-api/internal/service"
)

// AIHandler serves task summaries. Summarization failures are reported in
// a 200 response body so clients can degrade gracefully.
type AIHandler struct {
	summaries service.SummaryService
	logger    *slog.Logger
}

// NewAIHandler creates a new AIHandler
func NewAIHandler(summaries service.SummaryService, logger *slog.Logger) *AIHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AIHandler{
		summaries: summaries,
		logger:    logger.With(slog.String("component", "ai_handler")),
	}
}

// SummarizeTasks handles POST /ai/summarize-tasks. The body is a JSON array
// of tasks.
func (h *AIHandler) SummarizeTasks(w http.ResponseWriter, r *http.Request) {
	if _, ok := handleCaller(w, r, logger.FromContextOrDefault(r.Context(), h.logger)); !ok {
		return
	}

	var req []SummarizeTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.Validate.Var(req, "dive"); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	result := h.summaries.SummarizeTasks(r.Context(), digestsFromRequest(req))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// Summary handles GET /ai/summary for the caller's own open tasks.
func (h *AIHandler) Summary(w http.ResponseWriter, r *http.Request) {
	caller, ok := handleCaller(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	result := h.summaries.SummarizeOwnerTasks(r.Context(), caller.ID)
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

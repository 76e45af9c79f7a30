package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/taskpilot-api/internal/domain"
	"github.com/phrazzld/taskpilot-api/internal/platform/logger"
	"github.com/phrazzld/taskpilot-api/internal/redact"
	"github.com/phrazzld/taskpilot-api/internal/summary"
)

// SummaryResult carries either a summary or the reason there is none.
// Exactly one field is set.
type SummaryResult struct {
	Summary string `json:"summary,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SummaryService produces task summaries. It never fails: collaborator
// errors are reported inside the result.
type SummaryService interface {
	// SummarizeTasks summarizes caller supplied task digests.
	SummarizeTasks(ctx context.Context, tasks []summary.TaskDigest) SummaryResult

	// SummarizeOwnerTasks summarizes the owner's unarchived tasks, newest
	// first, up to one full page.
	SummarizeOwnerTasks(ctx context.Context, ownerID int64) SummaryResult
}

type summaryServiceImpl struct {
	summarizer summary.Summarizer
	tasks      TaskService
	logger     *slog.Logger
}

// NewSummaryService creates a SummaryService. A nil summarizer is allowed and
// makes every request report that summarization is not configured.
func NewSummaryService(summarizer summary.Summarizer, tasks TaskService, logger *slog.Logger) (SummaryService, error) {
	if tasks == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "tasks cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &summaryServiceImpl{
		summarizer: summarizer,
		tasks:      tasks,
		logger:     logger.With("component", "summary_service"),
	}, nil
}

func (s *summaryServiceImpl) SummarizeTasks(ctx context.Context, tasks []summary.TaskDigest) SummaryResult {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if s.summarizer == nil {
		return SummaryResult{Error: summaryErrorMessage(summary.ErrNotConfigured)}
	}

	text, err := s.summarizer.Summarize(ctx, tasks)
	if err != nil {
		log.Warn("task summarization failed",
			slog.Int("task_count", len(tasks)),
			slog.String("error", redact.Error(err)))
		return SummaryResult{Error: summaryErrorMessage(err)}
	}
	return SummaryResult{Summary: text}
}

func (s *summaryServiceImpl) SummarizeOwnerTasks(ctx context.Context, ownerID int64) SummaryResult {
	page, err := s.tasks.List(ctx, ownerID, domain.TaskQuery{Size: domain.MaxPageSize})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load tasks for summary",
			slog.Int64("owner_id", ownerID),
			slog.String("error", err.Error()))
		return SummaryResult{Error: "failed to load tasks"}
	}
	return s.SummarizeTasks(ctx, DigestTasks(page.Tasks))
}

// DigestTasks converts stored tasks to summarizer input.
func DigestTasks(tasks []domain.Task) []summary.TaskDigest {
	digests := make([]summary.TaskDigest, 0, len(tasks))
	for _, t := range tasks {
		d := summary.TaskDigest{Title: t.Title, Status: string(t.Status)}
		if t.Description != nil {
			d.Description = *t.Description
		}
		if t.DueDate != nil {
			d.DueDate = t.DueDate.UTC().Format(time.RFC3339)
		}
		digests = append(digests, d)
	}
	return digests
}

// summaryErrorMessage returns a client safe explanation for err.
func summaryErrorMessage(err error) string {
	switch {
	case errors.Is(err, summary.ErrNotConfigured):
		return "AI summarization is not configured"
	case errors.Is(err, summary.ErrNoTasks):
		return "no tasks to summarize"
	case errors.Is(err, summary.ErrContentBlocked):
		return "the summary was blocked by the model's safety filters"
	case errors.Is(err, summary.ErrTransientFailure):
		return "the AI service is temporarily unavailable, please try again later"
	default:
		return "failed to generate summary"
	}
}

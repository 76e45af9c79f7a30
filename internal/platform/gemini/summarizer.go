package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/phrazzld/taskpilot-api/internal/config"
	"github.com/phrazzld/taskpilot-api/internal/platform/logger"
	"github.com/phrazzld/taskpilot-api/internal/summary"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 2
	defaultRetryDelay = time.Second
)

// contentGenerator is the subset of genai.Models used here.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Summarizer implements summary.Summarizer using the Gemini API.
type Summarizer struct {
	logger     *slog.Logger
	models     contentGenerator
	model      string
	prompt     *summary.Prompt
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
}

// Ensure Summarizer implements summary.Summarizer interface
var _ summary.Summarizer = (*Summarizer)(nil)

// NewSummarizer creates a Summarizer from the LLM configuration. It returns
// an error wrapping summary.ErrNotConfigured when no API key is set.
func NewSummarizer(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Summarizer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if err := validateConfig(ctx, logger, cfg); err != nil {
		return nil, err
	}

	prompt, err := summary.LoadPrompt(cfg.PromptTemplatePath)
	if err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", summary.ErrInvalidConfig, err)
	}

	return newSummarizer(logger, client.Models, prompt, cfg), nil
}

func newSummarizer(
	logger *slog.Logger,
	models contentGenerator,
	prompt *summary.Prompt,
	cfg config.LLMConfig,
) *Summarizer {
	s := &Summarizer{
		logger:     logger.With(slog.String("component", "gemini_summarizer")),
		models:     models,
		model:      cfg.ModelName,
		prompt:     prompt,
		timeout:    time.Duration(cfg.TimeoutSeconds) * time.Second,
		maxRetries: cfg.MaxRetries,
		retryDelay: time.Duration(cfg.RetryDelaySeconds) * time.Second,
	}
	if s.timeout <= 0 {
		s.timeout = defaultTimeout
	}
	if s.maxRetries < 0 {
		s.maxRetries = defaultMaxRetries
	}
	if cfg.RetryDelaySeconds < 0 {
		s.retryDelay = defaultRetryDelay
	}
	return s
}

// Summarize implements summary.Summarizer.Summarize
func (s *Summarizer) Summarize(ctx context.Context, tasks []summary.TaskDigest) (string, error) {
	prompt, err := s.prompt.Render(tasks)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	logger.FromContextOrDefault(ctx, s.logger).DebugContext(ctx, "Summarizing tasks",
		"task_count", len(tasks),
		"prompt_length", len(prompt))

	return s.callWithRetry(ctx, prompt)
}

// callWithRetry calls the model, retrying transient failures with
// exponential backoff: delay = base * 2^attempt * (0.5 + rand(0, 0.5)).
func (s *Summarizer) callWithRetry(ctx context.Context, prompt string) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	// Per call: *rand.Rand is not safe for concurrent use.
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1
		log.DebugContext(ctx, "Making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", s.maxRetries+1)

		resp, err := s.models.GenerateContent(ctx, s.model, genai.Text(prompt), nil)
		var text string
		if err == nil {
			text, err = extractText(resp)
		}
		if err == nil {
			log.InfoContext(ctx, "Gemini API call successful", "attempt", attemptNum)
			return text, nil
		}

		if !isTransient(err) {
			log.WarnContext(ctx, "Permanent error occurred, not retrying",
				"attempt", attemptNum,
				"error", err)
			return "", classify(err)
		}

		if attempt >= s.maxRetries {
			log.WarnContext(ctx, "Maximum retry attempts reached",
				"max_retries", s.maxRetries,
				"error", err)
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				summary.ErrTransientFailure, s.maxRetries, err)
		}

		backoff := float64(s.retryDelay) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + rng.Float64()*0.5))
		log.InfoContext(ctx, "Retrying after delay",
			"attempt", attemptNum,
			"delay", delay,
			"error", err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", summary.ErrTransientFailure, ctx.Err())
		}
	}
}

// extractText joins the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", summary.ErrInvalidResponse)
	}
	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: finish reason %s", summary.ErrContentBlocked, candidate.FinishReason)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", summary.ErrInvalidResponse)
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("%w: empty text in response", summary.ErrInvalidResponse)
	}
	return text, nil
}

// isTransient reports whether a retry might succeed: rate limiting, server
// errors and network failures. Timeouts of the overall call are not retried.
func isTransient(err error) bool {
	if errors.Is(err, summary.ErrInvalidResponse) || errors.Is(err, summary.ErrContentBlocked) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	return true
}

// classify wraps a permanent failure in the matching summary error.
func classify(err error) error {
	switch {
	case errors.Is(err, summary.ErrInvalidResponse), errors.Is(err, summary.ErrContentBlocked):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", summary.ErrTransientFailure, err)
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: model request rejected with status %d", summary.ErrInvalidResponse, apiErr.Code)
	}
	return fmt.Errorf("%w: %v", summary.ErrInvalidResponse, err)
}

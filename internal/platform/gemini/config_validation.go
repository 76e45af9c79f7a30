package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskpilot-api/internal/config"
	"github.com/phrazzld/taskpilot-api/internal/summary"
)

// validateConfig checks the settings a summarizer cannot run without and
// warns about those that fall back to defaults.
func validateConfig(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) error {
	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("%w: gemini API key is empty", summary.ErrNotConfigured)
	}
	if cfg.ModelName == "" {
		return fmt.Errorf("%w: model name cannot be empty", summary.ErrInvalidConfig)
	}

	if cfg.MaxRetries < 0 {
		logger.WarnContext(ctx, "Invalid MaxRetries value",
			"value", cfg.MaxRetries,
			"action", "using default value")
	}
	if cfg.RetryDelaySeconds < 0 {
		logger.WarnContext(ctx, "Invalid RetryDelaySeconds value",
			"value", cfg.RetryDelaySeconds,
			"action", "using default value")
	}
	return nil
}

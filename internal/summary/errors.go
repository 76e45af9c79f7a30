package summary

import "errors"

// Common errors returned by summarizers
var (
	// ErrNotConfigured is returned when no model credentials are configured.
	ErrNotConfigured = errors.New("task summarization is not configured")

	// ErrNoTasks is returned when there is nothing to summarize.
	ErrNoTasks = errors.New("no tasks to summarize")

	// ErrInvalidResponse is returned when the model response is empty or malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the model blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during summarization")

	// ErrInvalidConfig is returned when the summarizer configuration is invalid
	ErrInvalidConfig = errors.New("invalid summarizer configuration")
)

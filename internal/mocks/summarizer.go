package mocks

import (
	"context"

	"github.com/phrazzld/taskpilot-api/internal/summary"
)

// MockSummarizer implements summary.Summarizer for testing
type MockSummarizer struct {
	SummarizeFn func(ctx context.Context, tasks []summary.TaskDigest) (string, error)

	// Defaults used when SummarizeFn is nil
	Summary string
	Err     error

	// LastTasks holds the input of the most recent call
	LastTasks []summary.TaskDigest
	Calls     int
}

var _ summary.Summarizer = (*MockSummarizer)(nil)

// Summarize implements summary.Summarizer
func (m *MockSummarizer) Summarize(ctx context.Context, tasks []summary.TaskDigest) (string, error) {
	m.Calls++
	m.LastTasks = tasks
	if m.SummarizeFn != nil {
		return m.SummarizeFn(ctx, tasks)
	}
	return m.Summary, m.Err
}

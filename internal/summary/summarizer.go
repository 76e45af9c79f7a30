package summary

import "context"

// TaskDigest is the view of a task handed to a summarizer. DueDate is free
// text so callers may pass dates the task store never saw.
type TaskDigest struct {
	Title       string `json:"title"       validate:"required,max=200"`
	Description string `json:"description" validate:"max=10000"`
	Status      string `json:"status,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
}

// Summarizer produces a prose summary of a list of tasks.
type Summarizer interface {
	// Summarize returns the generated summary. An empty task list yields
	// ErrNoTasks without contacting the model.
	Summarize(ctx context.Context, tasks []TaskDigest) (string, error)
}

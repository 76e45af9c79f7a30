package summary_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskpilot-api/internal/summary"
)

func TestDefaultPromptRender(t *testing.T) {
	t.Parallel()

	out, err := summary.DefaultPrompt().Render([]summary.TaskDigest{
		{Title: "Write report", Description: "Q3 numbers", Status: "in_progress", DueDate: "2025-07-01"},
		{Title: "Call bank", Description: "<mortgage & rates>"},
	})
	require.NoError(t, err)

	assert.Contains(t, out, "1. Write report: Q3 numbers [Status: in_progress] (Due: 2025-07-01)")
	assert.Contains(t, out, "2. Call bank: <mortgage & rates> [Status: todo] (No due date)")
	assert.Contains(t, out, "suggest timelines")
}

func TestRenderEmpty(t *testing.T) {
	t.Parallel()
	_, err := summary.DefaultPrompt().Render(nil)
	assert.ErrorIs(t, err, summary.ErrNoTasks)
}

func TestLoadPrompt(t *testing.T) {
	t.Parallel()

	p, err := summary.LoadPrompt("")
	require.NoError(t, err)
	assert.NotNil(t, p)

	path := filepath.Join(t.TempDir(), "prompt.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("{{range .Tasks}}- {{.Title}}\n{{end}}"), 0o600))
	p, err = summary.LoadPrompt(path)
	require.NoError(t, err)
	out, err := p.Render([]summary.TaskDigest{{Title: "a"}, {Title: "b"}})
	require.NoError(t, err)
	assert.Equal(t, "- a\n- b\n", out)

	_, err = summary.LoadPrompt(filepath.Join(t.TempDir(), "missing.tmpl"))
	assert.ErrorIs(t, err, summary.ErrInvalidConfig)

	bad := filepath.Join(t.TempDir(), "bad.tmpl")
	require.NoError(t, os.WriteFile(bad, []byte("{{range"), 0o600))
	_, err = summary.LoadPrompt(bad)
	assert.ErrorIs(t, err, summary.ErrInvalidConfig)
}

package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskPatchJSONPresence(t *testing.T) {
	var p TaskPatch
	require.NoError(t, json.Unmarshal([]byte(`{"status":"completed","description":null}`), &p))

	assert.True(t, p.Status.Set)
	assert.Equal(t, StatusCompleted, p.Status.Value)
	assert.True(t, p.Description.Set)
	assert.True(t, p.Description.Null)
	assert.False(t, p.Title.Set)
	assert.False(t, p.Priority.Set)
	assert.False(t, p.DueDate.Set)
	assert.False(t, p.IsEmpty())
}

func TestTaskPatchEmpty(t *testing.T) {
	var p TaskPatch
	require.NoError(t, json.Unmarshal([]byte(`{}`), &p))
	assert.True(t, p.IsEmpty())
}

func TestTaskPatchDueDate(t *testing.T) {
	var p TaskPatch
	require.NoError(t, json.Unmarshal([]byte(`{"due_date":"2025-03-01T09:00:00Z"}`), &p))
	require.True(t, p.DueDate.HasValue())
	assert.True(t, p.DueDate.Value.Equal(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)))
}

func TestTaskPatchValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"status only", `{"status":"completed"}`, false},
		{"clear description", `{"description":null}`, false},
		{"clear due date", `{"due_date":null}`, false},
		{"null title", `{"title":null}`, true},
		{"null status", `{"status":null}`, true},
		{"empty title", `{"title":""}`, true},
		{"unknown status", `{"status":"done"}`, true},
		{"empty priority", `{"priority":""}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p TaskPatch
			require.NoError(t, json.Unmarshal([]byte(tt.body), &p))
			err := p.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTaskPatchApplyLeavesUnsetFields(t *testing.T) {
	desc := "quarterly numbers"
	due := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	task := Task{
		Title:       "Write report",
		Description: &desc,
		Status:      StatusTodo,
		Priority:    "high",
		DueDate:     &due,
	}

	StatusPatch(StatusCompleted).Apply(&task)

	assert.Equal(t, StatusCompleted, task.Status)
	assert.Equal(t, "Write report", task.Title)
	require.NotNil(t, task.Description)
	assert.Equal(t, "quarterly numbers", *task.Description)
	assert.Equal(t, "high", task.Priority)
	assert.Equal(t, &due, task.DueDate)

	TaskPatch{Description: Null[string](), DueDate: Null[time.Time](), IsArchived: Value(true)}.Apply(&task)
	assert.Nil(t, task.Description)
	assert.Nil(t, task.DueDate)
	assert.True(t, task.IsArchived)
}

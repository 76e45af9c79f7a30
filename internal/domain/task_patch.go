package domain

import (
	"fmt"
	"time"
)

// TaskPatch is a partial update. Only fields that are Set are written.
// Description and DueDate may be cleared with null; other fields may not.
type TaskPatch struct {
	Title       Field[string]     `json:"title"`
	Description Field[string]     `json:"description"`
	Status      Field[TaskStatus] `json:"status"`
	DueDate     Field[time.Time]  `json:"due_date"`
	Priority    Field[string]     `json:"priority"`
	IsArchived  Field[bool]       `json:"is_archived"`
}

// StatusPatch returns a patch that only changes the status.
func StatusPatch(status TaskStatus) TaskPatch {
	return TaskPatch{Status: Value(status)}
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Status.Set &&
		!p.DueDate.Set && !p.Priority.Set && !p.IsArchived.Set
}

// Validate checks every field present in the patch.
func (p TaskPatch) Validate() error {
	nonNullable := []struct {
		name string
		null bool
	}{
		{"title", p.Title.Null},
		{"status", p.Status.Null},
		{"priority", p.Priority.Null},
		{"is_archived", p.IsArchived.Null},
	}
	for _, f := range nonNullable {
		if f.null {
			return NewValidationError(f.name, "field cannot be null")
		}
	}

	if p.Title.HasValue() {
		if err := ValidateTitle(p.Title.Value); err != nil {
			return err
		}
	}
	if p.Status.HasValue() && !p.Status.Value.Valid() {
		return NewValidationError("status", fmt.Sprintf("invalid status %q", p.Status.Value))
	}
	if p.Priority.HasValue() {
		if err := ValidatePriority(p.Priority.Value); err != nil {
			return err
		}
	}
	return nil
}

// Apply writes the patch onto t in memory.
func (p TaskPatch) Apply(t *Task) {
	if p.Title.HasValue() {
		t.Title = p.Title.Value
	}
	if p.Description.Set {
		if p.Description.Null {
			t.Description = nil
		} else {
			d := p.Description.Value
			t.Description = &d
		}
	}
	if p.Status.HasValue() {
		t.Status = p.Status.Value
	}
	if p.DueDate.Set {
		if p.DueDate.Null {
			t.DueDate = nil
		} else {
			d := p.DueDate.Value
			t.DueDate = &d
		}
	}
	if p.Priority.HasValue() {
		t.Priority = p.Priority.Value
	}
	if p.IsArchived.HasValue() {
		t.IsArchived = p.IsArchived.Value
	}
}

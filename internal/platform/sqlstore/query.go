package sqlstore

import (
	"fmt"
	"strings"
	"time"

	"github.com/phrazzld/taskpilot-api/internal/domain"
)

// sqlBuilder accumulates a statement and its bind arguments, emitting
// placeholders in the connection's dialect.
type sqlBuilder struct {
	dialect Dialect
	sb      strings.Builder
	args    []any
}

func newBuilder(d Dialect) *sqlBuilder {
	return &sqlBuilder{dialect: d}
}

func (b *sqlBuilder) write(parts ...string) *sqlBuilder {
	for _, p := range parts {
		b.sb.WriteString(p)
	}
	return b
}

// arg records v and returns its placeholder.
func (b *sqlBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return b.dialect.placeholder(len(b.args))
}

func (b *sqlBuilder) String() string {
	return b.sb.String()
}

// whereTasks writes the WHERE clause for owner isolation plus filter.
func (b *sqlBuilder) whereTasks(ownerID int64, f domain.TaskFilter) {
	conds := []string{"owner_id = " + b.arg(ownerID)}

	if f.Status != nil {
		conds = append(conds, "status = "+b.arg(string(*f.Status)))
	}
	if f.ExcludeStatus != nil {
		conds = append(conds, "status <> "+b.arg(string(*f.ExcludeStatus)))
	}
	if f.Priority != nil {
		conds = append(conds, "priority = "+b.arg(*f.Priority))
	}
	if f.IsArchived != nil {
		conds = append(conds, "is_archived = "+b.arg(*f.IsArchived))
	}
	if f.DueFrom != nil {
		conds = append(conds, "due_date >= "+b.arg(f.DueFrom.UTC()))
	}
	if f.DueBefore != nil {
		conds = append(conds, "due_date < "+b.arg(f.DueBefore.UTC()))
	}
	if f.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(f.Search)) + "%"
		conds = append(conds, fmt.Sprintf(
			`(LOWER(title) LIKE %s ESCAPE '\' OR LOWER(COALESCE(description, '')) LIKE %s ESCAPE '\')`,
			b.arg(pattern), b.arg(pattern)))
	}

	b.write(" WHERE ", strings.Join(conds, " AND "))
}

// orderTasks writes ORDER BY for a recognized column. Unrecognized columns
// produce no ordering at all.
func (b *sqlBuilder) orderTasks(sortBy string, order domain.SortOrder) {
	if !domain.IsSortableTaskField(sortBy) {
		return
	}
	dir := "DESC"
	if order == domain.SortAsc {
		dir = "ASC"
	}
	b.write(" ORDER BY ", sortBy, " ", dir)
	if sortBy != "id" {
		// id breaks ties so pages do not overlap
		b.write(", id ", dir)
	}
}

func (b *sqlBuilder) paginate(size, offset int) {
	if size <= 0 {
		return
	}
	b.write(" LIMIT ", b.arg(size), " OFFSET ", b.arg(offset))
}

// taskAssignments returns the SET expressions for the fields present in patch.
func (b *sqlBuilder) taskAssignments(p domain.TaskPatch) []string {
	var sets []string
	if p.Title.HasValue() {
		sets = append(sets, "title = "+b.arg(p.Title.Value))
	}
	if p.Description.Set {
		var v any
		if !p.Description.Null {
			v = p.Description.Value
		}
		sets = append(sets, "description = "+b.arg(v))
	}
	if p.Status.HasValue() {
		sets = append(sets, "status = "+b.arg(string(p.Status.Value)))
	}
	if p.DueDate.Set {
		var v any
		if !p.DueDate.Null {
			v = p.DueDate.Value.UTC()
		}
		sets = append(sets, "due_date = "+b.arg(v))
	}
	if p.Priority.HasValue() {
		sets = append(sets, "priority = "+b.arg(p.Priority.Value))
	}
	if p.IsArchived.HasValue() {
		sets = append(sets, "is_archived = "+b.arg(p.IsArchived.Value))
	}
	return sets
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

package dbx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// IsUniqueViolation reports whether err carries a PostgreSQL unique
// constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Assignments collects "column = $n" fragments for a dynamic UPDATE.
type Assignments struct {
	cols []string
	args []any
}

// Add appends column = value.
func (a *Assignments) Add(column string, value any) {
	a.args = append(a.args, value)
	a.cols = append(a.cols, fmt.Sprintf("%s = $%d", column, len(a.args)))
}

// Len returns the number of assignments.
func (a *Assignments) Len() int { return len(a.cols) }

// SQL renders the SET list.
func (a *Assignments) SQL() string { return strings.Join(a.cols, ", ") }

// Placeholder returns the placeholder for the i-th argument appended after
// the assignment values (i starts at 1).
func (a *Assignments) Placeholder(i int) string {
	return fmt.Sprintf("$%d", len(a.args)+i)
}

// Args returns the assignment values followed by extra.
func (a *Assignments) Args(extra ...any) []any {
	out := make([]any, 0, len(a.args)+len(extra))
	out = append(out, a.args...)
	return append(out, extra...)
}

// Package pgrepos implements the domain repositories on Postgres. Records
// are stored as JSONB documents beside the few columns queries filter on;
// the document is the source of truth.
package pgrepos

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/elearn360/backend/core"
)

// NewDB wraps the raw connection for sqlx use.
func NewDB(db *sql.DB) *sqlx.DB {
	return sqlx.NewDb(db, "postgres")
}

// execer is what repository queries run on: the repository's own *sqlx.DB,
// or a *sqlx.Tx passed by the service through the exec override.
type execer interface {
	sqlx.ExtContext
}

var orderFieldRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// docOrderBy renders an ORDER BY over document fields. Unknown or unsafe
// field names are dropped rather than interpolated.
func docOrderBy(ordering []core.DBOrdering) string {
	clauses := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		if !orderFieldRegex.MatchString(ord.Field) {
			continue
		}
		direction := "DESC"
		if ord.Ascending {
			direction = "ASC"
		}
		clauses = append(clauses, fmt.Sprintf("doc->>'%s' %s", ord.Field, direction))
	}
	if len(clauses) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(clauses, ", ")
}

// where joins conditions with AND, rendering nothing for an empty set.
func where(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

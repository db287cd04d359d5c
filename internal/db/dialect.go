package db

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect names a supported SQL backend.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

func (d Dialect) Valid() bool {
	return d == SQLite || d == Postgres
}

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	if d == Postgres {
		return "pgx"
	}
	return "sqlite"
}

// Rebind rewrites ? placeholders into $n for PostgreSQL. Queries in this
// repository never contain a literal question mark.
func (d Dialect) Rebind(query string) string {
	if d != Postgres || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// JSONText returns an expression extracting the text value at path from a JSON
// column, or NULL when the path is absent.
func (d Dialect) JSONText(column string, path ...string) string {
	if d == Postgres {
		if len(path) == 0 {
			return column + "::text"
		}
		expr := column
		for i, p := range path {
			op := "->"
			if i == len(path)-1 {
				op = "->>"
			}
			expr += fmt.Sprintf("%s'%s'", op, p)
		}
		return "(" + expr + ")"
	}

	return fmt.Sprintf("json_extract(%s, '$.%s')", column, strings.Join(path, "."))
}

// ForUpdate is the row-lock suffix for a SELECT inside a transaction. SQLite
// locks the whole database on write and has no such clause.
func (d Dialect) ForUpdate() string {
	if d == Postgres {
		return " FOR UPDATE"
	}
	return ""
}

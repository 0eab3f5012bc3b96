package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Dialect identifies the SQL flavor behind the shared *sql.DB handle.
// Repositories write queries with '?' placeholders; Rebind converts them
// for drivers that use numbered placeholders.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

// DialectFromDriver maps a database/sql driver name to its Dialect.
func DialectFromDriver(driver string) (Dialect, error) {
	switch driver {
	case "sqlite3":
		return SQLite, nil
	case "postgres":
		return Postgres, nil
	default:
		return 0, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func (d Dialect) String() string {
	switch d {
	case SQLite:
		return "sqlite3"
	case Postgres:
		return "postgres"
	default:
		return fmt.Sprintf("dialect(%d)", int(d))
	}
}

// Rebind rewrites '?' placeholders to the dialect's native form.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// IsUniqueViolation reports whether err is a unique-constraint violation
// (duplicate key) for this dialect.
func (d Dialect) IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	switch d {
	case SQLite:
		var sqliteErr sqlite3.Error
		return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	case Postgres:
		// Error class 23505 = unique_violation.
		var pqErr *pq.Error
		return errors.As(err, &pqErr) && pqErr.Code == "23505"
	default:
		return false
	}
}

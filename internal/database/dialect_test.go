package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func TestDialectFromDriver(t *testing.T) {
	d, err := DialectFromDriver("sqlite3")
	require.NoError(t, err)
	require.Equal(t, SQLite, d)

	d, err = DialectFromDriver("postgres")
	require.NoError(t, err)
	require.Equal(t, Postgres, d)

	_, err = DialectFromDriver("oracle")
	require.Error(t, err)
}

func TestRebind(t *testing.T) {
	query := `INSERT INTO config (key, value) VALUES (?, ?)`

	require.Equal(t, query, SQLite.Rebind(query))
	require.Equal(t, `INSERT INTO config (key, value) VALUES ($1, $2)`, Postgres.Rebind(query))

	// Placeholders past $9 keep counting.
	many := `VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	require.Contains(t, Postgres.Rebind(many), "$11")
}

func TestIsUniqueViolation(t *testing.T) {
	uniqueErr := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}
	notNullErr := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintNotNull}

	require.True(t, SQLite.IsUniqueViolation(uniqueErr))
	require.False(t, SQLite.IsUniqueViolation(notNullErr))
	// Wrapped driver errors still match.
	require.True(t, SQLite.IsUniqueViolation(fmt.Errorf("insert user: %w", uniqueErr)))

	dupErr := &pq.Error{Code: "23505"}
	require.True(t, Postgres.IsUniqueViolation(dupErr))
	require.True(t, Postgres.IsUniqueViolation(fmt.Errorf("insert user: %w", dupErr)))
	require.False(t, Postgres.IsUniqueViolation(&pq.Error{Code: "42P01"}))

	// Untyped errors never count as unique violations.
	require.False(t, SQLite.IsUniqueViolation(errors.New("UNIQUE constraint failed: users.email")))
	require.False(t, Postgres.IsUniqueViolation(errors.New("duplicate key value")))

	require.False(t, SQLite.IsUniqueViolation(nil))
	require.False(t, Postgres.IsUniqueViolation(nil))
}

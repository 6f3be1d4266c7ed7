// Package db holds the owner-scoped repositories over the task storage.
package db

import (
	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Connect opens and pings a database connection.
func Connect(driver, dsn string) (*sqlx.DB, error) {
	conn, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Scope is the credential attached to every repository call. Repositories
// have no unscoped read or write path: each query carries the owner
// predicate, so "not found" and "not owned" are indistinguishable.
type Scope struct {
	UserID uuid.UUID
}

// psql builds queries with $N placeholders; the sqlite test driver binds
// them positionally as well.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

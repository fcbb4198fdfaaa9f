// Package repo holds the Postgres-backed stores. Lookups that find nothing
// return pgx.ErrNoRows.
package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrTaskNotFound is returned by writes that reference a missing task.
	ErrTaskNotFound = errors.New("task not found")
	// ErrUserNotFound is returned by writes that reference a missing user.
	ErrUserNotFound = errors.New("user not found")
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

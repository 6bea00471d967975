package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the query surface shared by pgxpool.Pool, pgx.Tx and the pgxmock pool.
// Repositories are constructed over it so the same repository code runs inside
// a transaction when a check-then-act sequence needs one.
type DB interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Pool additionally opens transactions. Services hold a Pool; repositories
// only ever see a DB.
type Pool interface {
	DB
	Begin(ctx context.Context) (pgx.Tx, error)
}

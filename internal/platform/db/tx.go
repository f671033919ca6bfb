package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

// ConnKey carries a transaction-bound connection through a request context.
// Repositories prefer it over their pool, so multi-statement operations can
// run atomically without the repository knowing about the transaction.
const ConnKey contextKey = "db_conn"

// Queryable is the subset of pgx operations shared by pools, connections and
// transactions.
type Queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// ConnFromContext retrieves a transaction-bound connection, if any.
func ConnFromContext(ctx context.Context) Queryable {
	q, _ := ctx.Value(ConnKey).(Queryable)
	return q
}

// WithTx runs fn inside a transaction. The transaction is injected into the
// context passed to fn, so any repository call made with that context joins
// it. Rollback on error, commit otherwise.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	txCtx := context.WithValue(ctx, ConnKey, Queryable(tx))
	if err := fn(txCtx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

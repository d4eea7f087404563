package lending

import (
	"context"
	"time"

	"libraryapi/internal/inventory"
	"libraryapi/internal/loan"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxTxRunner wraps each unit of work in a Postgres transaction and rebuilds
// the repositories over it, so every store call inside fn shares the same tx.
type PgxTxRunner struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewPgxTxRunner(pool *pgxpool.Pool, timeout time.Duration) *PgxTxRunner {
	return &PgxTxRunner{pool: pool, timeout: timeout}
}

func (r *PgxTxRunner) InTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		s := Stores{
			Copies: inventory.NewPostgresRepo(tx, r.timeout),
			Loans:  loan.NewPostgresLedger(tx, r.timeout),
		}
		return fn(ctx, s)
	})
}

package loan

import (
	"context"
	"errors"
	"time"

	"libraryapi/internal/audit"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgx behavior the ledger needs. Both *pgxpool.Pool and
// pgx.Tx satisfy it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresLedger struct {
	db      DB
	timeout time.Duration
}

func NewPostgresLedger(db DB, timeout time.Duration) *PostgresLedger {
	return &PostgresLedger{db: db, timeout: timeout}
}

func (r *PostgresLedger) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresLedger) RecordBorrow(ctx context.Context, copyID, borrowerID string, at time.Time) (Loan, error) {
	const query = `
		INSERT INTO loans (id, copy_id, borrower_id, borrowed_at, created_by, updated_by)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $4)
		RETURNING id, created_at, updated_at
	`
	l := Loan{CopyID: copyID, BorrowerID: borrowerID, BorrowedAt: at}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	actor := audit.ActorFrom(ctx)
	err := r.db.QueryRow(timeoutCtx, query, copyID, borrowerID, at, actor).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return Loan{}, err
	}
	return l, nil
}

func (r *PostgresLedger) FindOpenLoan(ctx context.Context, copyID string) (Loan, error) {
	const query = `
		SELECT id, copy_id, borrower_id, borrowed_at, returned_at, created_at, updated_at
		FROM loans
		WHERE copy_id = $1 AND returned_at IS NULL
		LIMIT 1
	`
	var l Loan
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, copyID).Scan(
		&l.ID, &l.CopyID, &l.BorrowerID, &l.BorrowedAt, &l.ReturnedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Loan{}, ErrNoOpenLoan
		}
		return Loan{}, err
	}
	return l, nil
}

// RecordReturn sets returned_at conditionally on it still being unset, so a
// replayed return cannot overwrite the original timestamp.
func (r *PostgresLedger) RecordReturn(ctx context.Context, loanID string, at time.Time) (Loan, error) {
	const query = `
		UPDATE loans
		SET returned_at = $2, updated_at = now(), updated_by = $3
		WHERE id = $1 AND returned_at IS NULL
		RETURNING id, copy_id, borrower_id, borrowed_at, returned_at, created_at, updated_at
	`
	var l Loan
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	actor := audit.ActorFrom(ctx)
	err := r.db.QueryRow(timeoutCtx, query, loanID, at, actor).Scan(
		&l.ID, &l.CopyID, &l.BorrowerID, &l.BorrowedAt, &l.ReturnedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err == nil {
		return l, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Loan{}, err
	}

	// No row updated: either the loan does not exist or it was already
	// returned.
	const exists = `SELECT EXISTS (SELECT 1 FROM loans WHERE id = $1)`
	var found bool
	existsCtx, cancelExists := r.withTimeout(ctx)
	defer cancelExists()
	if err := r.db.QueryRow(existsCtx, exists, loanID).Scan(&found); err != nil {
		return Loan{}, err
	}
	if !found {
		return Loan{}, ErrNotFound
	}
	return Loan{}, ErrAlreadyReturned
}

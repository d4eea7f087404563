package loan

import (
	"context"
	"time"
)

type Ledger interface {
	// RecordBorrow appends a new open loan.
	RecordBorrow(ctx context.Context, copyID, borrowerID string, at time.Time) (Loan, error)
	// FindOpenLoan returns the loan for this copy with no returned_at set.
	// At most one can exist; persistence enforces that with a uniqueness
	// constraint on open loans per copy.
	FindOpenLoan(ctx context.Context, copyID string) (Loan, error)
	// RecordReturn sets returned_at on the identified loan. It fails with
	// ErrAlreadyReturned if returned_at is already set.
	RecordReturn(ctx context.Context, loanID string, at time.Time) (Loan, error)
}

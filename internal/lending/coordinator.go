package lending

import (
	"context"
	"errors"
	"log"
	"time"

	"libraryapi/internal/borrower"
	"libraryapi/internal/inventory"
	"libraryapi/internal/loan"
)

// Coordinator drives the borrow/return state machine. The inventory flag is
// the source of truth for whether a copy is out; the ledger is the source of
// truth for who holds it and since when. Observed disagreement between the
// two is surfaced as a ConsistencyError.
type Coordinator struct {
	borrowers borrower.Repository
	copies    inventory.Repository
	tx        TxRunner
	now       func() time.Time
}

func NewCoordinator(borrowers borrower.Repository, copies inventory.Repository, tx TxRunner) *Coordinator {
	return &Coordinator{
		borrowers: borrowers,
		copies:    copies,
		tx:        tx,
		now:       time.Now,
	}
}

// Borrow lends a copy to a borrower. At most one of any number of concurrent
// Borrow calls for the same copy succeeds; the rest fail with
// ErrBookAlreadyBorrowed.
func (c *Coordinator) Borrow(ctx context.Context, copyID, borrowerID string) (LoanResult, error) {
	if err := c.resolveBorrower(ctx, borrowerID); err != nil {
		return LoanResult{}, err
	}

	var lent loan.Loan
	err := c.tx.InTx(ctx, func(ctx context.Context, s Stores) error {
		if _, err := s.Copies.GetCopy(ctx, copyID); err != nil {
			if errors.Is(err, inventory.ErrNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		// Atomic flip; only the caller that wins the false->true
		// transition gets to append a loan.
		ok, err := s.Copies.TryMarkBorrowed(ctx, copyID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrBookAlreadyBorrowed
		}

		lent, err = s.Loans.RecordBorrow(ctx, copyID, borrowerID, c.now().UTC())
		return err
	})
	if err != nil {
		return LoanResult{}, err
	}

	return c.assembleResult(ctx, lent)
}

// Return closes the open loan on a copy. Only the borrower who holds the
// copy may return it.
func (c *Coordinator) Return(ctx context.Context, copyID, borrowerID string) (LoanResult, error) {
	if err := c.resolveBorrower(ctx, borrowerID); err != nil {
		return LoanResult{}, err
	}

	var closed loan.Loan
	err := c.tx.InTx(ctx, func(ctx context.Context, s Stores) error {
		if _, err := s.Copies.GetCopy(ctx, copyID); err != nil {
			if errors.Is(err, inventory.ErrNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		active, err := s.Loans.FindOpenLoan(ctx, copyID)
		if err != nil {
			if errors.Is(err, loan.ErrNoOpenLoan) {
				return ErrActiveLoanNotFound
			}
			return err
		}
		if active.BorrowerID != borrowerID {
			return ErrWrongBorrower
		}

		closed, err = s.Loans.RecordReturn(ctx, active.ID, c.now().UTC())
		if err != nil {
			if errors.Is(err, loan.ErrAlreadyReturned) {
				// A concurrent return closed the loan between FindOpenLoan
				// and the conditional write. The loser sees the same
				// outcome as arriving after the winner.
				return ErrActiveLoanNotFound
			}
			return err
		}

		ok, err := s.Copies.TryMarkReturned(ctx, copyID)
		if err != nil {
			return err
		}
		if !ok {
			// Ledger had an open loan but the copy was not marked
			// borrowed. Abort the transaction rather than paper over it.
			return &ConsistencyError{CopyID: copyID, Reason: "copy not marked borrowed despite open loan"}
		}
		return nil
	})
	if err != nil {
		var ce *ConsistencyError
		if errors.As(err, &ce) {
			log.Printf("lending consistency fault: copy_id=%s reason=%q", ce.CopyID, ce.Reason)
		}
		return LoanResult{}, err
	}

	return c.assembleResult(ctx, closed)
}

func (c *Coordinator) resolveBorrower(ctx context.Context, borrowerID string) error {
	_, err := c.borrowers.GetByID(ctx, borrowerID)
	if err != nil {
		if errors.Is(err, borrower.ErrNotFound) {
			return ErrBorrowerNotFound
		}
		return err
	}
	return nil
}

func (c *Coordinator) assembleResult(ctx context.Context, l loan.Loan) (LoanResult, error) {
	cw, err := c.copies.FindCopyWithCatalog(ctx, l.CopyID)
	if err != nil {
		return LoanResult{}, err
	}
	return LoanResult{Loan: l, Copy: cw}, nil
}

// Package lending orchestrates borrow and return as atomic state transitions
// across the copy inventory and the loan ledger. A copy cycles between two
// states: available (no open loan) and borrowed (exactly one open loan).
package lending

import (
	"errors"
	"fmt"

	"libraryapi/internal/inventory"
	"libraryapi/internal/loan"
)

var (
	// ErrBorrowerNotFound is returned when the requesting borrower does not
	// exist.
	ErrBorrowerNotFound = errors.New("borrower not found")
	// ErrBookNotFound is returned when the requested copy does not exist.
	ErrBookNotFound = errors.New("book copy not found")
	// ErrBookAlreadyBorrowed is returned when the conditional borrow
	// transition loses: the copy was already out when the write ran. This is
	// the authoritative conflict check; any earlier read of the borrowed
	// flag is advisory only.
	ErrBookAlreadyBorrowed = errors.New("book copy is already borrowed")
	// ErrActiveLoanNotFound is returned when a copy is returned but the
	// ledger has no open loan for it.
	ErrActiveLoanNotFound = errors.New("no active loan for book copy")
	// ErrWrongBorrower is returned when a copy is returned by someone other
	// than the borrower who holds it.
	ErrWrongBorrower = errors.New("book copy is held by a different borrower")
)

// ConsistencyError reports a disagreement between the inventory flag and the
// loan ledger. It is not caller-recoverable: the condition is a
// data-integrity fault that must be surfaced, never converted into a
// success.
type ConsistencyError struct {
	CopyID string
	Reason string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("inventory/ledger inconsistency for copy %s: %s", e.CopyID, e.Reason)
}

// LoanResult is the outcome of a successful borrow or return: the loan
// record plus the copy with catalog metadata resolved for the response.
type LoanResult struct {
	Loan loan.Loan                 `json:"loan"`
	Copy inventory.CopyWithCatalog `json:"copy"`
}

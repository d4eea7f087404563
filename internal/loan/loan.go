package loan

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a loan is not found.
	ErrNotFound = errors.New("loan not found")
	// ErrNoOpenLoan is returned when a copy has no loan with returned_at
	// unset.
	ErrNoOpenLoan = errors.New("no open loan for copy")
	// ErrAlreadyReturned is returned when a return is recorded against a
	// loan whose returned_at is already set. It defends against
	// double-return replays; returned_at is immutable once written.
	ErrAlreadyReturned = errors.New("loan already returned")
)

// Loan is one lending record: who borrowed which copy and when. ReturnedAt
// is nil while the loan is open; the copy is out exactly while one open loan
// references it.
type Loan struct {
	ID         string     `json:"id"`
	CopyID     string     `json:"copy_id"`
	BorrowerID string     `json:"borrower_id"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Open reports whether the loan has not been returned yet.
func (l Loan) Open() bool {
	return l.ReturnedAt == nil
}

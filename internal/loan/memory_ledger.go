package loan

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryLedger is a mutex-guarded in-memory Ledger.
type MemoryLedger struct {
	mu    sync.Mutex
	loans map[string]Loan
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{loans: make(map[string]Loan)}
}

func (r *MemoryLedger) RecordBorrow(_ context.Context, copyID, borrowerID string, at time.Time) (Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	l := Loan{
		ID:         uuid.New().String(),
		CopyID:     copyID,
		BorrowerID: borrowerID,
		BorrowedAt: at,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.loans[l.ID] = l
	return l, nil
}

func (r *MemoryLedger) FindOpenLoan(_ context.Context, copyID string) (Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.loans {
		if l.CopyID == copyID && l.Open() {
			return l, nil
		}
	}
	return Loan{}, ErrNoOpenLoan
}

func (r *MemoryLedger) RecordReturn(_ context.Context, loanID string, at time.Time) (Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.loans[loanID]
	if !ok {
		return Loan{}, ErrNotFound
	}
	if !l.Open() {
		return Loan{}, ErrAlreadyReturned
	}
	returned := at
	l.ReturnedAt = &returned
	l.UpdatedAt = time.Now()
	r.loans[loanID] = l
	return l, nil
}

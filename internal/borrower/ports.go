package borrower

import (
	"context"
)

type Repository interface {
	// Create persists a new borrower. Email uniqueness is enforced at the
	// store boundary; Create returns ErrEmailTaken on a duplicate.
	Create(ctx context.Context, b *Borrower) error
	GetByID(ctx context.Context, id string) (Borrower, error)
	GetByEmail(ctx context.Context, email string) (Borrower, error)
}

package lending

import (
	"context"

	"libraryapi/internal/inventory"
	"libraryapi/internal/loan"
)

// Stores bundles the repositories a lending transaction touches.
type Stores struct {
	Copies inventory.Repository
	Loans  loan.Ledger
}

// TxRunner runs a function inside one atomic unit of work, so the inventory
// flip and the ledger write commit or roll back together. Without that
// boundary, a failure between the two leaves a copy marked borrowed with no
// loan record.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}

// PassthroughTxRunner runs the function against fixed stores with no
// transactional boundary. Suited to the in-memory repositories, whose
// conditional updates are individually atomic already.
type PassthroughTxRunner struct {
	Stores Stores
}

func (r PassthroughTxRunner) InTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error {
	return fn(ctx, r.Stores)
}

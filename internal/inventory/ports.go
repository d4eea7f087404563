package inventory

import (
	"context"
)

type Repository interface {
	// CreateCopy persists a new copy bound to a catalog entry, with
	// borrowed=false and version=0.
	CreateCopy(ctx context.Context, c *Copy) error
	GetCopy(ctx context.Context, id string) (Copy, error)
	// FindCopyWithCatalog returns the copy with its catalog entry resolved.
	FindCopyWithCatalog(ctx context.Context, id string) (CopyWithCatalog, error)
	// TryMarkBorrowed atomically flips borrowed from false to true. It
	// reports whether the transition happened; the predicate check and the
	// write are one indivisible operation, never a read-then-write pair.
	TryMarkBorrowed(ctx context.Context, id string) (bool, error)
	// TryMarkReturned is the symmetric conditional flip from true to false.
	TryMarkReturned(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, q Query) ([]CopyWithCatalog, int, error)
}

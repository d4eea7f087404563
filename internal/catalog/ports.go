package catalog

import (
	"context"
)

type Repository interface {
	// GetByISBN looks up an entry by its normalized ISBN.
	GetByISBN(ctx context.Context, isbn string) (Entry, error)
	// CreateIfAbsent persists the entry unless one already exists for its
	// ISBN. It reports whether the entry was created; callers that lose a
	// concurrent first-registration race get created == false and must
	// re-read the winner's row.
	CreateIfAbsent(ctx context.Context, e *Entry) (bool, error)
}

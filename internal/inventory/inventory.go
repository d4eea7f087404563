package inventory

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a book copy is not found.
var ErrNotFound = errors.New("book copy not found")

// Copy is one physical lending unit of a catalog title. Borrowed is the
// single source of truth for "is this copy currently out"; Version is bumped
// on every state-changing write so stale read-modify-write callers can detect
// concurrent modification.
type Copy struct {
	ID        string    `json:"id"`
	ISBN      string    `json:"isbn"`
	Borrowed  bool      `json:"borrowed"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CopyWithCatalog is a copy joined with its catalog metadata, used for
// response assembly after a lending transition.
type CopyWithCatalog struct {
	Copy
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Query defines search and pagination for listing copies.
type Query struct {
	Search string
	Limit  int
	Offset int
}

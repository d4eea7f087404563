package borrower

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a borrower is not found.
	ErrNotFound = errors.New("borrower not found")
	// ErrEmailTaken is returned when registering with an email that is
	// already in use.
	ErrEmailTaken = errors.New("email already exists")
)

// Borrower is a library member who can hold loans.
type Borrower struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

package borrower

import (
	"context"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a new borrower with a unique email. The advisory lookup
// gives a friendly failure for the common case; the store's unique constraint
// catches concurrent registrations of the same email.
func (s *Service) Register(ctx context.Context, name, email string) (Borrower, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return Borrower{}, ErrEmailTaken
	}

	b := &Borrower{Name: name, Email: email}
	if err := s.repo.Create(ctx, b); err != nil {
		return Borrower{}, err
	}
	return *b, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Borrower, error) {
	return s.repo.GetByID(ctx, id)
}

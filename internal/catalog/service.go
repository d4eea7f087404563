package catalog

import (
	"context"
	"errors"
)

// Service deduplicates catalog entries by normalized ISBN.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RegisterCopyCatalog resolves the catalog entry a new copy should reference.
// The first registration of an ISBN creates the entry; later registrations
// must match its title and author exactly or fail with MetadataMismatchError.
func (s *Service) RegisterCopyCatalog(ctx context.Context, isbn, title, author string) (Entry, error) {
	norm := NormalizeISBN(isbn)

	existing, err := s.repo.GetByISBN(ctx, norm)
	switch {
	case err == nil:
		return matchEntry(existing, title, author)
	case !errors.Is(err, ErrNotFound):
		return Entry{}, err
	}

	e := &Entry{ISBN: norm, Title: title, Author: author}
	created, err := s.repo.CreateIfAbsent(ctx, e)
	if err != nil {
		return Entry{}, err
	}
	if created {
		return *e, nil
	}

	// Lost a concurrent first-registration race; validate against the
	// winner's row instead of our own input.
	existing, err = s.repo.GetByISBN(ctx, norm)
	if err != nil {
		return Entry{}, err
	}
	return matchEntry(existing, title, author)
}

// GetByISBN returns the entry for a (not necessarily normalized) ISBN.
func (s *Service) GetByISBN(ctx context.Context, isbn string) (Entry, error) {
	return s.repo.GetByISBN(ctx, NormalizeISBN(isbn))
}

func matchEntry(e Entry, title, author string) (Entry, error) {
	if e.Title != title || e.Author != author {
		return Entry{}, &MetadataMismatchError{ISBN: e.ISBN}
	}
	return e, nil
}

package inventory

import (
	"context"

	"libraryapi/internal/catalog"
)

// CatalogRegistry resolves the catalog entry a new copy references.
type CatalogRegistry interface {
	RegisterCopyCatalog(ctx context.Context, isbn, title, author string) (catalog.Entry, error)
}

// Service registers and lists physical copies. Catalog deduplication happens
// first, so a metadata mismatch never creates a copy.
type Service struct {
	repo     Repository
	registry CatalogRegistry
}

func NewService(repo Repository, registry CatalogRegistry) *Service {
	return &Service{repo: repo, registry: registry}
}

// RegisterCopy registers a new physical copy of the given ISBN. If the ISBN
// is new the catalog entry is created; otherwise the supplied title/author
// must match the existing entry exactly.
func (s *Service) RegisterCopy(ctx context.Context, isbn, title, author string) (CopyWithCatalog, error) {
	entry, err := s.registry.RegisterCopyCatalog(ctx, isbn, title, author)
	if err != nil {
		return CopyWithCatalog{}, err
	}

	c := &Copy{ISBN: entry.ISBN}
	if err := s.repo.CreateCopy(ctx, c); err != nil {
		return CopyWithCatalog{}, err
	}
	return CopyWithCatalog{Copy: *c, Title: entry.Title, Author: entry.Author}, nil
}

// Get returns a copy with its catalog metadata resolved.
func (s *Service) Get(ctx context.Context, id string) (CopyWithCatalog, error) {
	return s.repo.FindCopyWithCatalog(ctx, id)
}

// List returns copies matching the query, joined with catalog metadata.
func (s *Service) List(ctx context.Context, q Query) ([]CopyWithCatalog, int, error) {
	return s.repo.List(ctx, q)
}

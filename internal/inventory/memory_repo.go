package inventory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"libraryapi/internal/catalog"

	"github.com/google/uuid"
)

// MemoryRepo is a mutex-guarded in-memory Repository. The conditional
// transitions perform the predicate check and the write under one lock,
// matching the atomicity of the Postgres conditional UPDATE.
type MemoryRepo struct {
	mu      sync.Mutex
	copies  map[string]Copy
	catalog catalog.Repository
}

func NewMemoryRepo(cat catalog.Repository) *MemoryRepo {
	return &MemoryRepo{copies: make(map[string]Copy), catalog: cat}
}

func (r *MemoryRepo) CreateCopy(_ context.Context, c *Copy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	c.ID = uuid.New().String()
	c.Borrowed = false
	c.Version = 0
	c.CreatedAt = now
	c.UpdatedAt = now
	r.copies[c.ID] = *c
	return nil
}

func (r *MemoryRepo) GetCopy(_ context.Context, id string) (Copy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.copies[id]
	if !ok {
		return Copy{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) FindCopyWithCatalog(ctx context.Context, id string) (CopyWithCatalog, error) {
	c, err := r.GetCopy(ctx, id)
	if err != nil {
		return CopyWithCatalog{}, err
	}
	return r.join(ctx, c)
}

func (r *MemoryRepo) TryMarkBorrowed(_ context.Context, id string) (bool, error) {
	return r.flip(id, false, true)
}

func (r *MemoryRepo) TryMarkReturned(_ context.Context, id string) (bool, error) {
	return r.flip(id, true, false)
}

func (r *MemoryRepo) flip(id string, from, to bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.copies[id]
	if !ok || c.Borrowed != from {
		return false, nil
	}
	c.Borrowed = to
	c.Version++
	c.UpdatedAt = time.Now()
	r.copies[id] = c
	return true, nil
}

func (r *MemoryRepo) List(ctx context.Context, q Query) ([]CopyWithCatalog, int, error) {
	r.mu.Lock()
	ids := make([]string, 0, len(r.copies))
	for id := range r.copies {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	var all []CopyWithCatalog
	for _, id := range ids {
		cw, err := r.FindCopyWithCatalog(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) || errors.Is(err, catalog.ErrNotFound) {
				continue
			}
			return nil, 0, err
		}
		if q.Search != "" && !matchesSearch(cw, q.Search) {
			continue
		}
		all = append(all, cw)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Title != all[j].Title {
			return all[i].Title < all[j].Title
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	total := len(all)
	if q.Offset >= total {
		return nil, total, nil
	}
	end := q.Offset + q.Limit
	if q.Limit <= 0 || end > total {
		end = total
	}
	return all[q.Offset:end], total, nil
}

func (r *MemoryRepo) join(ctx context.Context, c Copy) (CopyWithCatalog, error) {
	e, err := r.catalog.GetByISBN(ctx, c.ISBN)
	if err != nil {
		return CopyWithCatalog{}, err
	}
	return CopyWithCatalog{Copy: c, Title: e.Title, Author: e.Author}, nil
}

func matchesSearch(cw CopyWithCatalog, search string) bool {
	s := strings.ToLower(search)
	return strings.Contains(strings.ToLower(cw.Title), s) ||
		strings.Contains(strings.ToLower(cw.Author), s) ||
		strings.Contains(strings.ToLower(cw.ISBN), s)
}

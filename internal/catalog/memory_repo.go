package catalog

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is a mutex-guarded in-memory Repository. The per-ISBN
// serialization the Postgres repo gets from its primary key comes from the
// lock here.
type MemoryRepo struct {
	mu      sync.Mutex
	entries map[string]Entry
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{entries: make(map[string]Entry)}
}

func (r *MemoryRepo) GetByISBN(_ context.Context, isbn string) (Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[isbn]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

func (r *MemoryRepo) CreateIfAbsent(_ context.Context, e *Entry) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[e.ISBN]; ok {
		return false, nil
	}
	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now
	r.entries[e.ISBN] = *e
	return true, nil
}

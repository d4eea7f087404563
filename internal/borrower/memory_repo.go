package borrower

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is a mutex-guarded in-memory Repository.
type MemoryRepo struct {
	mu        sync.Mutex
	borrowers map[string]Borrower
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{borrowers: make(map[string]Borrower)}
}

func (r *MemoryRepo) Create(_ context.Context, b *Borrower) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.borrowers {
		if strings.EqualFold(existing.Email, b.Email) {
			return ErrEmailTaken
		}
	}
	now := time.Now()
	b.ID = uuid.New().String()
	b.CreatedAt = now
	b.UpdatedAt = now
	r.borrowers[b.ID] = *b
	return nil
}

func (r *MemoryRepo) GetByID(_ context.Context, id string) (Borrower, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.borrowers[id]
	if !ok {
		return Borrower{}, ErrNotFound
	}
	return b, nil
}

func (r *MemoryRepo) GetByEmail(_ context.Context, email string) (Borrower, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.borrowers {
		if strings.EqualFold(b.Email, email) {
			return b, nil
		}
	}
	return Borrower{}, ErrNotFound
}

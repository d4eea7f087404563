package catalog

import (
	"context"
	"errors"
	"time"

	"libraryapi/internal/audit"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) GetByISBN(ctx context.Context, isbn string) (Entry, error) {
	const query = `
		SELECT isbn, title, author, created_at, updated_at
		FROM book_catalog
		WHERE isbn = $1
		LIMIT 1
	`
	var e Entry
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, isbn).Scan(
		&e.ISBN, &e.Title, &e.Author, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}
	return e, nil
}

// CreateIfAbsent relies on the book_catalog primary key to serialize
// concurrent first registrations of the same ISBN. ON CONFLICT DO NOTHING
// plus RETURNING yields no row when another writer got there first.
func (r *PostgresRepo) CreateIfAbsent(ctx context.Context, e *Entry) (bool, error) {
	const query = `
		INSERT INTO book_catalog (isbn, title, author, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (isbn) DO NOTHING
		RETURNING created_at, updated_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	actor := audit.ActorFrom(ctx)
	err := r.db.QueryRow(timeoutCtx, query, e.ISBN, e.Title, e.Author, actor).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

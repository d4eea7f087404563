package borrower

import (
	"context"
	"errors"
	"time"

	"libraryapi/internal/audit"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
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

func (r *PostgresRepo) Create(ctx context.Context, b *Borrower) error {
	const query = `
		INSERT INTO borrowers (id, name, email, created_by, updated_by)
		VALUES (gen_random_uuid(), $1, $2, $3, $3)
		RETURNING id, created_at, updated_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	actor := audit.ActorFrom(ctx)
	err := r.db.QueryRow(timeoutCtx, query, b.Name, b.Email, actor).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Borrower, error) {
	const query = `
		SELECT id, name, email, created_at, updated_at
		FROM borrowers
		WHERE id = $1
		LIMIT 1
	`
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepo) GetByEmail(ctx context.Context, email string) (Borrower, error) {
	const query = `
		SELECT id, name, email, created_at, updated_at
		FROM borrowers
		WHERE lower(email) = lower($1)
		LIMIT 1
	`
	return r.getOne(ctx, query, email)
}

func (r *PostgresRepo) getOne(ctx context.Context, query string, arg any) (Borrower, error) {
	var b Borrower
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, arg).Scan(&b.ID, &b.Name, &b.Email, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Borrower{}, ErrNotFound
		}
		return Borrower{}, err
	}
	return b, nil
}
